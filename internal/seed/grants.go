package seed

import "github.com/bistro-hq/bistro/internal/permissions"

// Role tiers, highest privilege first.
const (
	RoleSuperAdmin = "SuperAdmin"
	RoleAdmin      = "Admin"
	RoleStaff      = "Staff"
	RoleGuest      = "Guest"
)

// Roles lists every role the seeder provisions.
func Roles() []string {
	return []string{RoleSuperAdmin, RoleAdmin, RoleStaff, RoleGuest}
}

// Grant is an explicitly authored permission subset for one role.
type Grant struct {
	Phase       string
	Role        string
	Permissions []string
}

// TierGrants returns the authored grants for every role below SuperAdmin.
// SuperAdmin is not listed: it receives the whole catalog.
func TierGrants() []Grant {
	return []Grant{
		{
			Phase: "admin-claims",
			Role:  RoleAdmin,
			Permissions: []string{
				permissions.DishView, permissions.DishCreate, permissions.DishEdit,
				permissions.MenuView, permissions.MenuCreate, permissions.MenuEdit,
				permissions.PaymentView, permissions.PaymentCreate, permissions.PaymentEdit,
				permissions.ReservationView, permissions.ReservationCreate, permissions.ReservationEdit,
				permissions.RoleView, permissions.RoleCreate, permissions.RoleEdit,
				permissions.UserView, permissions.UserCreate, permissions.UserEdit,
				permissions.UserRoleView, permissions.UserRoleCreate, permissions.UserRoleEdit,
				permissions.TableView, permissions.TableCreate, permissions.TableEdit,
			},
		},
		{
			Phase: "staff-claims",
			Role:  RoleStaff,
			Permissions: []string{
				permissions.DishView,
				permissions.MenuView,
				permissions.PaymentView,
				permissions.RoleView,
				permissions.UserView,
				permissions.ReservationView,
				permissions.TableView,
			},
		},
		{
			Phase: "guest-claims",
			Role:  RoleGuest,
			Permissions: []string{
				permissions.DishView,
				permissions.MenuView,
				permissions.ReservationView,
				permissions.TableView,
			},
		},
	}
}

// Account is a default user created on first boot.
type Account struct {
	Username string
	Email    string
	Phone    string
	Password string
	Role     string
}

// DefaultAccounts returns one account per role tier.
func DefaultAccounts() []Account {
	return []Account{
		{Username: "SuperAdmin", Email: "superadmin@bistro.local", Phone: "123456780", Password: "12345", Role: RoleSuperAdmin},
		{Username: "Admin", Email: "admin@bistro.local", Phone: "123456780", Password: "1234", Role: RoleAdmin},
		{Username: "Staff", Email: "staff@bistro.local", Phone: "123456789", Password: "123", Role: RoleStaff},
		{Username: "Guest", Email: "guest@bistro.local", Phone: "123456789", Password: "12", Role: RoleGuest},
	}
}
