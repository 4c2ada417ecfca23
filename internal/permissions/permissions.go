package permissions

// ClaimType is the claim type carried by every permission grant.
const ClaimType = "Permissions"

// Actions supported by every module.
const (
	ActionCreate = "Create"
	ActionView   = "View"
	ActionEdit   = "Edit"
	ActionDelete = "Delete"
)

// Dish permissions.
const (
	DishCreate = "Permissions.Dish.Create"
	DishView   = "Permissions.Dish.View"
	DishEdit   = "Permissions.Dish.Edit"
	DishDelete = "Permissions.Dish.Delete"
)

// Menu permissions.
const (
	MenuCreate = "Permissions.Menu.Create"
	MenuView   = "Permissions.Menu.View"
	MenuEdit   = "Permissions.Menu.Edit"
	MenuDelete = "Permissions.Menu.Delete"
)

// Payment permissions.
const (
	PaymentCreate = "Permissions.Payment.Create"
	PaymentView   = "Permissions.Payment.View"
	PaymentEdit   = "Permissions.Payment.Edit"
	PaymentDelete = "Permissions.Payment.Delete"
)

// Reservation permissions.
const (
	ReservationCreate = "Permissions.Reservation.Create"
	ReservationView   = "Permissions.Reservation.View"
	ReservationEdit   = "Permissions.Reservation.Edit"
	ReservationDelete = "Permissions.Reservation.Delete"
)

// Table permissions.
const (
	TableCreate = "Permissions.Table.Create"
	TableView   = "Permissions.Table.View"
	TableEdit   = "Permissions.Table.Edit"
	TableDelete = "Permissions.Table.Delete"
)

// Role management permissions.
const (
	RoleCreate = "Permissions.Role.Create"
	RoleView   = "Permissions.Role.View"
	RoleEdit   = "Permissions.Role.Edit"
	RoleDelete = "Permissions.Role.Delete"
)

// User management permissions.
const (
	UserCreate = "Permissions.User.Create"
	UserView   = "Permissions.User.View"
	UserEdit   = "Permissions.User.Edit"
	UserDelete = "Permissions.User.Delete"
)

// User-role assignment permissions.
const (
	UserRoleCreate = "Permissions.UserRole.Create"
	UserRoleView   = "Permissions.UserRole.View"
	UserRoleEdit   = "Permissions.UserRole.Edit"
	UserRoleDelete = "Permissions.UserRole.Delete"
)

// Module names a permission group and the actions it declares.
type Module struct {
	Name    string
	Actions []string
}

// Registry lists every declared module in catalog order. Adding a module here
// is enough for the SuperAdmin role to receive its permissions on next boot.
var Registry = []Module{
	{Name: "Dish", Actions: CRUD()},
	{Name: "Menu", Actions: CRUD()},
	{Name: "Payment", Actions: CRUD()},
	{Name: "Reservation", Actions: CRUD()},
	{Name: "Table", Actions: CRUD()},
	{Name: "Role", Actions: CRUD()},
	{Name: "User", Actions: CRUD()},
	{Name: "UserRole", Actions: CRUD()},
}

// CRUD returns the four standard actions in canonical order.
func CRUD() []string {
	return []string{ActionCreate, ActionView, ActionEdit, ActionDelete}
}
