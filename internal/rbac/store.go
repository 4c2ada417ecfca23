package rbac

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates that the requested record does not exist.
	ErrNotFound = errors.New("rbac: not found")
	// ErrDuplicate indicates a unique constraint rejected the insert.
	ErrDuplicate = errors.New("rbac: duplicate")
)

// Store persists users, roles, user-role links and role claims.
type Store interface {
	FindRoleByName(ctx context.Context, name string) (Role, error)
	GetRole(ctx context.Context, id int64) (Role, error)
	CreateRole(ctx context.Context, name string) (Role, error)
	ListRoles(ctx context.Context) ([]Role, error)

	ListRoleClaims(ctx context.Context, roleID int64) ([]RoleClaim, error)
	AddRoleClaim(ctx context.Context, roleID int64, claim Claim) error

	FindUserByUsername(ctx context.Context, username string) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, user NewUser) (User, error)
	ListUsers(ctx context.Context) ([]User, error)

	HasUserRole(ctx context.Context, userID, roleID int64) (bool, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
	ListUserRoles(ctx context.Context, userID int64) ([]Role, error)

	// UserClaims returns the de-duplicated claims granted through every
	// role the user holds.
	UserClaims(ctx context.Context, userID int64) ([]Claim, error)
}
