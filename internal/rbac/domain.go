package rbac

import (
	"strings"
	"time"

	"github.com/bistro-hq/bistro/internal/permissions"
)

// Claim aliases the catalog claim shape.
type Claim = permissions.Claim

// User statuses.
const (
	StatusActive  = "Active"
	StatusBlocked = "Blocked"
)

// RoleName is the stored form of a role name. Lookups and inserts both go
// through it so they agree on what a name is.
func RoleName(name string) string {
	return strings.TrimSpace(name)
}

// Role represents a named permission grouping.
type Role struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoleClaim grants one claim to a role.
type RoleClaim struct {
	ID         int64     `json:"id"`
	RoleID     int64     `json:"role_id"`
	ClaimType  string    `json:"claim_type"`
	ClaimValue string    `json:"claim_value"`
	CreatedAt  time.Time `json:"created_at"`
}

// Claim returns the (type, value) pair of the grant.
func (rc RoleClaim) Claim() Claim {
	return Claim{Type: rc.ClaimType, Value: rc.ClaimValue}
}

// User is an account able to authenticate.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsActive reports whether the account may log in.
func (u User) IsActive() bool {
	return u.Status == StatusActive
}

// NewUser carries the fields required to create a user.
type NewUser struct {
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Status       string
}

// UserRole links a user to a role.
type UserRole struct {
	UserID    int64     `json:"user_id"`
	RoleID    int64     `json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}
