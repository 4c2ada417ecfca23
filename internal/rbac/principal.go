package rbac

import (
	"context"
	"strconv"

	"github.com/bistro-hq/bistro/internal/permissions"
)

// Identity claim types attached next to permission claims.
const (
	ClaimSubject = "sub"
	ClaimName    = "name"
	ClaimRole    = "role"
)

// Principal is the authenticated actor. Its permissions are resolved once at
// login and travel with the session or token; role changes made afterwards
// are not visible until the principal logs in again or its token expires.
type Principal struct {
	UserID      int64    `json:"user_id"`
	Username    string   `json:"username"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// Claims flattens the principal into its claim set.
func (p *Principal) Claims() []Claim {
	if p == nil {
		return nil
	}
	claims := make([]Claim, 0, 2+len(p.Roles)+len(p.Permissions))
	claims = append(claims,
		Claim{Type: ClaimSubject, Value: strconv.FormatInt(p.UserID, 10)},
		Claim{Type: ClaimName, Value: p.Username},
	)
	for _, role := range p.Roles {
		claims = append(claims, Claim{Type: ClaimRole, Value: role})
	}
	for _, perm := range p.Permissions {
		claims = append(claims, permissions.PermissionClaim(perm))
	}
	return claims
}

// NewPrincipal assembles a principal from a user, its roles and resolved claims.
func NewPrincipal(user User, roles []Role, claims []Claim) Principal {
	p := Principal{UserID: user.ID, Username: user.Username}
	for _, role := range roles {
		p.Roles = append(p.Roles, role.Name)
	}
	seen := make(map[string]struct{}, len(claims))
	for _, c := range claims {
		if c.Type != permissions.ClaimType {
			continue
		}
		if _, ok := seen[c.Value]; ok {
			continue
		}
		seen[c.Value] = struct{}{}
		p.Permissions = append(p.Permissions, c.Value)
	}
	return p
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context, or nil.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
