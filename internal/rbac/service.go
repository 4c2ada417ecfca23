package rbac

import (
	"context"
	"fmt"
)

// Service orchestrates read-side RBAC operations.
type Service struct {
	store Store
}

// NewService constructs a Service backed by the provided store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.store.ListRoles(ctx)
}

// RoleClaims returns a role together with its claims.
func (s *Service) RoleClaims(ctx context.Context, roleID int64) (Role, []RoleClaim, error) {
	role, err := s.store.GetRole(ctx, roleID)
	if err != nil {
		return Role{}, nil, err
	}
	claims, err := s.store.ListRoleClaims(ctx, roleID)
	if err != nil {
		return Role{}, nil, err
	}
	return role, claims, nil
}

// ResolvePrincipal loads the roles and claims a user holds right now.
func (s *Service) ResolvePrincipal(ctx context.Context, user User) (Principal, error) {
	roles, err := s.store.ListUserRoles(ctx, user.ID)
	if err != nil {
		return Principal{}, fmt.Errorf("rbac: roles for user %d: %w", user.ID, err)
	}
	claims, err := s.store.UserClaims(ctx, user.ID)
	if err != nil {
		return Principal{}, fmt.Errorf("rbac: claims for user %d: %w", user.ID, err)
	}
	return NewPrincipal(user, roles, claims), nil
}
