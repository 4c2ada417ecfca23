package users

import (
	"context"

	"github.com/bistro-hq/bistro/internal/rbac"
)

// Store defines the user reads the service needs.
type Store interface {
	ListUsers(ctx context.Context) ([]rbac.User, error)
	GetUser(ctx context.Context, id int64) (rbac.User, error)
	ListUserRoles(ctx context.Context, userID int64) ([]rbac.Role, error)
}

// Service handles user queries.
type Service struct {
	store Store
}

// NewService builds Service instance.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]rbac.User, error) {
	return s.store.ListUsers(ctx)
}

// UserRoles returns a user and the roles linked to it.
func (s *Service) UserRoles(ctx context.Context, id int64) (rbac.User, []rbac.Role, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return rbac.User{}, nil, err
	}
	roles, err := s.store.ListUserRoles(ctx, id)
	if err != nil {
		return rbac.User{}, nil, err
	}
	return user, roles, nil
}
