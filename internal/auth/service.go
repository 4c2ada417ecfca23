package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/bistro-hq/bistro/internal/rbac"
	"github.com/bistro-hq/bistro/internal/shared"
)

// UserFinder looks up accounts by login name.
type UserFinder interface {
	FindUserByUsername(ctx context.Context, username string) (rbac.User, error)
}

// PrincipalResolver turns a user into its principal with resolved claims.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, user rbac.User) (rbac.Principal, error)
}

// PasswordVerifier checks a plaintext password against a stored hash.
type PasswordVerifier interface {
	Compare(hash, plain string) bool
}

// Service wraps authentication business rules.
type Service struct {
	users     UserFinder
	resolver  PrincipalResolver
	passwords PasswordVerifier
	throttle  *Throttle
}

// NewService constructs a new Service. throttle may be nil.
func NewService(users UserFinder, resolver PrincipalResolver, passwords PasswordVerifier, throttle *Throttle) *Service {
	return &Service{users: users, resolver: resolver, passwords: passwords, throttle: throttle}
}

// Authenticate validates username/password credentials and resolves the
// principal's claims. The returned claims are fixed for the lifetime of the
// session or token built from them.
func (s *Service) Authenticate(ctx context.Context, username, password string) (rbac.Principal, error) {
	if s.throttle.Locked(username) {
		return rbac.Principal{}, shared.ErrAccountLocked
	}
	user, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			s.throttle.Fail(username)
			return rbac.Principal{}, shared.ErrInvalidCredentials
		}
		return rbac.Principal{}, fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive() || !s.passwords.Compare(user.PasswordHash, password) {
		s.throttle.Fail(username)
		return rbac.Principal{}, shared.ErrInvalidCredentials
	}
	s.throttle.Reset(username)

	principal, err := s.resolver.ResolvePrincipal(ctx, user)
	if err != nil {
		return rbac.Principal{}, fmt.Errorf("resolve principal: %w", err)
	}
	return principal, nil
}
