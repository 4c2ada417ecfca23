// Package rbactest provides an in-memory rbac.Store for tests.
package rbactest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bistro-hq/bistro/internal/rbac"
)

// Store operation names accepted by Fail and passed to BeforeInsert.
const (
	OpFindRole     = "FindRoleByName"
	OpCreateRole   = "CreateRole"
	OpListClaims   = "ListRoleClaims"
	OpAddClaim     = "AddRoleClaim"
	OpFindUser     = "FindUserByUsername"
	OpCreateUser   = "CreateUser"
	OpHasUserRole  = "HasUserRole"
	OpAssignRole   = "AssignRole"
	OpListUserRole = "ListUserRoles"
	OpUserClaims   = "UserClaims"
)

// MemoryStore implements rbac.Store with the same uniqueness rules as the
// PostgreSQL schema.
type MemoryStore struct {
	mu        sync.Mutex
	roles     []rbac.Role
	claims    []rbac.RoleClaim
	users     []rbac.User
	userRoles []rbac.UserRole
	nextID    int64
	failures  map[string]error

	// BeforeInsert runs before every insert, outside the lock, so a test can
	// interleave a competing writer between the caller's existence check and
	// its insert.
	BeforeInsert func(op string)
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{failures: make(map[string]error)}
}

var _ rbac.Store = (*MemoryStore)(nil)

// Fail makes every call of op return err until cleared with a nil err.
func (s *MemoryStore) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *MemoryStore) failure(op string) error {
	return s.failures[op]
}

func (s *MemoryStore) beforeInsert(op string) {
	if s.BeforeInsert != nil {
		s.BeforeInsert(op)
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// FindRoleByName implements rbac.Store.
func (s *MemoryStore) FindRoleByName(ctx context.Context, name string) (rbac.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpFindRole); err != nil {
		return rbac.Role{}, err
	}
	name = rbac.RoleName(name)
	for _, role := range s.roles {
		if role.Name == name {
			return role, nil
		}
	}
	return rbac.Role{}, rbac.ErrNotFound
}

// GetRole implements rbac.Store.
func (s *MemoryStore) GetRole(ctx context.Context, id int64) (rbac.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, role := range s.roles {
		if role.ID == id {
			return role, nil
		}
	}
	return rbac.Role{}, rbac.ErrNotFound
}

// CreateRole implements rbac.Store.
func (s *MemoryStore) CreateRole(ctx context.Context, name string) (rbac.Role, error) {
	s.beforeInsert(OpCreateRole)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpCreateRole); err != nil {
		return rbac.Role{}, err
	}
	name = rbac.RoleName(name)
	for _, role := range s.roles {
		if role.Name == name {
			return rbac.Role{}, fmt.Errorf("%w: roles_name_key", rbac.ErrDuplicate)
		}
	}
	now := time.Now().UTC()
	role := rbac.Role{ID: s.id(), Name: name, CreatedAt: now, UpdatedAt: now}
	s.roles = append(s.roles, role)
	return role, nil
}

// ListRoles implements rbac.Store.
func (s *MemoryStore) ListRoles(ctx context.Context) ([]rbac.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rbac.Role(nil), s.roles...), nil
}

// ListRoleClaims implements rbac.Store.
func (s *MemoryStore) ListRoleClaims(ctx context.Context, roleID int64) ([]rbac.RoleClaim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpListClaims); err != nil {
		return nil, err
	}
	var out []rbac.RoleClaim
	for _, rc := range s.claims {
		if rc.RoleID == roleID {
			out = append(out, rc)
		}
	}
	return out, nil
}

// AddRoleClaim implements rbac.Store.
func (s *MemoryStore) AddRoleClaim(ctx context.Context, roleID int64, claim rbac.Claim) error {
	s.beforeInsert(OpAddClaim)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpAddClaim); err != nil {
		return err
	}
	for _, rc := range s.claims {
		if rc.RoleID == roleID && rc.ClaimType == claim.Type && rc.ClaimValue == claim.Value {
			return fmt.Errorf("%w: role_claims_role_id_claim_type_claim_value_key", rbac.ErrDuplicate)
		}
	}
	s.claims = append(s.claims, rbac.RoleClaim{
		ID:         s.id(),
		RoleID:     roleID,
		ClaimType:  claim.Type,
		ClaimValue: claim.Value,
		CreatedAt:  time.Now().UTC(),
	})
	return nil
}

// FindUserByUsername implements rbac.Store.
func (s *MemoryStore) FindUserByUsername(ctx context.Context, username string) (rbac.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpFindUser); err != nil {
		return rbac.User{}, err
	}
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return rbac.User{}, rbac.ErrNotFound
}

// GetUser implements rbac.Store.
func (s *MemoryStore) GetUser(ctx context.Context, id int64) (rbac.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return rbac.User{}, rbac.ErrNotFound
}

// CreateUser implements rbac.Store.
func (s *MemoryStore) CreateUser(ctx context.Context, user rbac.NewUser) (rbac.User, error) {
	s.beforeInsert(OpCreateUser)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpCreateUser); err != nil {
		return rbac.User{}, err
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return rbac.User{}, fmt.Errorf("%w: users_username_key", rbac.ErrDuplicate)
		}
		if u.Email == user.Email {
			return rbac.User{}, fmt.Errorf("%w: users_email_key", rbac.ErrDuplicate)
		}
	}
	now := time.Now().UTC()
	created := rbac.User{
		ID:           s.id(),
		Username:     user.Username,
		Email:        user.Email,
		Phone:        user.Phone,
		PasswordHash: user.PasswordHash,
		Status:       user.Status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users = append(s.users, created)
	return created, nil
}

// ListUsers implements rbac.Store.
func (s *MemoryStore) ListUsers(ctx context.Context) ([]rbac.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]rbac.User(nil), s.users...), nil
}

// HasUserRole implements rbac.Store.
func (s *MemoryStore) HasUserRole(ctx context.Context, userID, roleID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpHasUserRole); err != nil {
		return false, err
	}
	for _, ur := range s.userRoles {
		if ur.UserID == userID && ur.RoleID == roleID {
			return true, nil
		}
	}
	return false, nil
}

// AssignRole implements rbac.Store.
func (s *MemoryStore) AssignRole(ctx context.Context, userID, roleID int64) error {
	s.beforeInsert(OpAssignRole)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpAssignRole); err != nil {
		return err
	}
	for _, ur := range s.userRoles {
		if ur.UserID == userID && ur.RoleID == roleID {
			return fmt.Errorf("%w: user_roles_pkey", rbac.ErrDuplicate)
		}
	}
	s.userRoles = append(s.userRoles, rbac.UserRole{UserID: userID, RoleID: roleID, CreatedAt: time.Now().UTC()})
	return nil
}

// ListUserRoles implements rbac.Store.
func (s *MemoryStore) ListUserRoles(ctx context.Context, userID int64) ([]rbac.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpListUserRole); err != nil {
		return nil, err
	}
	var out []rbac.Role
	for _, ur := range s.userRoles {
		if ur.UserID != userID {
			continue
		}
		for _, role := range s.roles {
			if role.ID == ur.RoleID {
				out = append(out, role)
			}
		}
	}
	return out, nil
}

// UserClaims implements rbac.Store.
func (s *MemoryStore) UserClaims(ctx context.Context, userID int64) ([]rbac.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failure(OpUserClaims); err != nil {
		return nil, err
	}
	roleIDs := make(map[int64]struct{})
	for _, ur := range s.userRoles {
		if ur.UserID == userID {
			roleIDs[ur.RoleID] = struct{}{}
		}
	}
	seen := make(map[rbac.Claim]struct{})
	var out []rbac.Claim
	for _, rc := range s.claims {
		if _, ok := roleIDs[rc.RoleID]; !ok {
			continue
		}
		c := rc.Claim()
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Value < out[j].Value
	})
	return out, nil
}

// Snapshot summarises the store contents for equality checks.
type Snapshot struct {
	Roles     []string
	Claims    map[string][]string
	Users     []string
	UserRoles map[string][]string
}

// Snapshot returns a comparable view of roles, claims, users and links keyed by name.
func (s *MemoryStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	roleNames := make(map[int64]string, len(s.roles))
	snap := Snapshot{Claims: map[string][]string{}, UserRoles: map[string][]string{}}
	for _, role := range s.roles {
		roleNames[role.ID] = role.Name
		snap.Roles = append(snap.Roles, role.Name)
	}
	for _, rc := range s.claims {
		name := roleNames[rc.RoleID]
		snap.Claims[name] = append(snap.Claims[name], rc.ClaimValue)
	}
	userNames := make(map[int64]string, len(s.users))
	for _, u := range s.users {
		userNames[u.ID] = u.Username
		snap.Users = append(snap.Users, u.Username)
	}
	for _, ur := range s.userRoles {
		name := userNames[ur.UserID]
		snap.UserRoles[name] = append(snap.UserRoles[name], roleNames[ur.RoleID])
	}
	return snap
}
