package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db dbtx
}

// NewPGStore constructs a PostgreSQL store backed by the pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{db: pool}
}

var _ Store = (*PGStore)(nil)

const roleColumns = `id, name, created_at, updated_at`

// FindRoleByName fetches a role by its unique name.
func (s *PGStore) FindRoleByName(ctx context.Context, name string) (Role, error) {
	row := s.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = $1`, RoleName(name))
	return scanRole(row)
}

// GetRole fetches a role by ID.
func (s *PGStore) GetRole(ctx context.Context, id int64) (Role, error) {
	row := s.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

// CreateRole inserts a role. A concurrent insert of the same name yields ErrDuplicate.
func (s *PGStore) CreateRole(ctx context.Context, name string) (Role, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO roles (name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING `+roleColumns, RoleName(name))
	role, err := scanRole(row)
	if err != nil {
		return Role{}, fmt.Errorf("rbac: create role %q: %w", name, err)
	}
	return role, nil
}

// ListRoles returns all roles ordered by ID.
func (s *PGStore) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := s.db.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ListRoleClaims returns the claims granted to a role.
func (s *PGStore) ListRoleClaims(ctx context.Context, roleID int64) ([]RoleClaim, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, role_id, claim_type, claim_value, created_at
		FROM role_claims
		WHERE role_id = $1
		ORDER BY id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var claims []RoleClaim
	for rows.Next() {
		var rc RoleClaim
		if err := rows.Scan(&rc.ID, &rc.RoleID, &rc.ClaimType, &rc.ClaimValue, &rc.CreatedAt); err != nil {
			return nil, err
		}
		claims = append(claims, rc)
	}
	return claims, rows.Err()
}

// AddRoleClaim grants a claim to a role.
func (s *PGStore) AddRoleClaim(ctx context.Context, roleID int64, claim Claim) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO role_claims (role_id, claim_type, claim_value, created_at)
		VALUES ($1, $2, $3, NOW())`, roleID, claim.Type, claim.Value)
	if err != nil {
		return fmt.Errorf("rbac: add claim %s to role %d: %w", claim.Value, roleID, mapError(err))
	}
	return nil
}

const userColumns = `id, username, email, phone, password_hash, status, created_at, updated_at`

// FindUserByUsername fetches a user by username.
func (s *PGStore) FindUserByUsername(ctx context.Context, username string) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// GetUser fetches a user by ID.
func (s *PGStore) GetUser(ctx context.Context, id int64) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// CreateUser inserts a user account.
func (s *PGStore) CreateUser(ctx context.Context, user NewUser) (User, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (username, email, phone, password_hash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING `+userColumns,
		user.Username, user.Email, user.Phone, user.PasswordHash, user.Status)
	created, err := scanUser(row)
	if err != nil {
		return User{}, fmt.Errorf("rbac: create user %q: %w", user.Username, err)
	}
	return created, nil
}

// ListUsers returns all users ordered by ID.
func (s *PGStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// HasUserRole reports whether the user already holds the role.
func (s *PGStore) HasUserRole(ctx context.Context, userID, roleID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND role_id = $2)`,
		userID, roleID).Scan(&exists)
	return exists, err
}

// AssignRole links a user to a role.
func (s *PGStore) AssignRole(ctx context.Context, userID, roleID int64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id, created_at)
		VALUES ($1, $2, NOW())`, userID, roleID)
	if err != nil {
		return fmt.Errorf("rbac: assign role %d to user %d: %w", roleID, userID, mapError(err))
	}
	return nil
}

// ListUserRoles returns the roles held by a user.
func (s *PGStore) ListUserRoles(ctx context.Context, userID int64) ([]Role, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.name, r.created_at, r.updated_at
		FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// UserClaims returns the distinct claims granted through the user's roles.
func (s *PGStore) UserClaims(ctx context.Context, userID int64) ([]Claim, error) {
	rows, err := s.db.Query(ctx, `
		SELECT DISTINCT rc.claim_type, rc.claim_value
		FROM role_claims rc
		JOIN user_roles ur ON ur.role_id = rc.role_id
		WHERE ur.user_id = $1
		ORDER BY rc.claim_type, rc.claim_value`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var claims []Claim
	for rows.Next() {
		var c Claim
		if err := rows.Scan(&c.Type, &c.Value); err != nil {
			return nil, err
		}
		claims = append(claims, c)
	}
	return claims, rows.Err()
}

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return Role{}, mapError(err)
	}
	return role, nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Phone, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return User{}, mapError(err)
	}
	return u, nil
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}
