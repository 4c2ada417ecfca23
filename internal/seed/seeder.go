// Package seed provisions the baseline roles, role claims and default accounts.
// Every phase checks for existing rows before inserting, so a run can be
// repeated on every boot, and a duplicate rejected by a unique constraint is
// treated as already present.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bistro-hq/bistro/internal/permissions"
	"github.com/bistro-hq/bistro/internal/rbac"
)

var (
	// ErrRoleMissing indicates a phase could not find the role it grants to.
	ErrRoleMissing = errors.New("seed: role missing")
	// ErrUnknownPermission indicates an authored grant names an identifier
	// absent from the catalog.
	ErrUnknownPermission = errors.New("seed: unknown permission")
	// ErrAccountConflict indicates a default account could not be created
	// because another user holds one of its unique fields.
	ErrAccountConflict = errors.New("seed: account conflicts with an existing user")
)

// Store is the subset of rbac.Store the seeder writes through.
type Store interface {
	FindRoleByName(ctx context.Context, name string) (rbac.Role, error)
	CreateRole(ctx context.Context, name string) (rbac.Role, error)
	ListRoleClaims(ctx context.Context, roleID int64) ([]rbac.RoleClaim, error)
	AddRoleClaim(ctx context.Context, roleID int64, claim rbac.Claim) error
	FindUserByUsername(ctx context.Context, username string) (rbac.User, error)
	CreateUser(ctx context.Context, user rbac.NewUser) (rbac.User, error)
	HasUserRole(ctx context.Context, userID, roleID int64) (bool, error)
	AssignRole(ctx context.Context, userID, roleID int64) error
}

// Hasher turns a plaintext password into a storable hash.
type Hasher interface {
	Hash(plain string) (string, error)
}

// PhaseObserver records phase outcomes.
type PhaseObserver interface {
	ObserveSeedPhase(phase string, ok bool)
}

// Seeder runs the bootstrap phases in order.
type Seeder struct {
	store    Store
	hasher   Hasher
	logger   *slog.Logger
	observer PhaseObserver

	catalog  func() []rbac.Claim
	grants   []Grant
	accounts []Account
}

// NewSeeder constructs a Seeder with the built-in roles, grants and accounts.
func NewSeeder(store Store, hasher Hasher, logger *slog.Logger) *Seeder {
	return &Seeder{
		store:    store,
		hasher:   hasher,
		logger:   logger,
		catalog:  permissions.All,
		grants:   TierGrants(),
		accounts: DefaultAccounts(),
	}
}

// WithObserver attaches an outcome observer.
func (s *Seeder) WithObserver(o PhaseObserver) *Seeder {
	s.observer = o
	return s
}

type tally struct {
	created  int
	existing int
}

type phase struct {
	name string
	run  func(context.Context, *tally) error
}

func (s *Seeder) phases() []phase {
	phases := []phase{
		{name: "roles", run: s.seedRoles},
		{name: "superadmin-claims", run: s.grantCatalog},
	}
	for _, g := range s.grants {
		phases = append(phases, phase{name: g.Phase, run: func(ctx context.Context, t *tally) error {
			return s.grantSubset(ctx, g, t)
		}})
	}
	return append(phases, phase{name: "accounts", run: s.seedAccounts})
}

// Run executes every phase. A failing phase is recorded in the report and
// does not stop the phases after it. Run itself never returns an error; the
// caller decides what a failed report means.
func (s *Seeder) Run(ctx context.Context) Report {
	var report Report
	for _, p := range s.phases() {
		start := time.Now()
		var t tally
		err := ctx.Err()
		if err == nil {
			err = runIsolated(ctx, p, &t)
		}
		outcome := PhaseOutcome{
			Phase:    p.name,
			Created:  t.created,
			Existing: t.existing,
			Err:      err,
			Duration: time.Since(start),
		}
		if s.observer != nil {
			s.observer.ObserveSeedPhase(p.name, outcome.OK())
		}
		report.Phases = append(report.Phases, outcome)
	}
	report.Log(s.logger)
	return report
}

func runIsolated(ctx context.Context, p phase, t *tally) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("seed: phase %s panicked: %v", p.name, r)
		}
	}()
	return p.run(ctx, t)
}

func (s *Seeder) seedRoles(ctx context.Context, t *tally) error {
	for _, name := range Roles() {
		_, created, err := s.ensureRole(ctx, name)
		if err != nil {
			return err
		}
		if created {
			t.created++
		} else {
			t.existing++
		}
	}
	return nil
}

func (s *Seeder) ensureRole(ctx context.Context, name string) (rbac.Role, bool, error) {
	role, err := s.store.FindRoleByName(ctx, name)
	if err == nil {
		return role, false, nil
	}
	if !errors.Is(err, rbac.ErrNotFound) {
		return rbac.Role{}, false, fmt.Errorf("find role %s: %w", name, err)
	}
	role, err = s.store.CreateRole(ctx, name)
	if err == nil {
		return role, true, nil
	}
	if !errors.Is(err, rbac.ErrDuplicate) {
		return rbac.Role{}, false, err
	}
	// Another instance inserted it between our lookup and insert.
	role, err = s.store.FindRoleByName(ctx, name)
	if err != nil {
		return rbac.Role{}, false, fmt.Errorf("find role %s after duplicate: %w", name, err)
	}
	return role, false, nil
}

func (s *Seeder) grantCatalog(ctx context.Context, t *tally) error {
	claims := s.catalog()
	if len(claims) == 0 && s.logger != nil {
		s.logger.Warn("permission catalog is empty")
	}
	return s.grant(ctx, RoleSuperAdmin, claims, t)
}

func (s *Seeder) grantSubset(ctx context.Context, g Grant, t *tally) error {
	var unknown []error
	claims := make([]rbac.Claim, 0, len(g.Permissions))
	for _, id := range g.Permissions {
		if !permissions.Known(id) {
			unknown = append(unknown, fmt.Errorf("%w: %s", ErrUnknownPermission, id))
			continue
		}
		claims = append(claims, permissions.PermissionClaim(id))
	}
	if err := s.grant(ctx, g.Role, claims, t); err != nil {
		return err
	}
	return errors.Join(unknown...)
}

// grant inserts every claim the role does not hold yet. Existing claims are
// never removed.
func (s *Seeder) grant(ctx context.Context, roleName string, claims []rbac.Claim, t *tally) error {
	role, err := s.store.FindRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrRoleMissing, roleName)
		}
		return fmt.Errorf("find role %s: %w", roleName, err)
	}
	current, err := s.store.ListRoleClaims(ctx, role.ID)
	if err != nil {
		return fmt.Errorf("list claims of %s: %w", roleName, err)
	}
	held := make(map[rbac.Claim]struct{}, len(current))
	for _, rc := range current {
		held[rc.Claim()] = struct{}{}
	}
	for _, claim := range claims {
		if _, ok := held[claim]; ok {
			t.existing++
			continue
		}
		err := s.store.AddRoleClaim(ctx, role.ID, claim)
		switch {
		case err == nil:
			t.created++
		case errors.Is(err, rbac.ErrDuplicate):
			t.existing++
		default:
			return err
		}
		held[claim] = struct{}{}
	}
	return nil
}

func (s *Seeder) seedAccounts(ctx context.Context, t *tally) error {
	var gaps []error
	for _, acct := range s.accounts {
		if err := s.seedAccount(ctx, acct, t); err != nil {
			if errors.Is(err, ErrRoleMissing) || errors.Is(err, ErrAccountConflict) {
				gaps = append(gaps, err)
				continue
			}
			return err
		}
	}
	return errors.Join(gaps...)
}

// seedAccount creates the user when absent and links it to its tier role.
// Existing accounts keep their password, status and links; only a missing
// tier link is added.
func (s *Seeder) seedAccount(ctx context.Context, acct Account, t *tally) error {
	user, err := s.store.FindUserByUsername(ctx, acct.Username)
	switch {
	case err == nil:
		t.existing++
	case errors.Is(err, rbac.ErrNotFound):
		if user, err = s.createAccount(ctx, acct, t); err != nil {
			return err
		}
	default:
		return fmt.Errorf("find user %s: %w", acct.Username, err)
	}
	return s.linkAccount(ctx, acct, user, t)
}

// createAccount inserts acct. A duplicate is benign only when it is the
// account itself, inserted concurrently; any other collision, such as a
// different user holding the email, is a conflict.
func (s *Seeder) createAccount(ctx context.Context, acct Account, t *tally) (rbac.User, error) {
	hash, err := s.hasher.Hash(acct.Password)
	if err != nil {
		return rbac.User{}, fmt.Errorf("hash password for %s: %w", acct.Username, err)
	}
	user, err := s.store.CreateUser(ctx, rbac.NewUser{
		Username:     acct.Username,
		Email:        acct.Email,
		Phone:        acct.Phone,
		PasswordHash: hash,
		Status:       rbac.StatusActive,
	})
	if err == nil {
		t.created++
		return user, nil
	}
	if !errors.Is(err, rbac.ErrDuplicate) {
		return rbac.User{}, err
	}
	user, findErr := s.store.FindUserByUsername(ctx, acct.Username)
	switch {
	case findErr == nil:
		t.existing++
		return user, nil
	case errors.Is(findErr, rbac.ErrNotFound):
		return rbac.User{}, fmt.Errorf("%w: %s: %w", ErrAccountConflict, acct.Username, err)
	default:
		return rbac.User{}, fmt.Errorf("find user %s: %w", acct.Username, findErr)
	}
}

func (s *Seeder) linkAccount(ctx context.Context, acct Account, user rbac.User, t *tally) error {
	role, err := s.store.FindRoleByName(ctx, acct.Role)
	if err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			return fmt.Errorf("%w: %s for user %s", ErrRoleMissing, acct.Role, acct.Username)
		}
		return fmt.Errorf("find role %s: %w", acct.Role, err)
	}
	linked, err := s.store.HasUserRole(ctx, user.ID, role.ID)
	if err != nil {
		return fmt.Errorf("check role link for %s: %w", acct.Username, err)
	}
	if linked {
		t.existing++
		return nil
	}
	if err := s.store.AssignRole(ctx, user.ID, role.ID); err != nil {
		if errors.Is(err, rbac.ErrDuplicate) {
			t.existing++
			return nil
		}
		return fmt.Errorf("link %s to %s: %w", acct.Username, acct.Role, err)
	}
	t.created++
	return nil
}
