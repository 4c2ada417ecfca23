package rbac_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bistro-hq/bistro/internal/rbac"
	"github.com/bistro-hq/bistro/internal/rbac/rbactest"
)

func TestRoleNameLookupMatchesInsert(t *testing.T) {
	ctx := context.Background()
	store := rbactest.NewMemoryStore()
	require.Equal(t, "Staff", rbac.RoleName("  Staff\t"))

	created, err := store.CreateRole(ctx, " Staff ")
	require.NoError(t, err)
	require.Equal(t, "Staff", created.Name)

	found, err := store.FindRoleByName(ctx, "Staff  ")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = store.CreateRole(ctx, "Staff")
	require.ErrorIs(t, err, rbac.ErrDuplicate)
}

func TestCreateUserNamesViolatedConstraint(t *testing.T) {
	ctx := context.Background()
	store := rbactest.NewMemoryStore()
	_, err := store.CreateUser(ctx, rbac.NewUser{Username: "alice", Email: "alice@bistro.local", Status: rbac.StatusActive})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, rbac.NewUser{Username: "alice", Email: "other@bistro.local", Status: rbac.StatusActive})
	require.ErrorIs(t, err, rbac.ErrDuplicate)
	require.ErrorContains(t, err, "users_username_key")

	_, err = store.CreateUser(ctx, rbac.NewUser{Username: "bob", Email: "alice@bistro.local", Status: rbac.StatusActive})
	require.ErrorIs(t, err, rbac.ErrDuplicate)
	require.ErrorContains(t, err, "users_email_key")
}
