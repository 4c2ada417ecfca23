package rbac_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bistro-hq/bistro/internal/permissions"
	"github.com/bistro-hq/bistro/internal/rbac"
	"github.com/bistro-hq/bistro/internal/rbac/rbactest"
)

func TestServiceResolvePrincipal(t *testing.T) {
	ctx := context.Background()
	store := rbactest.NewMemoryStore()
	staff, err := store.CreateRole(ctx, "Staff")
	require.NoError(t, err)
	guest, err := store.CreateRole(ctx, "Guest")
	require.NoError(t, err)
	require.NoError(t, store.AddRoleClaim(ctx, staff.ID, perm(permissions.DishView)))
	require.NoError(t, store.AddRoleClaim(ctx, staff.ID, perm(permissions.PaymentView)))
	require.NoError(t, store.AddRoleClaim(ctx, guest.ID, perm(permissions.DishView)))

	user, err := store.CreateUser(ctx, rbac.NewUser{Username: "Sam", Email: "sam@bistro.local", Status: rbac.StatusActive})
	require.NoError(t, err)
	require.NoError(t, store.AssignRole(ctx, user.ID, staff.ID))
	require.NoError(t, store.AssignRole(ctx, user.ID, guest.ID))

	svc := rbac.NewService(store)
	p, err := svc.ResolvePrincipal(ctx, user)
	require.NoError(t, err)
	require.Equal(t, user.ID, p.UserID)
	require.ElementsMatch(t, []string{"Staff", "Guest"}, p.Roles)
	require.ElementsMatch(t, []string{permissions.DishView, permissions.PaymentView}, p.Permissions)

	role, claims, err := svc.RoleClaims(ctx, staff.ID)
	require.NoError(t, err)
	require.Equal(t, "Staff", role.Name)
	require.Len(t, claims, 2)

	_, _, err = svc.RoleClaims(ctx, 999)
	require.ErrorIs(t, err, rbac.ErrNotFound)
}

func TestServiceResolvePrincipalStoreError(t *testing.T) {
	ctx := context.Background()
	store := rbactest.NewMemoryStore()
	boom := errors.New("connection reset")
	store.Fail(rbactest.OpUserClaims, boom)

	_, err := rbac.NewService(store).ResolvePrincipal(ctx, rbac.User{ID: 1})
	require.ErrorIs(t, err, boom)
}

func TestMemoryStoreUniqueness(t *testing.T) {
	ctx := context.Background()
	store := rbactest.NewMemoryStore()
	role, err := store.CreateRole(ctx, "Admin")
	require.NoError(t, err)

	_, err = store.CreateRole(ctx, "Admin")
	require.ErrorIs(t, err, rbac.ErrDuplicate)

	require.NoError(t, store.AddRoleClaim(ctx, role.ID, perm(permissions.MenuView)))
	require.ErrorIs(t, store.AddRoleClaim(ctx, role.ID, perm(permissions.MenuView)), rbac.ErrDuplicate)
}
