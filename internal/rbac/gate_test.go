package rbac_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bistro-hq/bistro/internal/permissions"
	"github.com/bistro-hq/bistro/internal/rbac"
)

func perm(id string) rbac.Claim {
	return permissions.PermissionClaim(id)
}

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name     string
		claims   []rbac.Claim
		required []string
		want     rbac.Verdict
	}{
		{
			name:     "exact match",
			claims:   []rbac.Claim{perm("Permissions.Dish.View")},
			required: []string{"Permissions.Dish.View"},
			want:     rbac.Allowed,
		},
		{
			name:     "no claims",
			claims:   nil,
			required: []string{"Permissions.Dish.View"},
			want:     rbac.DeniedUnauthenticated,
		},
		{
			name:     "empty claim set",
			claims:   []rbac.Claim{},
			required: []string{"Permissions.Dish.View"},
			want:     rbac.DeniedUnauthenticated,
		},
		{
			name:     "case sensitive",
			claims:   []rbac.Claim{perm("permissions.dish.view")},
			required: []string{"Permissions.Dish.View"},
			want:     rbac.DeniedNoPermission,
		},
		{
			name:     "conjunction not satisfied",
			claims:   []rbac.Claim{perm("Permissions.Dish.Edit")},
			required: []string{"Permissions.Dish.Edit", "Permissions.Dish.View"},
			want:     rbac.DeniedNoPermission,
		},
		{
			name:     "conjunction satisfied",
			claims:   []rbac.Claim{perm("Permissions.Dish.View"), perm("Permissions.Dish.Edit")},
			required: []string{"Permissions.Dish.Edit", "Permissions.Dish.View"},
			want:     rbac.Allowed,
		},
		{
			name:     "wrong claim type",
			claims:   []rbac.Claim{{Type: "role", Value: "Permissions.Dish.View"}},
			required: []string{"Permissions.Dish.View"},
			want:     rbac.DeniedNoPermission,
		},
		{
			name:     "no prefix matching",
			claims:   []rbac.Claim{perm("Permissions.Dish")},
			required: []string{"Permissions.Dish.View"},
			want:     rbac.DeniedNoPermission,
		},
		{
			name:     "nothing required",
			claims:   []rbac.Claim{{Type: rbac.ClaimSubject, Value: "1"}},
			required: nil,
			want:     rbac.Allowed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, rbac.Authorize(tc.claims, tc.required...))
		})
	}
}

func TestAuthorizeAny(t *testing.T) {
	claims := []rbac.Claim{perm(permissions.DishEdit)}
	require.Equal(t, rbac.Allowed, rbac.AuthorizeAny(claims, permissions.DishEdit, permissions.DishView))
	require.Equal(t, rbac.DeniedNoPermission, rbac.AuthorizeAny(claims, permissions.MenuEdit, permissions.DishView))
	require.Equal(t, rbac.DeniedUnauthenticated, rbac.AuthorizeAny(nil, permissions.DishView))
	require.Equal(t, rbac.Allowed, rbac.AuthorizeAny(claims))
}

func TestVerdictHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusOK, rbac.Allowed.HTTPStatus())
	require.Equal(t, http.StatusForbidden, rbac.DeniedNoPermission.HTTPStatus())
	require.Equal(t, http.StatusUnauthorized, rbac.DeniedUnauthenticated.HTTPStatus())
	require.Equal(t, "denied_no_permission", rbac.DeniedNoPermission.String())
}

func TestPrincipalClaims(t *testing.T) {
	user := rbac.User{ID: 7, Username: "Staff"}
	roles := []rbac.Role{{ID: 3, Name: "Staff"}}
	p := rbac.NewPrincipal(user, roles, []rbac.Claim{
		perm(permissions.DishView),
		perm(permissions.DishView),
		{Type: "other", Value: "x"},
	})
	require.Equal(t, []string{permissions.DishView}, p.Permissions)
	require.Equal(t, []rbac.Claim{
		{Type: rbac.ClaimSubject, Value: "7"},
		{Type: rbac.ClaimName, Value: "Staff"},
		{Type: rbac.ClaimRole, Value: "Staff"},
		perm(permissions.DishView),
	}, p.Claims())

	// A principal without permissions is authenticated but denied.
	bare := rbac.NewPrincipal(user, nil, nil)
	require.Equal(t, rbac.DeniedNoPermission, rbac.Authorize(bare.Claims(), permissions.DishView))

	var missing *rbac.Principal
	require.Nil(t, missing.Claims())
}
