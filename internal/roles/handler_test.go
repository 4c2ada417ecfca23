package roles_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistro-hq/bistro/internal/permissions"
	"github.com/bistro-hq/bistro/internal/rbac"
	"github.com/bistro-hq/bistro/internal/rbac/rbactest"
	"github.com/bistro-hq/bistro/internal/roles"
)

func newRouter(t *testing.T, principal *rbac.Principal) (http.Handler, int64) {
	t.Helper()
	ctx := context.Background()
	store := rbactest.NewMemoryStore()
	admin, err := store.CreateRole(ctx, "Admin")
	require.NoError(t, err)
	require.NoError(t, store.AddRoleClaim(ctx, admin.ID, permissions.PermissionClaim(permissions.RoleView)))
	_, err = store.CreateRole(ctx, "Guest")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), principal)))
		})
	})
	r.Route("/roles", roles.NewHandler(nil, rbac.NewService(store), rbac.Middleware{}).MountRoutes)
	return r, admin.ID
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
	return res
}

func TestListRoles(t *testing.T) {
	viewer := &rbac.Principal{UserID: 1, Username: "Admin", Permissions: []string{permissions.RoleView}}
	h, _ := newRouter(t, viewer)

	res := get(h, "/roles/")
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		Roles []rbac.Role `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	require.Len(t, body.Roles, 2)
	assert.Equal(t, "Admin", body.Roles[0].Name)
}

func TestRoleClaims(t *testing.T) {
	viewer := &rbac.Principal{UserID: 1, Username: "Admin", Permissions: []string{permissions.RoleView}}
	h, adminID := newRouter(t, viewer)

	res := get(h, "/roles/"+strconv.FormatInt(adminID, 10)+"/claims")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `{"type":"Permissions","value":"Permissions.Role.View"}`)

	assert.Equal(t, http.StatusNotFound, get(h, "/roles/999/claims").Code)
	assert.Equal(t, http.StatusBadRequest, get(h, "/roles/abc/claims").Code)
}

func TestRolesRequirePermission(t *testing.T) {
	guest := &rbac.Principal{UserID: 2, Username: "Guest", Permissions: []string{permissions.DishView}}
	h, _ := newRouter(t, guest)
	assert.Equal(t, http.StatusForbidden, get(h, "/roles/").Code)

	anonymous, _ := newRouter(t, nil)
	assert.Equal(t, http.StatusUnauthorized, get(anonymous, "/roles/").Code)
}
