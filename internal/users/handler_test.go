package users_test

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
	"github.com/bistro-hq/bistro/internal/users"
)

func setup(t *testing.T, perms ...string) (http.Handler, rbac.User) {
	t.Helper()
	ctx := context.Background()
	store := rbactest.NewMemoryStore()
	staff, err := store.CreateRole(ctx, "Staff")
	require.NoError(t, err)
	user, err := store.CreateUser(ctx, rbac.NewUser{Username: "Staff", Email: "staff@bistro.local", PasswordHash: "hash", Status: rbac.StatusActive})
	require.NoError(t, err)
	require.NoError(t, store.AssignRole(ctx, user.ID, staff.ID))

	principal := &rbac.Principal{UserID: 99, Username: "Viewer", Permissions: perms}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(rbac.ContextWithPrincipal(req.Context(), principal)))
		})
	})
	r.Route("/users", users.NewHandler(nil, users.NewService(store), rbac.Middleware{}).MountRoutes)
	return r, user
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, path, nil))
	return res
}

func TestListUsersHidesPasswordHash(t *testing.T) {
	h, _ := setup(t, permissions.UserView)

	res := get(h, "/users/")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"username":"Staff"`)
	assert.NotContains(t, res.Body.String(), "hash")
}

func TestUserRoles(t *testing.T) {
	h, user := setup(t, permissions.UserRoleView)

	res := get(h, "/users/"+strconv.FormatInt(user.ID, 10)+"/roles")
	require.Equal(t, http.StatusOK, res.Code)
	var body struct {
		User  rbac.User   `json:"user"`
		Roles []rbac.Role `json:"roles"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &body))
	assert.Equal(t, "Staff", body.User.Username)
	require.Len(t, body.Roles, 1)
	assert.Equal(t, "Staff", body.Roles[0].Name)

	assert.Equal(t, http.StatusNotFound, get(h, "/users/12345/roles").Code)
}

func TestUserRoutesArePermissionScoped(t *testing.T) {
	h, user := setup(t, permissions.UserView)
	assert.Equal(t, http.StatusOK, get(h, "/users/").Code)
	assert.Equal(t, http.StatusForbidden, get(h, "/users/"+strconv.FormatInt(user.ID, 10)+"/roles").Code)

	// Case differs: identifiers match exactly.
	lower, _ := setup(t, "permissions.user.view")
	assert.Equal(t, http.StatusForbidden, get(lower, "/users/").Code)
}
