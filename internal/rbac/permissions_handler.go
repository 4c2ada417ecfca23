package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bistro-hq/bistro/internal/permissions"
	"github.com/bistro-hq/bistro/internal/platform/httpx"
)

// PermissionsHandler exposes the permission catalog.
type PermissionsHandler struct {
	rbac Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(permissions.RoleView))
		r.Get("/", h.listPermissions)
	})
}

type permissionModule struct {
	Module      string   `json:"module"`
	Permissions []string `json:"permissions"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	modules := make([]permissionModule, 0, len(permissions.Registry))
	for _, m := range permissions.Registry {
		claims := permissions.Discover([]permissions.Module{m})
		ids := make([]string, len(claims))
		for i, c := range claims {
			ids[i] = c.Value
		}
		modules = append(modules, permissionModule{Module: m.Name, Permissions: ids})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"modules": modules})
}
