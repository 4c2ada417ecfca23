// Package roles exposes read-only role and role-claim endpoints.
package roles

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bistro-hq/bistro/internal/permissions"
	"github.com/bistro-hq/bistro/internal/platform/httpx"
	"github.com/bistro-hq/bistro/internal/rbac"
)

// Reader is the read side of role management.
type Reader interface {
	ListRoles(ctx context.Context) ([]rbac.Role, error)
	RoleClaims(ctx context.Context, roleID int64) (rbac.Role, []rbac.RoleClaim, error)
}

// Handler manages role endpoints.
type Handler struct {
	logger  *slog.Logger
	service Reader
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service Reader, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(permissions.RoleView))
		r.Get("/", h.listRoles)
		r.Get("/{id}/claims", h.roleClaims)
	})
}

type roleClaimsResponse struct {
	Role   rbac.Role    `json:"role"`
	Claims []rbac.Claim `json:"claims"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		httpx.InternalError(w, r, h.logger, err)
		return
	}
	if roles == nil {
		roles = []rbac.Role{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": roles})
}

func (h *Handler) roleClaims(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "role id must be a positive integer")
		return
	}
	role, claims, err := h.service.RoleClaims(r.Context(), id)
	if err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "role not found")
			return
		}
		httpx.InternalError(w, r, h.logger, err)
		return
	}
	out := roleClaimsResponse{Role: role, Claims: make([]rbac.Claim, 0, len(claims))}
	for _, rc := range claims {
		out.Claims = append(out.Claims, rc.Claim())
	}
	httpx.JSON(w, http.StatusOK, out)
}
