package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bistro-hq/bistro/internal/platform/httpx"
	"github.com/bistro-hq/bistro/internal/rbac"
	"github.com/bistro-hq/bistro/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	tokens         *TokenIssuer
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	rbac           rbac.Middleware
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tokens *TokenIssuer, sessions *shared.SessionManager, csrf *shared.CSRFManager, rbacMW rbac.Middleware) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		tokens:         tokens,
		sessionManager: sessions,
		csrfManager:    csrf,
		rbac:           rbacMW,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/csrf", h.handleCSRF)
	// No permission listed: any authenticated principal passes.
	r.With(h.rbac.Require()).Get("/me", h.handleMe)
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=256"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	Principal rbac.Principal `json:"principal"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := h.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			httpx.InternalError(w, r, h.logger, err)
			return
		}
		fields := make(map[string]string, len(verrs))
		for _, fieldErr := range verrs {
			fields[strings.ToLower(fieldErr.Field())] = fieldErr.Tag()
		}
		httpx.ValidationProblem(w, fields)
		return
	}

	principal, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid username or password")
		return
	case errors.Is(err, shared.ErrAccountLocked):
		httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", err.Error())
		return
	case err != nil:
		httpx.InternalError(w, r, h.logger, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(principal)
	if err != nil {
		httpx.InternalError(w, r, h.logger, err)
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessionManager.Rotate(sess)
		sess.Delete(shared.CSRFSessionKey)
		sess.SetUser(strconv.FormatInt(principal.UserID, 10))
		if err := StorePrincipal(sess, principal); err != nil {
			httpx.InternalError(w, r, h.logger, err)
			return
		}
	} else if h.logger != nil {
		h.logger.Warn("session missing during login")
	}

	if h.logger != nil {
		h.logger.Info("login", slog.String("username", principal.Username), slog.Any("roles", principal.Roles))
	}
	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt, Principal: principal})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, rbac.PrincipalFromContext(r.Context()))
}

func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	token, err := h.csrfManager.EnsureToken(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		httpx.InternalError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"csrf_token": token})
}
