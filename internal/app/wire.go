package app

import (
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/bistro-hq/bistro/internal/auth"
	"github.com/bistro-hq/bistro/internal/observability"
	"github.com/bistro-hq/bistro/internal/rbac"
	"github.com/bistro-hq/bistro/internal/roles"
	"github.com/bistro-hq/bistro/internal/shared"
	"github.com/bistro-hq/bistro/internal/users"
)

const sessionCookieName = "bistro_session"

// Deps are the resources the HTTP surface is built from.
type Deps struct {
	Logger    *slog.Logger
	Config    *Config
	Store     rbac.Store
	Redis     *redis.Client
	Metrics   *observability.Metrics
	Passwords auth.PasswordVerifier
	Health    map[string]Pinger
}

// NewHandler assembles services, handlers and middleware into one handler.
func NewHandler(d Deps) http.Handler {
	passwords := d.Passwords
	if passwords == nil {
		passwords = auth.BcryptHasher{}
	}

	sessionManager := shared.NewSessionManager(d.Redis, sessionCookieName, d.Config.SessionSecret, d.Config.SessionTTL, d.Config.IsProduction())
	csrfManager := shared.NewCSRFManager(d.Config.CSRFSecret)
	tokens := auth.NewTokenIssuer(d.Config.TokenSecret, d.Config.TokenIssuer, d.Config.TokenTTL)

	rbacService := rbac.NewService(d.Store)
	rbacMiddleware := rbac.Middleware{Logger: d.Logger}
	if d.Metrics != nil {
		rbacMiddleware.Observer = d.Metrics
	}

	throttle := auth.NewThrottle(d.Config.LoginMaxAttempts, d.Config.LoginLockout)
	authService := auth.NewService(d.Store, rbacService, passwords, throttle)

	return NewRouter(RouterParams{
		Logger:             d.Logger,
		Config:             d.Config,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Authenticator:      auth.NewAuthenticator(tokens, d.Logger),
		AuthHandler:        auth.NewHandler(d.Logger, authService, tokens, sessionManager, csrfManager, rbacMiddleware),
		RolesHandler:       roles.NewHandler(d.Logger, rbacService, rbacMiddleware),
		UsersHandler:       users.NewHandler(d.Logger, users.NewService(d.Store), rbacMiddleware),
		PermissionsHandler: rbac.NewPermissionsHandler(rbacMiddleware),
		Metrics:            d.Metrics,
		Health:             d.Health,
	})
}
