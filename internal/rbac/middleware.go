package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/bistro-hq/bistro/internal/platform/httpx"
)

// VerdictObserver records authorization outcomes.
type VerdictObserver interface {
	ObserveAuthz(verdict string)
}

// Middleware wires the authorization gate into HTTP handlers. It never touches
// the store: the principal placed in the request context is the only input.
type Middleware struct {
	Logger   *slog.Logger
	Observer VerdictObserver
}

// Require ensures the current principal holds every listed permission.
func (m Middleware) Require(perms ...string) func(http.Handler) http.Handler {
	return m.guard(Authorize, perms)
}

// RequireAny ensures the current principal holds at least one listed permission.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.guard(AuthorizeAny, perms)
}

func (m Middleware) guard(check func([]Claim, ...string) Verdict, perms []string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verdict := check(PrincipalFromContext(r.Context()).Claims(), required...)
			if m.Observer != nil {
				m.Observer.ObserveAuthz(verdict.String())
			}
			switch verdict {
			case Allowed:
				next.ServeHTTP(w, r)
			case DeniedUnauthenticated:
				httpx.Problem(w, verdict.HTTPStatus(), "Unauthorized", "authentication required")
			default:
				if m.Logger != nil {
					m.Logger.Info("rbac denied",
						slog.String("path", r.URL.Path),
						slog.Any("required", required))
				}
				httpx.Problem(w, verdict.HTTPStatus(), "Forbidden", "missing permission")
			}
		})
	}
}

// normalizePermissions drops blanks and duplicates. Case is preserved.
func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := unique[p]; ok {
			continue
		}
		unique[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
