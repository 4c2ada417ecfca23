package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bistro-hq/bistro/internal/platform/httpx"
	"github.com/bistro-hq/bistro/internal/rbac"
	"github.com/bistro-hq/bistro/internal/shared"
)

// SessionPrincipalKey is the session value holding the principal JSON.
const SessionPrincipalKey = "principal"

// BearerToken extracts the token from an Authorization: Bearer header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// StorePrincipal writes p into the session.
func StorePrincipal(sess *shared.Session, p rbac.Principal) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	sess.Set(SessionPrincipalKey, string(data))
	return nil
}

// SessionPrincipal reads the principal stored in sess, or nil.
func SessionPrincipal(sess *shared.Session) *rbac.Principal {
	if sess == nil {
		return nil
	}
	raw := sess.Get(SessionPrincipalKey)
	if raw == "" {
		return nil
	}
	var p rbac.Principal
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil
	}
	return &p
}

// Authenticator places the request's principal in its context. A bearer
// token takes precedence over the session; an invalid token is rejected
// outright rather than falling back to the cookie.
type Authenticator struct {
	tokens *TokenIssuer
	logger *slog.Logger
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(tokens *TokenIssuer, logger *slog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, logger: logger}
}

// Middleware resolves the principal for every request.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if raw, ok := BearerToken(r); ok {
			p, err := a.tokens.Parse(raw)
			if err != nil {
				if a.logger != nil {
					a.logger.Info("bearer token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(ctx, &p)))
			return
		}
		if p := SessionPrincipal(shared.SessionFromContext(ctx)); p != nil {
			ctx = rbac.ContextWithPrincipal(ctx, p)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
