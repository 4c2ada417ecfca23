package rbac

import (
	"net/http"

	"github.com/bistro-hq/bistro/internal/permissions"
)

// Verdict is the outcome of an authorization check.
type Verdict int

const (
	// Allowed lets the request proceed.
	Allowed Verdict = iota
	// DeniedNoPermission means the principal lacks a required permission.
	DeniedNoPermission
	// DeniedUnauthenticated means no principal or claim set was supplied.
	DeniedUnauthenticated
)

func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case DeniedNoPermission:
		return "denied_no_permission"
	case DeniedUnauthenticated:
		return "denied_unauthenticated"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the verdict to the status the HTTP boundary responds with.
func (v Verdict) HTTPStatus() int {
	switch v {
	case Allowed:
		return http.StatusOK
	case DeniedUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

// Authorize grants access only when every required permission is present in
// claims as a "Permissions" claim with an identical value. Matching is exact
// and case-sensitive. An empty claim set is unauthenticated; an empty
// requirement list is allowed.
func Authorize(claims []Claim, required ...string) Verdict {
	if len(claims) == 0 {
		return DeniedUnauthenticated
	}
	for _, perm := range required {
		if !hasPermission(claims, perm) {
			return DeniedNoPermission
		}
	}
	return Allowed
}

// AuthorizeAny grants access when at least one required permission is present.
func AuthorizeAny(claims []Claim, required ...string) Verdict {
	if len(claims) == 0 {
		return DeniedUnauthenticated
	}
	if len(required) == 0 {
		return Allowed
	}
	for _, perm := range required {
		if hasPermission(claims, perm) {
			return Allowed
		}
	}
	return DeniedNoPermission
}

func hasPermission(claims []Claim, perm string) bool {
	for _, c := range claims {
		if c.Type == permissions.ClaimType && c.Value == perm {
			return true
		}
	}
	return false
}
