// Package permissions declares the permission catalog: every identifier of the
// form "Permissions.<Module>.<Action>" the system knows about.
package permissions

import (
	"strings"
	"sync"
)

const prefix = ClaimType + "."

// Claim is a (type, value) pair attached to a role or a principal.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// PermissionClaim wraps a permission identifier into a claim.
func PermissionClaim(id string) Claim {
	return Claim{Type: ClaimType, Value: id}
}

// Identifier builds the canonical identifier for a module action.
func Identifier(module, action string) string {
	return prefix + module + "." + action
}

// GenerateForModule returns the Create, View, Edit and Delete identifiers for module.
func GenerateForModule(module string) []string {
	actions := CRUD()
	ids := make([]string, 0, len(actions))
	for _, action := range actions {
		ids = append(ids, Identifier(module, action))
	}
	return ids
}

// Discover walks modules one level deep and returns the de-duplicated set of
// permission claims they declare, in declaration order. Modules without
// actions contribute nothing; an empty list yields an empty set.
func Discover(modules []Module) []Claim {
	seen := make(map[string]struct{})
	claims := make([]Claim, 0, len(modules)*4)
	for _, module := range modules {
		name := strings.TrimSpace(module.Name)
		if name == "" {
			continue
		}
		for _, action := range module.Actions {
			if action == "" {
				continue
			}
			id := Identifier(name, action)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			claims = append(claims, PermissionClaim(id))
		}
	}
	return claims
}

var (
	allOnce sync.Once
	all     []Claim
)

// All returns the full catalog derived from Registry. The result is computed
// once per process; callers receive their own copy.
func All() []Claim {
	claims := catalog()
	out := make([]Claim, len(claims))
	copy(out, claims)
	return out
}

func catalog() []Claim {
	allOnce.Do(func() {
		all = Discover(Registry)
	})
	return all
}

// Values returns the identifiers of All.
func Values() []string {
	claims := catalog()
	ids := make([]string, len(claims))
	for i, c := range claims {
		ids[i] = c.Value
	}
	return ids
}

// Parse splits an identifier into module and action. It reports false when id
// is not in the canonical format or names an unsupported action.
func Parse(id string) (module, action string, ok bool) {
	rest, found := strings.CutPrefix(id, prefix)
	if !found {
		return "", "", false
	}
	module, action, found = strings.Cut(rest, ".")
	if !found || module == "" || strings.Contains(action, ".") {
		return "", "", false
	}
	switch action {
	case ActionCreate, ActionView, ActionEdit, ActionDelete:
		return module, action, true
	}
	return "", "", false
}

// Known reports whether id is part of the catalog.
func Known(id string) bool {
	for _, c := range catalog() {
		if c.Value == id {
			return true
		}
	}
	return false
}
