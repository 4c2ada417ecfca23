package auth

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Throttle counts failed logins per username and locks the name out once
// the limit is reached. Counters expire after the lockout window.
type Throttle struct {
	c     *gocache.Cache
	limit int
}

// NewThrottle returns a Throttle. A non-positive limit disables locking.
func NewThrottle(limit int, lockout time.Duration) *Throttle {
	return &Throttle{c: gocache.New(lockout, time.Minute), limit: limit}
}

// Locked reports whether username has used up its attempts.
func (t *Throttle) Locked(username string) bool {
	if t == nil || t.limit <= 0 {
		return false
	}
	v, ok := t.c.Get(throttleKey(username))
	if !ok {
		return false
	}
	n, _ := v.(int)
	return n >= t.limit
}

// Fail records a failed attempt.
func (t *Throttle) Fail(username string) {
	if t == nil || t.limit <= 0 {
		return
	}
	key := throttleKey(username)
	if err := t.c.Add(key, 1, gocache.DefaultExpiration); err != nil {
		_, _ = t.c.IncrementInt(key, 1)
	}
}

// Reset clears the counter after a successful login.
func (t *Throttle) Reset(username string) {
	if t == nil {
		return
	}
	t.c.Delete(throttleKey(username))
}

func throttleKey(username string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(username))
}
