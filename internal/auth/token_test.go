package auth

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistro-hq/bistro/internal/permissions"
	"github.com/bistro-hq/bistro/internal/rbac"
	"github.com/bistro-hq/bistro/internal/shared"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", "bistro", time.Hour)
	in := rbac.Principal{UserID: 7, Username: "Admin", Roles: []string{"Admin"}, Permissions: []string{permissions.MenuEdit}}

	raw, expires, err := issuer.Issue(in)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	out, err := issuer.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, rbac.Allowed, rbac.Authorize(out.Claims(), permissions.MenuEdit))
}

func TestTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", "bistro", time.Hour)
	p := rbac.Principal{UserID: 1, Username: "Guest"}

	t.Run("expired", func(t *testing.T) {
		past := NewTokenIssuer("secret", "bistro", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		raw, _, err := past.Issue(p)
		require.NoError(t, err)
		_, err = issuer.Parse(raw)
		require.ErrorIs(t, err, shared.ErrInvalidToken)
		require.ErrorIs(t, err, jwtv5.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		raw, _, err := NewTokenIssuer("other", "bistro", time.Hour).Issue(p)
		require.NoError(t, err)
		_, err = issuer.Parse(raw)
		require.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		raw, _, err := NewTokenIssuer("secret", "elsewhere", time.Hour).Issue(p)
		require.NoError(t, err)
		_, err = issuer.Parse(raw)
		require.ErrorIs(t, err, shared.ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		raw, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, jwtv5.RegisteredClaims{
			Subject:   "1",
			Issuer:    "bistro",
			ExpiresAt: jwtv5.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Parse(raw)
		require.ErrorIs(t, err, shared.ErrInvalidToken)
	})
}

func TestThrottle(t *testing.T) {
	th := NewThrottle(2, time.Minute)
	assert.False(t, th.Locked("Staff"))
	th.Fail("Staff")
	assert.False(t, th.Locked("Staff"))
	th.Fail("staff")
	assert.True(t, th.Locked("STAFF"))
	th.Reset("Staff")
	assert.False(t, th.Locked("Staff"))

	disabled := NewThrottle(0, time.Minute)
	disabled.Fail("Staff")
	assert.False(t, disabled.Locked("Staff"))

	var none *Throttle
	none.Fail("Staff")
	assert.False(t, none.Locked("Staff"))
}
