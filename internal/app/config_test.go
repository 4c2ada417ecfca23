package app

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")
	t.Setenv("TOKEN_SECRET", "short")
	_, err := LoadConfig()
	require.ErrorContains(t, err, "token secret")

	t.Setenv("TOKEN_SECRET", strings.Repeat("x", 32))
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.LoginMaxAttempts)
	assert.True(t, cfg.SeedOnStart)
	assert.Equal(t, "bistro", cfg.TokenIssuer)
	assert.False(t, cfg.IsProduction())
}

func TestLoggerFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("phase", "roles"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"phase":"roles"`)
}

func TestTestModeFlag(t *testing.T) {
	t.Cleanup(RefreshTestMode)
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(testModeEnv, "0")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
