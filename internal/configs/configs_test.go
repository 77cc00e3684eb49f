package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv pins every variable LoadConfig reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "JWT_SECRET", "STORE_BACKEND",
		"DATABASE_URL", "BADGER_PATH", "GATEWAY_TIMEOUT", "HISTORY_LIMIT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, StorePostgres, cfg.StoreBackend)
	assert.Contains(t, cfg.DatabaseDSN, "livechat")
	assert.Equal(t, 5*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 100, cfg.HistoryLimit)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("STORE_BACKEND", "Badger")
	t.Setenv("BADGER_PATH", "/tmp/chat")
	t.Setenv("GATEWAY_TIMEOUT", "750ms")
	t.Setenv("HISTORY_LIMIT", "25")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, StoreBadger, cfg.StoreBackend)
	assert.Equal(t, "/tmp/chat", cfg.BadgerPath)
	assert.Equal(t, 750*time.Millisecond, cfg.GatewayTimeout)
	assert.Equal(t, 25, cfg.HistoryLimit)
}

func TestLoadConfigErrors(t *testing.T) {
	tcases := []struct {
		name string
		env  map[string]string
	}{
		{name: "non numeric port", env: map[string]string{"PORT": "http"}},
		{name: "privileged port", env: map[string]string{"PORT": "80"}},
		{name: "missing secret in production", env: map[string]string{"ENVIRONMENT": "production", "DATABASE_URL": "postgres://x"}},
		{name: "missing dsn in production", env: map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "s"}},
		{name: "memory store in production", env: map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": "s", "STORE_BACKEND": "memory"}},
		{name: "unknown backend", env: map[string]string{"STORE_BACKEND": "mongo"}},
		{name: "bad timeout", env: map[string]string{"GATEWAY_TIMEOUT": "soon"}},
		{name: "negative timeout", env: map[string]string{"GATEWAY_TIMEOUT": "-1s"}},
		{name: "zero history limit", env: map[string]string{"HISTORY_LIMIT": "0"}},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
