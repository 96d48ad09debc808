package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "local")
	t.Setenv("JWT_SIGNING_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageTypeMySQL, cfg.Storage.Type)
	assert.Equal(t, 15*time.Minute, cfg.Auth.JWT.AccessTokenTTL)
	assert.Equal(t, 168*time.Hour, cfg.Auth.RefreshToken.TTL)
	assert.Equal(t, 32, cfg.Auth.RefreshToken.Bytes)
	assert.Equal(t, 3, cfg.Auth.RefreshToken.IssueAttempts)
	assert.False(t, cfg.Auth.LoginThrottle.Enabled)
	assert.Equal(t, "@every 1h", cfg.Purge.Cronspec)
	assert.Equal(t, time.Hour, cfg.Purge.Interval)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HttpServer.AllowedOrigins)
	assert.Empty(t, cfg.Seed.AdminPassword)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("JWT_SIGNING_KEY", "secret")
	t.Setenv("STORAGE_TYPE", StorageTypeMemory)
	t.Setenv("REFRESH_TOKEN_TTL", "24h")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageTypeMemory, cfg.Storage.Type)
	assert.Equal(t, 24*time.Hour, cfg.Auth.RefreshToken.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HttpServer.AllowedOrigins)
}

func TestLoad_MissingSigningKey(t *testing.T) {
	t.Setenv("ENV", "local")
	t.Setenv("JWT_SIGNING_KEY", "")
	require.NoError(t, os.Unsetenv("JWT_SIGNING_KEY"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"zero refresh ttl", "REFRESH_TOKEN_TTL", "0s"},
		{"negative refresh ttl", "REFRESH_TOKEN_TTL", "-1h"},
		{"zero access ttl", "JWT_ACCESS_TOKEN_TTL", "0s"},
		{"unknown storage", "STORAGE_TYPE", "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "local")
			t.Setenv("JWT_SIGNING_KEY", "secret")
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}
