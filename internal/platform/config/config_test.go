package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"ROOT_DOMAIN", "COOKIE_DOMAIN", "TRUSTED_ORIGINS", "SESSION_TTL", "DATABASE_URL", "KAFKA_BROKERS", "ENVIRONMENT", "BAIKI_ADDR"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "baiki.test", cfg.Tenancy.RootDomain)
	assert.Equal(t, []string{"/api", "/metrics", "/healthz", "/favicon.ico"}, cfg.Tenancy.PassthroughPrefixes)
	assert.Equal(t, ".baiki.test", cfg.Auth.CookieDomain)
	assert.Equal(t, []string{"http://localhost:3000", "http://baiki.test"}, cfg.Auth.TrustedOrigins)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Empty(t, cfg.Database.URL)
	assert.Empty(t, cfg.Audit.Brokers)
	assert.False(t, cfg.Auth.CookieSecure)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("ROOT_DOMAIN", "Example.COM")
	t.Setenv("TRUSTED_ORIGINS", " https://a.example.com , ,https://example.com")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "example.com", cfg.Tenancy.RootDomain)
	assert.Equal(t, []string{"https://a.example.com", "https://example.com"}, cfg.Auth.TrustedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Audit.Brokers)
}

func TestFromEnvErrors(t *testing.T) {
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "forever")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SESSION_TTL")
	})

	t.Run("production requires a signing key", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("JWT_SIGNING_KEY", "")
		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SIGNING_KEY")
	})
}
