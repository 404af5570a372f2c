package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DB_USER", "cinema")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_NAME", "cinema")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "3306", cfg.DB.Port)
	assert.Equal(t, 5*time.Second, cfg.DB.QueryTimeout)
	assert.Equal(t, 20, cfg.Paging.PageSize)
	assert.Equal(t, 100, cfg.Paging.MaxPageSize)
	assert.Equal(t, map[string]bool{"GET": true}, cfg.Cache.Methods())
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
	assert.False(t, cfg.Events.Enabled)
}

func TestLoadMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	_, err := Load()
	assert.Error(t, err)
}

func TestRateLimitNormalize(t *testing.T) {
	setRequired(t)
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Rate.Capacity)
	assert.Equal(t, 10*time.Second, cfg.Rate.TTL)
}

func TestRedisAddressPrefersHostPort(t *testing.T) {
	c := RedisConfig{Host: "redis", Port: "6380", Addr: "ignored:1"}
	assert.Equal(t, "redis:6380", c.Address())
}

func TestCacheMethodsNormalized(t *testing.T) {
	c := CacheConfig{MethodList: []string{" get", "head ", ""}}
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, c.Methods())
}

func TestLoadSectionKeysAreUnprefixed(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_PORT", "3307")
	t.Setenv("PAGE_SIZE", "5")
	t.Setenv("CACHE_METHODS", "GET,HEAD")
	t.Setenv("ORDER_EVENTS_ENABLED", "true")
	t.Setenv("ADMIN_EMAIL", "root@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3307", cfg.DB.Port)
	assert.Equal(t, "cinema", cfg.DB.User)
	assert.Equal(t, "secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 5, cfg.Paging.PageSize)
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Cache.Methods())
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "root@example.com", cfg.Auth.AdminEmail)
}
