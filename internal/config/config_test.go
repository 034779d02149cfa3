package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.App.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, ActivityMemory, cfg.Activity.Driver)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Zero(t, cfg.RateLimit.RPS)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.False(t, cfg.UsesRedis())

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, time.Second, cfg.Database.RetryDelay)
	assert.Equal(t, 10*time.Second, cfg.Database.ConnectTimeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_PORT", "8081")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_MAX_RETRIES", "3")
	t.Setenv("CACHE_ENABLED", "true")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("ACTIVITY_DRIVER", "redis")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, StorePostgres, cfg.Store.Driver)
	assert.Equal(t, 3, cfg.Database.MaxRetries)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, ActivityRedis, cfg.Activity.Driver)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.True(t, cfg.UsesRedis())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown store":         {"STORE_DRIVER": "sqlite"},
		"unknown activity":      {"ACTIVITY_DRIVER": "kafka"},
		"bad port":              {"APP_PORT": "http"},
		"bad duration":          {"CACHE_TTL": "soon"},
		"bad db duration":       {"DB_RETRY_DELAY": "1 second"},
		"negative rps":          {"RATE_LIMIT_RPS": "-1"},
		"production without pw": {"APP_ENV": "production", "STORE_DRIVER": "postgres"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
