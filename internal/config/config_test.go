package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("BOOKMARKER_JWT_SECRET", "secret")

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, "1323", cfg.Port)
		assert.Equal(t, DBTypePostgres, cfg.DBType)
		assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
		assert.Equal(t, int64(5<<20), cfg.FetchMaxBodyBytes)
		assert.Equal(t, 24*time.Hour, cfg.JWTRefreshTTL)
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("BOOKMARKER_JWT_SECRET", "secret")
		t.Setenv("BOOKMARKER_FETCH_TIMEOUT", "3s")
		t.Setenv("BOOKMARKER_DB_TYPE", DBTypeSQLite)

		cfg, err := NewConfig()
		require.NoError(t, err)

		assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
		assert.Equal(t, DBTypeSQLite, cfg.DBType)
		assert.Equal(t, "secret", cfg.JWTSecret)
	})

	t.Run("jwt secret is required", func(t *testing.T) {
		t.Setenv("BOOKMARKER_JWT_SECRET", "")

		_, err := NewConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT secret is empty")
	})

	t.Run("bad ssl mode", func(t *testing.T) {
		t.Setenv("BOOKMARKER_JWT_SECRET", "secret")
		t.Setenv("BOOKMARKER_DB_SSL_MODE", "verify-full")

		_, err := NewConfig()
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DBSSLMode:    sslModeRequire,
			DBType:       DBTypeMySQL,
			JWTSecret:    "secret",
			FetchTimeout: time.Second,
		}
	}

	assert.NoError(t, validate(valid()))

	cfg := valid()
	cfg.DBType = "oracle"
	assert.EqualError(t, validate(cfg), "DB type is invalid: oracle")

	cfg = valid()
	cfg.JWTSecret = ""
	assert.EqualError(t, validate(cfg), "JWT secret is empty, set BOOKMARKER_JWT_SECRET")

	cfg = valid()
	cfg.FetchTimeout = 0
	assert.Error(t, validate(cfg))
}
