package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/app")
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 8080, cfg.ServerPort)
		require.Equal(t, "development", cfg.AppEnv)
		require.True(t, cfg.Development())
		require.Equal(t, 300*time.Second, cfg.CacheListTTL)
		require.Equal(t, "en", cfg.DefaultLocale)
		require.Equal(t, "project-management-tool:development", cfg.CacheKeyPrefix)
	})

	t.Run("requires the database url", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("JWT_SECRET", "secret")

		_, err := Load()
		require.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("requires the jwt secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/app")
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		require.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("rejects unknown environments", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/app")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("APP_ENV", "staging")

		_, err := Load()
		require.ErrorContains(t, err, "APP_ENV")
	})

	t.Run("parses overrides", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/app")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("SERVER_PORT", "9090")
		t.Setenv("CACHE_LIST_TTL", "2m")
		t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 9090, cfg.ServerPort)
		require.Equal(t, 2*time.Minute, cfg.CacheListTTL)
		require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	})
}
