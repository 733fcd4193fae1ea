package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_DSN", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, defaultSQLiteDSN, cfg.DSN())
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(5<<20), cfg.Storage.UploadMaxBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadDotEnv(t *testing.T) {
	// godotenv never overrides variables that are already set, so clear them
	// through t.Setenv first and let the file fill them in.
	for _, k := range []string{"DB_DRIVER", "APP_PORT", "CORS_ORIGINS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "DB_DRIVER=postgres\nAPP_PORT=9090\nCORS_ORIGINS=https://a.example,https://b.example\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, defaultPostgresDSN, cfg.DSN())
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestUnknownDriverFallsBackToSQLite(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("DATABASE_DSN", "custom.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "custom.db", cfg.DSN())
}
