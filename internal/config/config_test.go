package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DB_DRIVER", "SQLITE")
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:5173")
	assert.Contains(t, cfg.AllowedOrigins, "https://a.example")
	assert.Contains(t, cfg.AllowedOrigins, "https://b.example")
	assert.NotContains(t, cfg.AllowedOrigins, "")
	require.NoError(t, cfg.Validate())
}

func TestLoadTOMLFileIsOverriddenByEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskhub.toml")
	content := `
port = "8081"
db_driver = "mysql"
database_url = "user:pass@tcp(localhost:3306)/taskhub"
jwt_secret = "from-file"
token_ttl = "48h"
reminder_interval = "5m"
log_level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 48*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5*time.Minute, cfg.ReminderInterval)
	assert.Equal(t, 24*time.Hour, cfg.ReminderWindow, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "missing secret")

	cfg.JWTSecret = "x"
	cfg.DatabaseURL = "dsn"
	cfg.DBDriver = "oracle"
	assert.Error(t, cfg.Validate(), "unknown driver")

	cfg.DBDriver = "postgres"
	assert.NoError(t, cfg.Validate())

	cfg.ReminderInterval = -time.Minute
	assert.Error(t, cfg.Validate(), "negative reminder interval")

	cfg.ReminderInterval = 0
	cfg.AllowedOrigins = nil
	assert.Error(t, cfg.Validate(), "no origins")
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("TOKEN_TTL", "seven days")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("TOKEN_TTL", "")
	t.Setenv("REMINDER_WINDOW", "tomorrow")
	_, err = Load("")
	assert.Error(t, err)
}
