package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 10, cfg.RateLimit.Registration)
	require.Equal(t, time.Minute, cfg.RateLimit.Window)
	require.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	require.True(t, cfg.Reminders.Enabled)
	require.Equal(t, 12*time.Hour, cfg.Reminders.MinAge)
}

func TestLoadConfigReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9000
  log_level: debug
database:
  driver: postgres
  postgres:
    host: db.internal
    database: valentine
telegram:
  bot_token: tok
  chat_id: "-100"
auth:
  jwt_secret: super-secret
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	require.Equal(t, 9000, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	require.Equal(t, "tok", cfg.Telegram.BotToken)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("VALENTINE_SERVER_PORT", "7777")
	t.Setenv("VALENTINE_AUTH_JWT_SECRET", "env-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 7777, cfg.Server.Port)
	require.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	// No JWT secret by default.
	require.Error(t, cfg.Validate())

	cfg.Auth.JWTSecret = "s"
	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())

	cfg.Server.Port = 8080
	cfg.Database.Driver = "oracle"
	require.Error(t, cfg.Validate())

	cfg.Database.Driver = "sqlite"
	require.NoError(t, cfg.Validate())
}
