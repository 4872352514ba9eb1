package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/lumen/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Lumen", cfg.App.Name)
	assert.Equal(t, 30*time.Second, cfg.Gmail.PollInterval)
	assert.Equal(t, int64(10<<20), cfg.Ingest.MaxUploadBytes)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "postgres://postgres:@localhost:5432/lumen?sslmode=disable", cfg.ConnectionString())
	assert.False(t, cfg.GmailConfigured())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("DB_NAME", "ledger")
	t.Setenv("GMAIL_CLIENT_ID", "id")
	t.Setenv("GMAIL_CLIENT_SECRET", "secret")
	t.Setenv("GMAIL_POLL_INTERVAL", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.lumen.in,http://localhost:3000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "ledger", cfg.DB.Name)
	assert.Equal(t, 2*time.Minute, cfg.Gmail.PollInterval)
	assert.Equal(t, []string{"https://app.lumen.in", "http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.GmailConfigured())
}

func TestValidateServer(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	err = cfg.ValidateServer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.ValidateServer())
}
