package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMustLoadPath(t *testing.T) {
	path := writeConfig(t, `
env: prod
http:
  address: ":9090"
  allowed_origins:
    - "https://app.example.com"
database:
  dsn: "host=db user=app dbname=app"
jwt:
  access_secret: "a-secret"
  refresh_secret: "r-secret"
  access_ttl: 5m
  refresh_ttl: 48h
`)

	cfg := MustLoadPath(path)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "host=db user=app dbname=app", cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.JWT.AccessTTL)
	assert.Equal(t, 48*time.Hour, cfg.JWT.RefreshTTL)
}

func TestMustLoadPathDefaults(t *testing.T) {
	path := writeConfig(t, "env: local\n")

	cfg := MustLoadPath(path)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTTL)
	assert.NotEmpty(t, cfg.JWT.AccessSecret)
	assert.NotEmpty(t, cfg.JWT.RefreshSecret)
}

func TestMustLoadPathMissingFile(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadPath(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
