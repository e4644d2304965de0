package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: test\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "test", cfg.Server.Mode)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "clipforge_session", cfg.Session.CookieName)
	assert.Equal(t, 10*time.Second, cfg.Metadata.Timeout)
	assert.True(t, cfg.Caption.Enabled)
	assert.Equal(t, "ClipForge", cfg.Site.Name)
	assert.Equal(t, "clipforge:", cfg.Session.RedisPrefix)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
server:
  port: 9090
session:
  ttl: 30m
caption:
  enabled: false
  model: gpt-4o-mini
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.False(t, cfg.Caption.Enabled)
	assert.Equal(t, "gpt-4o-mini", cfg.Caption.Model)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site:\n  name: Test\n"), 0o644))

	t.Setenv("CAPTION_API_KEY", "secret-key")
	t.Setenv("META_ACCESS_TOKEN", "meta-token")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret-key", cfg.Caption.APIKey)
	assert.Equal(t, "meta-token", cfg.Metadata.AccessToken)
}

func TestLoad_LogSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
log:
  format: text
  environment: prod
  max_size_mb: 10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	lc := cfg.Log.LoggerConfig("clipforge-api")
	assert.Equal(t, "debug", lc.Level)
	assert.Equal(t, "text", lc.Format)
	assert.Equal(t, "prod", lc.Environment)
	assert.Equal(t, 10, lc.MaxSizeMB)
	assert.Equal(t, 7, lc.MaxBackups)
	assert.Equal(t, "clipforge-api", lc.ServiceName)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080},
			Session: SessionConfig{Backend: "memory", TTL: time.Hour},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "memory backend", mutate: func(*Config) {}},
		{name: "redis without url", mutate: func(c *Config) { c.Session.Backend = "redis" }, wantErr: true},
		{name: "redis with url", mutate: func(c *Config) {
			c.Session.Backend = "redis"
			c.Session.RedisURL = "redis://localhost:6379/0"
		}},
		{name: "unknown backend", mutate: func(c *Config) { c.Session.Backend = "etcd" }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.Session.TTL = 0 }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
