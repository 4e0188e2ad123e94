package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithDefaults(t *testing.T) {
	t.Setenv(EnvPrefix+"_CONFIG_DIR", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8095, cfg.Server.Port)
	assert.Equal(t, ":8095", cfg.Server.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "csv:headers:", cfg.Store.Redis.KeyPrefix)
	assert.Equal(t, "migrations", cfg.Store.Postgres.MigrationsPath)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "csv.headers.decoded", cfg.NATS.Subject)
	assert.Equal(t, -1, cfg.NATS.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
	assert.False(t, cfg.DLQ.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8095, cfg.Server.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9100
  read_timeout: 5s
store:
  backend: redis
  redis:
    url: redis://cache:6379/1
nats:
  enabled: true
  subject: csv.test
logging:
  level: debug
  format: text
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis://cache:6379/1", cfg.Store.Redis.URL)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "csv.test", cfg.NATS.Subject)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ConfigDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: 9200\n"), 0o644))
	t.Setenv(EnvPrefix+"_CONFIG_DIR", dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"_CONFIG_DIR", t.TempDir())
	t.Setenv("TELHAWK_CSV_SERVER_PORT", "9300")
	t.Setenv("TELHAWK_CSV_STORE_BACKEND", "postgres")
	t.Setenv("TELHAWK_CSV_DLQ_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Store.Backend)
	assert.True(t, cfg.DLQ.Enabled)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv(EnvPrefix+"_CONFIG_DIR", t.TempDir())
	t.Setenv("TELHAWK_CSV_STORE_BACKEND", "cassandra")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid store backend")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.NATS.Enabled = true
	cfg.NATS.Subject = ""
	assert.Error(t, cfg.Validate())
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Server.Port = 9400
	cfg.Store.Backend = "redis"
	cfg.Store.Redis.TTL = time.Hour
	require.NoError(t, Write(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
