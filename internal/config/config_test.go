package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  host: db.local
  query_timeout: 3s
jwt:
  secret: from-file
outbox:
  batch_size: 10
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.local", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port, "defaults survive")
	assert.Equal(t, 3*time.Second, cfg.DB.QueryTimeout)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Outbox.BatchSize)
	assert.Equal(t, 5, cfg.Outbox.MaxRetries)
	assert.Equal(t, "test", cfg.Env)
}

func TestLoadWithoutFileNeedsSecret(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "worklog.activity", cfg.Outbox.Queue)
}
