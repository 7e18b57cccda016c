package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithEnvSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("YATUBE_SESSION_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Session.Secret)
	assert.Equal(t, "sessionid", cfg.Session.CookieName)
	assert.Equal(t, 20*time.Second, cfg.Cache.HomeTTL)
	assert.Equal(t, "sqlite", cfg.Database.Dialect)
	assert.Equal(t, "yatube.events", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "/media/", cfg.Media.URLPrefix)
}

func TestLoadSettingsFile(t *testing.T) {
	dir := t.TempDir()
	settings := `
[session]
secret = "file-secret"
ttl = "1h"

[cache]
home_ttl = "5s"

[database]
dialect = "postgres"
dsn = "host=db user=yatube dbname=yatube"

[kafka]
brokers = ["k1:9092", "k2:9092"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(settings), 0o644))
	chdir(t, dir)
	t.Setenv("YATUBE_CACHE_HOME_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.Session.Secret)
	assert.Equal(t, time.Hour, cfg.Session.TTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.HomeTTL)
	assert.Equal(t, "postgres", cfg.Database.Dialect)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRequiresSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("YATUBE_SESSION_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestReadWithoutSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("YATUBE_SESSION_SECRET", "")
	t.Setenv("YATUBE_DATABASE_DSN", "admin.db")

	cfg, err := Read()
	require.NoError(t, err)
	assert.Empty(t, cfg.Session.Secret)
	assert.Equal(t, "sqlite", cfg.Database.Dialect)
	assert.Equal(t, "admin.db", cfg.Database.DSN)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
