package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
storage:
  backend: memory
state:
  backend: memory
jwt:
  signing_key: file-key
  session_ttl: 2h
assignment:
  lock_ttl: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "file-key", cfg.JWT.SigningKey)
	assert.Equal(t, "secret-santa", cfg.JWT.Issuer)
	assert.Equal(t, 2*time.Hour, cfg.JWT.SessionTTL)
	assert.Equal(t, 5*time.Second, cfg.Assignment.LockTTL)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
jwt:
  signing_key: file-key
`)
	t.Setenv("JWT_SIGNING_KEY", "env-key")
	t.Setenv("DATABASE_POSTGRES_HOST", "db.internal")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.JWT.SigningKey)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 24*time.Hour, cfg.JWT.SessionTTL)
}

func TestLoad_Validation(t *testing.T) {
	_, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	assert.ErrorContains(t, err, "signing_key")

	_, err = Load(writeConfig(t, "jwt:\n  signing_key: k\nstorage:\n  backend: mongo\n"))
	assert.ErrorContains(t, err, "storage backend")

	_, err = Load(writeConfig(t, "jwt:\n  signing_key: k\nstate:\n  backend: etcd\n"))
	assert.ErrorContains(t, err, "state backend")
}

func TestPostgresConfig_DSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5432, User: "santa", Password: "pw", DB: "gifts", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=santa password=pw dbname=gifts sslmode=disable TimeZone=UTC", cfg.DSN())
}
