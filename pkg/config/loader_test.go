package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	DB    DBConfig    `yaml:"db"`
	JWT   JWTConfig   `yaml:"jwt"`
	Redis RedisConfig `yaml:"redis"`
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad_LayersEnvFileOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  host: localhost
  port: 5432
  name: improvehub
jwt:
  secret: ${JWT_SECRET}
  ttl: 12h
redis:
  dedup_ttl: 10m
`)
	writeFile(t, dir, "production.yaml", `
db:
  host: db.supabase.internal
`)
	writeFile(t, dir, "secrets.env", `
# comment
JWT_SECRET="s3cret"
`)

	var cfg testConfig
	require.NoError(t, Load("production", dir, &cfg))

	assert.Equal(t, "db.supabase.internal", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port, "untouched base keys survive the merge")
	assert.Equal(t, "improvehub", cfg.DB.Name)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Redis.DedupTTL)
}

func TestLoad_MissingEnvFileFallsBackToBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "db:\n  host: localhost\n")

	var cfg testConfig
	require.NoError(t, Load("staging", dir, &cfg))
	assert.Equal(t, "localhost", cfg.DB.Host)
}

func TestLoad_MissingBaseFails(t *testing.T) {
	var cfg testConfig
	err := Load("local", t.TempDir(), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base.yaml")
}

func TestOverrideDBFromEnv(t *testing.T) {
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_SSLMODE", "require")

	cfg := DBConfig{Host: "localhost", Port: 5432}
	OverrideDBFromEnv(&cfg)

	assert.Equal(t, "envhost", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "require", cfg.SSLMode)
}

func TestOverrideDBFromEnv_IgnoresBadPort(t *testing.T) {
	t.Setenv("DB_PORT", "not-a-port")

	cfg := DBConfig{Port: 5432}
	OverrideDBFromEnv(&cfg)
	assert.Equal(t, 5432, cfg.Port)
}

func TestLoad_PlaceholdersFallBackToEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
db:
  password: ${TEST_DB_PASSWORD}
  user: ${TEST_UNSET_VARIABLE}
jwt:
  secret: pre-${TEST_JWT_PART}-post
`)
	t.Setenv("TEST_DB_PASSWORD", "fromenv")
	t.Setenv("TEST_JWT_PART", "mid")

	var cfg testConfig
	require.NoError(t, Load("local", dir, &cfg))
	assert.Equal(t, "fromenv", cfg.DB.Password)
	assert.Empty(t, cfg.DB.User)
	assert.Equal(t, "pre-mid-post", cfg.JWT.Secret)
}
