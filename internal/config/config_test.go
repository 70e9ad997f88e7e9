package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
server:
  port: "9090"
store:
  refresh_interval: 5m
webhook:
  lifecycle_url: http://n8n.local/webhook/projetos
`), 0o600))

	t.Setenv("WEBHOOK_INTAKE_URL", "http://n8n.local/webhook/demandas")
	t.Setenv("STORE_DEMANDS_TABLE", "demandas_v2")

	cfg, err := Load("local", dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Store.RefreshInterval)
	assert.Equal(t, "projetos", cfg.Store.ProjectsTable)
	assert.Equal(t, "demandas_v2", cfg.Store.DemandsTable)
	assert.Equal(t, "http://n8n.local/webhook/projetos", cfg.Webhook.LifecycleURL)
	assert.Equal(t, "http://n8n.local/webhook/demandas", cfg.Webhook.IntakeURL)
	assert.Equal(t, "http", cfg.Webhook.Transport)
	assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
}

func TestLoad_MissingDir(t *testing.T) {
	_, err := Load("local", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
