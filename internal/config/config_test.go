package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "127.0.0.1"

tracking:
  public_base_url: "https://track.example.com"
  data_dir: "/var/lib/opentrack"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "https://track.example.com", cfg.Tracking.PublicBaseURL)
	assert.Equal(t, "/var/lib/opentrack/tracking.db", cfg.Tracking.DBPath())
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "http://localhost:8080", cfg.Tracking.PublicBaseURL)
	assert.Equal(t, "tracking.db", cfg.Tracking.DBPath())
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("PUBLIC_BASE_URL", "https://t.example.net")
	t.Setenv("DATA_DIR", "/data")

	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "https://t.example.net", cfg.Tracking.PublicBaseURL)
	assert.Equal(t, "/data/tracking.db", cfg.Tracking.DBPath())
}

func TestDBPathExplicitOverride(t *testing.T) {
	cfg := TrackingConfig{DataDir: "/data", DatabasePath: "/mnt/disk/t.db"}
	assert.Equal(t, "/mnt/disk/t.db", cfg.DBPath())
}
