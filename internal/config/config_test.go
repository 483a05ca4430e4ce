package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PLANEBOARD_CONFIG", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://api.plane.so", cfg.Plane.BaseURL)
	require.Equal(t, "PLANE_API_KEY", cfg.Plane.APIKeyEnv)
	require.Equal(t, 10*time.Second, cfg.Plane.Timeout)
	require.Equal(t, 100, cfg.Plane.PageSize)
	require.Equal(t, 4, cfg.Plane.ModuleConcurrency)
	require.Equal(t, filepath.Join(dir, ".local", "share", "planeboard", "planeboard.db"), cfg.Database.Path)
	require.Equal(t, filepath.Join(dir, "Documents", "plane"), cfg.Notes.Dir)
	require.Zero(t, cfg.Sync.MinInterval)
	require.True(t, cfg.Sync.Watch)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	path := filepath.Join(dir, "board.toml")
	t.Setenv("PLANEBOARD_CONFIG", path)
	require.NoError(t, os.WriteFile(path, []byte(`
[plane]
base_url = "https://plane.example.com/"
workspace = "acme"
default_project_id = "p1"
timeout = "3s"

[database]
path = "~/cache/board.db"

[sync]
min_interval = "2m"
watch = false
`), 0o600))
	t.Setenv("PLANEBOARD_PLANE_WORKSPACE", "other")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "https://plane.example.com", cfg.Plane.BaseURL)
	require.Equal(t, "other", cfg.Plane.Workspace)
	require.Equal(t, "p1", cfg.Plane.DefaultProjectID)
	require.Equal(t, 3*time.Second, cfg.Plane.Timeout)
	require.Equal(t, filepath.Join(dir, "cache", "board.db"), cfg.Database.Path)
	require.Equal(t, 2*time.Minute, cfg.Sync.MinInterval)
	require.False(t, cfg.Sync.Watch)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("PLANEBOARD_CONFIG", filepath.Join(dir, "conf", "config.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	cfg.Plane.Workspace = "acme"
	cfg.Plane.DefaultProjectID = "p7"
	cfg.Sync.MinInterval = 30 * time.Second
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}
