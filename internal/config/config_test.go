package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultListen, cfg.Daemon.Listen)
	assert.Equal(t, 50*time.Millisecond, cfg.Recompute.Coalesce)
	assert.Equal(t, "builtin:inbox", cfg.TUI.DefaultPerspective)
	assert.Equal(t, 5*time.Second, cfg.TUI.Refresh)
	assert.Equal(t, "config.yaml", filepath.Base(Path()))
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
daemon:
  listen: 127.0.0.1:9000
recompute:
  coalesce: 250ms
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Daemon.Listen)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.APIAddr())
	assert.Equal(t, 250*time.Millisecond, cfg.Recompute.Coalesce)
	assert.Equal(t, Default().Daemon.DB, cfg.Daemon.DB)
	assert.Equal(t, 5*time.Second, cfg.TUI.Refresh)
}

func TestLoad_ExpandsHome(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("daemon:\n  db: ~/tasks/focus.db\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "tasks", "focus.db"), cfg.Daemon.DB)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed yaml", "daemon: [unclosed"},
		{"bad listen", "daemon:\n  listen: nowhere\n"},
		{"negative coalesce", "recompute:\n  coalesce: -1s\n"},
		{"fast refresh", "tui:\n  refresh: 10ms\n"},
		{"empty perspective", "tui:\n  default_perspective: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.data), 0o600))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Daemon.Listen = "localhost:8123"
	cfg.TUI.DefaultPerspective = "builtin:today"
	cfg.TUI.Refresh = 30 * time.Second
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSave_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	assert.Error(t, Save(path, nil))

	cfg := Default()
	cfg.Daemon.DB = ""
	assert.Error(t, Save(path, cfg))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
