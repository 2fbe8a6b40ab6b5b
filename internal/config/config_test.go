package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "MyWarehouse", cfg.Name)
	assert.Equal(t, "data/warehouse.db", cfg.Database.Path)
	assert.Equal(t, 5, cfg.Backups.Keep)
	assert.Equal(t, 3, cfg.Categorizer.DynamicMinCount)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
database:
  path: /tmp/wh.db
backups:
  dir: /tmp/backups
  keep: 2
ui:
  theme: dark
logging:
  debug_mode: true
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/wh.db", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Backups.Keep)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.True(t, cfg.Logging.DebugMode)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Untouched sections keep defaults
	assert.Equal(t, 4, cfg.Categorizer.BatchWorkers)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("WAREHOUSE_DB overrides path", func(t *testing.T) {
		t.Setenv("WAREHOUSE_DB", "/env/wh.db")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/env/wh.db", cfg.Database.Path)
	})

	t.Run("WAREHOUSE_BACKUPS_KEEP ignores junk", func(t *testing.T) {
		t.Setenv("WAREHOUSE_BACKUPS_KEEP", "not-a-number")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 5, cfg.Backups.Keep)
	})

	t.Run("WAREHOUSE_DEBUG enables debug mode", func(t *testing.T) {
		t.Setenv("WAREHOUSE_DEBUG", "1")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Logging.DebugMode)
	})

	t.Run("WAREHOUSE_CONFIG selects the config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "env.yaml")
		require.NoError(t, os.WriteFile(path, []byte("database:\n  path: /from/env.db\n"), 0644))
		t.Setenv("WAREHOUSE_CONFIG", path)

		cfg, err := Load(DefaultPath())
		require.NoError(t, err)
		assert.Equal(t, "/from/env.db", cfg.Database.Path)
	})

	t.Run("WAREHOUSE_CONFIG unset falls back to config.yaml", func(t *testing.T) {
		t.Setenv("WAREHOUSE_CONFIG", "")

		assert.Equal(t, "config.yaml", DefaultPath())
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.UI.Theme = "light"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "light", loaded.UI.Theme)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Database.Path = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Backups.Keep = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.UI.Theme = "sepia"
	assert.Error(t, cfg.Validate())
}
