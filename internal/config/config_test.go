package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kioku-srs/kioku/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults when the file sets nothing", func(t *testing.T) {
		cfgPath := writeConfig(t, "{}\n")

		cfg, err := config.Load(cfgPath)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, filepath.Join("data", "kioku.db"), cfg.Database.Path)
		assert.Equal(t, 20, cfg.Session.Limit)
		assert.Equal(t, 7, cfg.Session.ForecastDays)
		assert.Equal(t, "reports", cfg.Outputs.ReportDirectory)
	})

	t.Run("reads mysql settings from the file", func(t *testing.T) {
		cfgPath := writeConfig(t, `database:
  driver: mysql
  host: db.internal
  port: 3307
  username: kioku
  database: kioku
session:
  limit: 50
`)

		cfg, err := config.Load(cfgPath)
		require.NoError(t, err)
		assert.Equal(t, "mysql", cfg.Database.Driver)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 3307, cfg.Database.Port)
		assert.Equal(t, 50, cfg.Session.Limit)
	})

	t.Run("password comes from the environment", func(t *testing.T) {
		t.Setenv("KIOKU_DB_PASSWORD", "s3cret")
		cfgPath := writeConfig(t, "database:\n  driver: mysql\n")

		cfg, err := config.Load(cfgPath)
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.Database.Password)
	})

	t.Run("rejects an unknown driver", func(t *testing.T) {
		cfgPath := writeConfig(t, "database:\n  driver: postgres\n")

		_, err := config.Load(cfgPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "driver")
	})

	t.Run("rejects a non-positive session limit", func(t *testing.T) {
		cfgPath := writeConfig(t, "session:\n  limit: 0\n")

		_, err := config.Load(cfgPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "limit")
	})

	t.Run("fails on a malformed file", func(t *testing.T) {
		cfgPath := writeConfig(t, "database: [not a map\n")

		_, err := config.Load(cfgPath)
		assert.Error(t, err)
	})
}
