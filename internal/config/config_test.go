package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitstat/splitstat/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 0.05, cfg.Analysis.Alpha)
	assert.Equal(t, 0.80, cfg.Analysis.Power)
	assert.Equal(t, 0.95, cfg.Analysis.ConfidenceLevel)
	assert.Equal(t, 20000, cfg.Generator.Users)
	assert.Equal(t, uint64(42), cfg.Generator.Seed)
	assert.Equal(t, 0.12, cfg.Generator.ControlConversionRate)
	assert.Equal(t, 0.148, cfg.Generator.VariantConversionRate)
	assert.Equal(t, 8090, cfg.Server.Port)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_YAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /tmp/other.db
analysis:
  alpha: 0.01
generator:
  users: 500
  seed: 99
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
	assert.Equal(t, 0.01, cfg.Analysis.Alpha)
	assert.Equal(t, 500, cfg.Generator.Users)
	assert.Equal(t, uint64(99), cfg.Generator.Seed)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.80, cfg.Analysis.Power)
	assert.Equal(t, 0.148, cfg.Generator.VariantConversionRate)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  alpha: 0.01\n"), 0o644))

	t.Setenv("SPLITSTAT_ALPHA", "0.10")
	t.Setenv("SPLITSTAT_PORT", "9999")
	t.Setenv("SPLITSTAT_DB_PATH", "/tmp/env.db")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.10, cfg.Analysis.Alpha)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis: [not a map"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"alpha out of range", "analysis:\n  alpha: 1.5\n"},
		{"power out of range", "analysis:\n  power: 0\n"},
		{"confidence out of range", "analysis:\n  confidence_level: 2\n"},
		{"too few users", "generator:\n  users: 1\n"},
		{"conversion rate out of range", "generator:\n  variant_conversion_rate: 1.5\n"},
		{"bad port", "server:\n  port: 0\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))

			_, err := config.Load(path)
			require.Error(t, err)
		})
	}
}
