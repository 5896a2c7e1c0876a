package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/isingsim/internal/ising"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultRows, cfg.Rows)
	assert.Nil(t, cfg.Field)
	assert.Equal(t, 0.0, cfg.FieldValue())
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.Params(2).TracksMagnetization())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	content := `rows: 4
cols: 6
field: 0.5
etol: 0.001
temperature:
  start: 1.0
  end: 2.0
  step: 0.25
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Rows)
	assert.Equal(t, 6, cfg.Cols)
	require.NotNil(t, cfg.Field)
	assert.Equal(t, 0.5, *cfg.Field)
	assert.Equal(t, 0.001, cfg.Etol)
	assert.Equal(t, ising.DefaultStepsPerCycle, cfg.StepsPerCycle)
	assert.Equal(t, DefaultPrecision, cfg.Temperature.Precision)

	temps, err := cfg.Range().Temperatures()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1.25, 1.5, 1.75, 2}, temps)

	p := cfg.Params(1.5)
	assert.Equal(t, 1.5, p.Temperature)
	assert.True(t, p.TracksMagnetization())
}

func TestLoadOver_KeepsPresetValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	require.NoError(t, os.WriteFile(path, []byte("seed: 99\n"), 0o644))

	cfg, err := LoadOver(path, GetPreset("field"))
	require.NoError(t, err)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, 1e-6, cfg.Etol)
	require.NotNil(t, cfg.Field)
	assert.Equal(t, 1.0, *cfg.Field)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rows: [1, 2"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoadPreservesAbsentField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Seed = 7
	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "field:")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Nil(t, loaded.Field)
	assert.Equal(t, int64(7), loaded.Seed)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero rows", func(c *Config) { c.Rows = 0 }, ising.ErrInvalidDimension},
		{"negative cols", func(c *Config) { c.Cols = -2 }, ising.ErrInvalidDimension},
		{"zero start", func(c *Config) { c.Temperature.Start = 0 }, ising.ErrInvalidTemperature},
		{"negative list entry", func(c *Config) { c.Temperature.List = []float64{1, -1} }, ising.ErrInvalidTemperature},
		{"zero etol", func(c *Config) { c.Etol = 0 }, ising.ErrInvalidParams},
		{"zero steps", func(c *Config) { c.StepsPerCycle = 0 }, ising.ErrInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestPresets(t *testing.T) {
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		require.NotNil(t, cfg, name)
		assert.NoError(t, cfg.Validate(), name)
	}

	assert.Nil(t, GetPreset("nonexistent"))

	f := GetPreset("field")
	require.NotNil(t, f.Field)
	*f.Field = 99
	assert.Equal(t, 1.0, *Presets["field"].Field, "GetPreset must not alias the preset")

	v := GetPreset("variance")
	temps, err := v.Range().Temperatures()
	require.NoError(t, err)
	assert.Equal(t, []float64{1.7, 2, 2.5, 3, 4, 7}, temps)
}

func TestSweepFromConfig(t *testing.T) {
	cfg := GetPreset("small")
	cfg.Seed = 3
	s := cfg.Sweep()

	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, int64(3), s.Seed)
	assert.Equal(t, cfg.Etol, s.Params.Tolerance)
}
