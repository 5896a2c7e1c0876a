package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/isingsim/internal/ising"
	"github.com/san-kum/isingsim/internal/sweep"
)

const (
	DefaultRows      = 10
	DefaultCols      = 10
	DefaultTStart    = 0.5
	DefaultTEnd      = 4.0
	DefaultTStep     = 0.05
	DefaultPrecision = 2
	DefaultWorkers   = 1
)

type Config struct {
	Rows          int               `yaml:"rows"`
	Cols          int               `yaml:"cols"`
	Temperature   TemperatureConfig `yaml:"temperature"`
	Field         *float64          `yaml:"field,omitempty"`
	Etol          float64           `yaml:"etol"`
	StepsPerCycle int               `yaml:"steps_per_cycle"`
	MaxCycles     int               `yaml:"max_cycles"`
	Seed          int64             `yaml:"seed"`
	Workers       int               `yaml:"workers"`
}

type TemperatureConfig struct {
	Start     float64   `yaml:"start"`
	End       float64   `yaml:"end"`
	Step      float64   `yaml:"step"`
	Precision int       `yaml:"precision"`
	List      []float64 `yaml:"list,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Rows: DefaultRows,
		Cols: DefaultCols,
		Temperature: TemperatureConfig{
			Start:     DefaultTStart,
			End:       DefaultTEnd,
			Step:      DefaultTStep,
			Precision: DefaultPrecision,
		},
		Etol:          ising.DefaultTolerance,
		StepsPerCycle: ising.DefaultStepsPerCycle,
		MaxCycles:     ising.DefaultMaxCycles,
		Workers:       DefaultWorkers,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of base; keys absent from the file keep the
// values in base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// FieldValue returns H, or 0 when no field is configured.
func (c *Config) FieldValue() float64 {
	if c.Field == nil {
		return 0
	}
	return *c.Field
}

func (c *Config) Validate() error {
	if c.Rows < 1 || c.Cols < 1 {
		return fmt.Errorf("%w: got %dx%d", ising.ErrInvalidDimension, c.Rows, c.Cols)
	}
	if _, err := c.Range().Temperatures(); err != nil {
		return err
	}
	for _, t := range c.Temperature.List {
		if !(t > 0) {
			return fmt.Errorf("%w: list entry %g", ising.ErrInvalidTemperature, t)
		}
	}
	if len(c.Temperature.List) == 0 && !(c.Temperature.Start > 0) {
		return fmt.Errorf("%w: start %g", ising.ErrInvalidTemperature, c.Temperature.Start)
	}
	p := c.Params(1)
	return p.Validate()
}

// Params returns engine parameters for temperature t.
func (c *Config) Params(t float64) ising.Params {
	return ising.Params{
		Temperature:   t,
		Field:         c.FieldValue(),
		Tolerance:     c.Etol,
		StepsPerCycle: c.StepsPerCycle,
		MaxCycles:     c.MaxCycles,
	}
}

func (c *Config) Range() sweep.Range {
	return sweep.Range{
		Start:     c.Temperature.Start,
		End:       c.Temperature.End,
		Step:      c.Temperature.Step,
		Precision: c.Temperature.Precision,
		List:      c.Temperature.List,
	}
}

// Sweep builds a temperature sweep from the configuration.
func (c *Config) Sweep() *sweep.Sweep {
	return &sweep.Sweep{
		Rows:   c.Rows,
		Cols:   c.Cols,
		Range:  c.Range(),
		Params: c.Params(c.Temperature.Start),
		Seed:   c.Seed,
	}
}
