package config

import "sort"

func field(h float64) *float64 { return &h }

var Presets = map[string]*Config{
	"small": {
		Rows: 4, Cols: 4,
		Temperature: TemperatureConfig{Start: 0.5, End: 5.0, Step: 0.5, Precision: 2},
		Etol:        1e-4, StepsPerCycle: 100, MaxCycles: 1_000_000, Workers: 1,
	},
	"original": {
		Rows: 10, Cols: 10,
		Temperature: TemperatureConfig{Start: 0.05, End: 4.0, Step: 0.05, Precision: 2},
		Etol:        1e-6, StepsPerCycle: 100, MaxCycles: 10_000_000, Workers: 4,
	},
	"field": {
		Rows: 10, Cols: 10,
		Temperature: TemperatureConfig{Start: 0.05, End: 4.0, Step: 0.05, Precision: 2},
		Field:       field(1),
		Etol:        1e-6, StepsPerCycle: 100, MaxCycles: 10_000_000, Workers: 4,
	},
	"variance": {
		Rows: 10, Cols: 10,
		Temperature: TemperatureConfig{List: []float64{1.7, 2, 2.5, 3, 4, 7}, Precision: 2},
		Etol:        1e-6, StepsPerCycle: 100, MaxCycles: 10_000_000, Workers: 2,
	},
	"critical": {
		Rows: 16, Cols: 16,
		Temperature: TemperatureConfig{Start: 2.0, End: 2.6, Step: 0.02, Precision: 2},
		Etol:        1e-4, StepsPerCycle: 256, MaxCycles: 2_000_000, Workers: 4,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	if p.Field != nil {
		cfg.Field = field(*p.Field)
	}
	cfg.Temperature.List = append([]float64(nil), p.Temperature.List...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
