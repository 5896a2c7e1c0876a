package ising

import (
	"fmt"
	"math"
)

const (
	DefaultTolerance     = 1e-4
	DefaultStepsPerCycle = 100
	DefaultMaxCycles     = 1_000_000
)

// Params configures one run at a single temperature.
type Params struct {
	Temperature   float64
	Field         float64
	Tolerance     float64
	StepsPerCycle int
	MaxCycles     int
}

func DefaultParams(temperature float64) Params {
	return Params{
		Temperature:   temperature,
		Tolerance:     DefaultTolerance,
		StepsPerCycle: DefaultStepsPerCycle,
		MaxCycles:     DefaultMaxCycles,
	}
}

// TracksMagnetization reports whether M/H is recorded per cycle.
func (p Params) TracksMagnetization() bool { return p.Field != 0 }

func (p Params) Validate() error {
	if !(p.Temperature > 0) || math.IsInf(p.Temperature, 1) {
		return fmt.Errorf("%w: got %g", ErrInvalidTemperature, p.Temperature)
	}
	if math.IsNaN(p.Field) || math.IsInf(p.Field, 0) {
		return fmt.Errorf("%w: field must be finite, got %g", ErrInvalidParams, p.Field)
	}
	if !(p.Tolerance > 0) {
		return fmt.Errorf("%w: tolerance must be positive, got %g", ErrInvalidParams, p.Tolerance)
	}
	if p.StepsPerCycle <= 0 {
		return fmt.Errorf("%w: steps per cycle must be positive, got %d", ErrInvalidParams, p.StepsPerCycle)
	}
	if p.MaxCycles <= 0 {
		return fmt.Errorf("%w: max cycles must be positive, got %d", ErrInvalidParams, p.MaxCycles)
	}
	return nil
}

// Result is the outcome of one converged run.
type Result struct {
	Energies           []float64
	Magnetizations     []float64
	Cycles             int
	Mean               float64
	Steps              int
	Accepted           int
	FinalEnergy        float64
	FinalMagnetization int
}

// AcceptanceRate returns the fraction of proposals that flipped a spin.
func (r *Result) AcceptanceRate() float64 {
	if r.Steps == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(r.Steps)
}

// CycleStats is handed to observers after every equilibration cycle.
// Lattice is only safe to read inside OnCycle.
type CycleStats struct {
	Cycle         int
	Energy        float64
	Cumulative    float64
	Magnetization float64
	Lattice       *Lattice
}

type CycleObserver interface {
	OnCycle(s CycleStats)
}

// ObserverFunc adapts a function to CycleObserver.
type ObserverFunc func(CycleStats)

func (f ObserverFunc) OnCycle(s CycleStats) { f(s) }
