package ising

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	observers []CycleObserver
}

func New() *Simulator {
	return &Simulator{observers: make([]CycleObserver, 0)}
}

func (s *Simulator) AddObserver(o CycleObserver) { s.observers = append(s.observers, o) }

// Run repeats equilibration cycles on lat until two successive cumulative
// average energies differ by at most p.Tolerance.
//
// Cancellation is checked between cycles; the partial result is returned
// with ctx.Err(). Hitting p.MaxCycles returns the partial result together
// with a *NonConvergenceError.
func (s *Simulator) Run(ctx context.Context, lat *Lattice, src Source, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	chain, err := NewChain(lat, src, p.Temperature, p.Field)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Energies: make([]float64, 0, 64),
	}
	track := p.TracksMagnetization()
	if track {
		result.Magnetizations = make([]float64, 0, 64)
	}

	cumulative := 0.0
	previous := -100 * p.Tolerance
	cycles := 0

	for math.Abs(cumulative-previous) > p.Tolerance {
		if cycles >= p.MaxCycles {
			s.finish(result, chain, cycles, cumulative)
			return result, &NonConvergenceError{
				Cycles:         cycles,
				Energies:       result.Energies,
				Magnetizations: result.Magnetizations,
			}
		}

		select {
		case <-ctx.Done():
			s.finish(result, chain, cycles, cumulative)
			return result, fmt.Errorf("ising: run at T=%g interrupted after %d cycles: %w", p.Temperature, cycles, ctx.Err())
		default:
		}

		previous = cumulative
		cycleAvg := chain.Cycle(p.StepsPerCycle)
		result.Energies = append(result.Energies, cycleAvg)

		stats := CycleStats{Cycle: cycles, Energy: cycleAvg, Lattice: lat}
		if track {
			ratio := chain.MagnetizationRatio()
			result.Magnetizations = append(result.Magnetizations, ratio)
			stats.Magnetization = ratio
		}

		cumulative = (previous*float64(cycles) + cycleAvg) / float64(cycles+1)
		cycles++

		stats.Cumulative = cumulative
		for _, obs := range s.observers {
			obs.OnCycle(stats)
		}
	}

	s.finish(result, chain, cycles, cumulative)
	return result, nil
}

func (s *Simulator) finish(r *Result, c *Chain, cycles int, cumulative float64) {
	r.Cycles = cycles
	r.Mean = cumulative
	r.Steps = c.Steps()
	r.Accepted = c.Accepted()
	r.FinalEnergy = c.Energy()
	r.FinalMagnetization = c.Lattice().Magnetization()
}
