package ising

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidDimension indicates a lattice with a non-positive side.
	ErrInvalidDimension = errors.New("ising: lattice dimensions must be positive")

	// ErrInvalidTemperature indicates T <= 0 reached the acceptance rule.
	ErrInvalidTemperature = errors.New("ising: temperature must be positive")

	// ErrInvalidParams indicates a tolerance, cycle size or cycle cap out of range.
	ErrInvalidParams = errors.New("ising: invalid simulation parameters")

	// ErrNonConvergence indicates the cycle cap was hit before the energy settled.
	ErrNonConvergence = errors.New("ising: energy did not converge")
)

// NonConvergenceError carries the partial trajectory of a run that hit
// Params.MaxCycles.
type NonConvergenceError struct {
	Cycles         int
	Energies       []float64
	Magnetizations []float64
}

func (e *NonConvergenceError) Error() string {
	return fmt.Sprintf("%v after %d cycles", ErrNonConvergence, e.Cycles)
}

func (e *NonConvergenceError) Unwrap() error {
	return ErrNonConvergence
}
