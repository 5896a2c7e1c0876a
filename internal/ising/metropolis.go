package ising

import (
	"fmt"
	"math"
)

// Chain binds a lattice to a temperature, a field and a random source and
// keeps the running total energy in step with the spins.
type Chain struct {
	lat         *Lattice
	src         Source
	temperature float64
	field       float64
	energy      float64
	steps       int
	accepted    int
}

// NewChain seeds the running total from TotalEnergy. It fails before any
// mutation when the temperature is not positive.
func NewChain(lat *Lattice, src Source, temperature, field float64) (*Chain, error) {
	if !(temperature > 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidTemperature, temperature)
	}
	return &Chain{
		lat:         lat,
		src:         src,
		temperature: temperature,
		field:       field,
		energy:      lat.TotalEnergy(field),
	}, nil
}

func (c *Chain) Lattice() *Lattice { return c.lat }
func (c *Chain) Energy() float64   { return c.energy }
func (c *Chain) Steps() int        { return c.steps }
func (c *Chain) Accepted() int     { return c.accepted }

// Accepts applies the Metropolis rule to a proposal with energy change delta
// at temperature t, given a uniform draw r in [0, 1).
func Accepts(delta, t, r float64) bool {
	if delta < 0 {
		return true
	}
	return r < math.Exp(-delta/t)
}

// Step proposes flipping one uniformly chosen spin and reports whether the
// flip was accepted. The spin and the running total change together or not
// at all.
func (c *Chain) Step() bool {
	i := c.src.IntN(c.lat.n)
	j := c.src.IntN(c.lat.m)
	c.steps++

	delta := c.lat.DeltaEnergy(i, j, c.field)
	if delta >= 0 && !Accepts(delta, c.temperature, c.src.Float64()) {
		return false
	}

	c.energy += c.lat.TotalEnergyChange(i, j, c.field)
	c.lat.Flip(i, j)
	c.accepted++
	return true
}

// Cycle runs steps proposals and returns the average of the running total
// sampled after each of them.
func (c *Chain) Cycle(steps int) float64 {
	avg := 0.0
	for k := 0; k < steps; k++ {
		c.Step()
		avg += c.energy / float64(steps)
	}
	return avg
}

// MagnetizationRatio returns M/H, or 0 when no field is applied.
func (c *Chain) MagnetizationRatio() float64 {
	if c.field == 0 {
		return 0
	}
	return float64(c.lat.Magnetization()) / c.field
}
