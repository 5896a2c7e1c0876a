// Package ising provides a Metropolis-Hastings Monte Carlo engine for the
// two-dimensional Ising model.
//
// The package is organised leaf-first:
//
//   - [Lattice]: toroidal grid of ±1 spins with the energy model
//   - [Chain]: a lattice bound to a temperature, field and random source;
//     performs single-spin Metropolis steps and equilibration cycles
//   - [Simulator]: runs cycles until the cumulative average energy settles
//     within a tolerance and returns the full trajectory
//
// # Example
//
//	src := ising.NewSource(42)
//	lat, _ := ising.NewLattice(10, 10, src)
//	sim := ising.New()
//	res, err := sim.Run(ctx, lat, src, ising.DefaultParams(2.0))
//
// # Thread Safety
//
// A Lattice, Chain and Source are single-owner values. Independent
// temperature points share nothing and may run on separate goroutines, each
// with its own lattice and source.
package ising
