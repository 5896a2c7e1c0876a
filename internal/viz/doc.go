// Package viz provides terminal visualization for Ising sweeps.
//
// The package implements a live TUI using the Bubble Tea framework:
//
//   - [Model]: follows a running sweep, one temperature at a time
//   - [Canvas]: Braille-based pixel canvas; [SpinCanvas] draws a lattice on it
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	T     - Cycle color themes
//	Q     - Stop the sweep and quit
package viz
