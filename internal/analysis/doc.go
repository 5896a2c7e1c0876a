// Package analysis summarises Monte Carlo trajectories.
//
//   - [Summarize]: mean, dispersion and quantiles of a trajectory
//   - [NewDistribution]: histogram with a fitted normal density
//   - [Autocorrelation], [IntegratedTime]: correlation between cycles
//
// # Correlated samples
//
// Successive cycle averages are not independent. The integrated
// autocorrelation time gives the effective sample count:
//
//	tau, _ := analysis.IntegratedTime(result.Energies)
//	effective := float64(len(result.Energies)) / (2 * tau)
package analysis
