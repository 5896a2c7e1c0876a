package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distribution is a histogram of a trajectory with a fitted normal density
// evaluated at the bin centres.
type Distribution struct {
	Edges   []float64
	Centers []float64
	Counts  []float64
	Density []float64
	Normal  []float64
	Summary Summary
}

// NewDistribution bins data into the given number of equal-width bins.
func NewDistribution(data []float64, bins int) (*Distribution, error) {
	if bins < 1 {
		return nil, fmt.Errorf("analysis: bins must be positive, got %d", bins)
	}
	summary, err := Summarize(data)
	if err != nil {
		return nil, err
	}

	lo, hi := summary.Min, summary.Max
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// the top divider is exclusive in stat.Histogram
	edges[bins] = math.Nextafter(hi, math.Inf(1))

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	counts := stat.Histogram(nil, edges, sorted, nil)

	d := &Distribution{
		Edges:   edges,
		Centers: make([]float64, bins),
		Counts:  counts,
		Density: make([]float64, bins),
		Normal:  make([]float64, bins),
		Summary: summary,
	}

	norm := distuv.Normal{Mu: summary.Mean, Sigma: summary.StdDev}
	n := float64(len(data))
	for i := 0; i < bins; i++ {
		width := edges[i+1] - edges[i]
		d.Centers[i] = (edges[i] + edges[i+1]) / 2
		d.Density[i] = counts[i] / (n * width)
		if summary.StdDev > 0 {
			d.Normal[i] = norm.Prob(d.Centers[i])
		}
	}
	return d, nil
}
