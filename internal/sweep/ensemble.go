package sweep

import (
	"context"
	"errors"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/isingsim/internal/analysis"
)

// Ensemble is a set of independent replicas at a single temperature.
type Ensemble struct {
	Replicas []Point
	// Energy and StdErr summarise the replica means that succeeded.
	Energy float64
	StdErr float64
	Failed int
}

// Ensemble runs replicas independent chains at temperature t on up to
// workers goroutines. Replica i is seeded with Seed + i.
func (s *Sweep) Ensemble(ctx context.Context, t float64, replicas, workers int) (*Ensemble, error) {
	if replicas < 1 {
		replicas = 1
	}
	if workers < 1 {
		workers = 1
	}

	points := make([]Point, replicas)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx := range replicas {
		g.Go(func() error {
			points[idx] = s.point(gctx, idx, t)
			if errors.Is(points[idx].Err, context.Canceled) || errors.Is(points[idx].Err, context.DeadlineExceeded) {
				return points[idx].Err
			}
			return nil
		})
	}
	err := g.Wait()

	e := &Ensemble{Replicas: points}
	means := make([]float64, 0, replicas)
	for _, p := range points {
		if p.Err != nil {
			e.Failed++
			continue
		}
		means = append(means, p.Energy)
	}
	if len(means) > 0 {
		e.Energy = analysis.Mean(means)
	}
	if len(means) > 1 {
		if summary, serr := analysis.Summarize(means); serr == nil {
			e.StdErr = summary.StdDev / math.Sqrt(float64(len(means)-1))
		}
	}
	return e, err
}
