// Package sweep drives the Ising engine across a temperature range and
// reduces each run to one summary point.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/isingsim/internal/analysis"
	"github.com/san-kum/isingsim/internal/ising"
)

const DefaultPrecision = 2

const maxSteps = 1_000_000

// Range walks Start..End inclusive in Step increments. List, when set,
// replaces the walk with explicit temperatures.
type Range struct {
	Start     float64
	End       float64
	Step      float64
	Precision int
	List      []float64
}

// Temperatures expands the range. The k-th value is Start + k*Step rounded
// to Precision decimals; a step finer than the precision yields each
// rounded value once.
func (r Range) Temperatures() ([]float64, error) {
	if len(r.List) > 0 {
		out := make([]float64, len(r.List))
		copy(out, r.List)
		return out, nil
	}
	if !(r.Step > 0) {
		return nil, fmt.Errorf("sweep: step must be positive, got %g", r.Step)
	}
	if r.End < r.Start {
		return nil, fmt.Errorf("sweep: end %g is below start %g", r.End, r.Start)
	}

	prec := r.Precision
	if prec <= 0 {
		prec = DefaultPrecision
	}

	steps := math.Floor((r.End-r.Start)/r.Step + 1e-9)
	if steps >= maxSteps {
		return nil, fmt.Errorf("sweep: step %g is too fine for %g..%g", r.Step, r.Start, r.End)
	}
	n := int(steps) + 1
	temps := make([]float64, 0, n)
	for k := range n {
		t := round(r.Start+float64(k)*r.Step, prec)
		if len(temps) > 0 && t == temps[len(temps)-1] {
			continue
		}
		temps = append(temps, t)
	}
	return temps, nil
}

func round(x float64, prec int) float64 {
	scale := math.Pow(10, float64(prec))
	return math.Round(x*scale) / scale
}

// Point summarises one temperature. Err is set when that temperature
// failed; other points are unaffected.
type Point struct {
	Temperature    float64
	Energy         float64
	Magnetization  float64
	StdDev         float64
	Cycles         int
	AcceptanceRate float64
	Converged      bool
	Err            error
	Result         *ising.Result
}

type Sweep struct {
	Rows, Cols int
	Range      Range
	Params     ising.Params
	Seed       int64
	// NewSimulator builds the simulator for one temperature; nil uses ising.New.
	NewSimulator func(temperature float64) *ising.Simulator
}

// Points yields one summary per temperature, lazily and in order. Each call
// starts from fresh lattices, so the sequence can be ranged over again.
func (s *Sweep) Points(ctx context.Context) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		temps, err := s.Range.Temperatures()
		if err != nil {
			yield(Point{Err: err})
			return
		}
		for idx, t := range temps {
			if ctx.Err() != nil {
				return
			}
			if !yield(s.point(ctx, idx, t)) {
				return
			}
		}
	}
}

// Run collects every point sequentially.
func (s *Sweep) Run(ctx context.Context) ([]Point, error) {
	if _, err := s.Range.Temperatures(); err != nil {
		return nil, err
	}
	points := make([]Point, 0)
	for p := range s.Points(ctx) {
		points = append(points, p)
	}
	return points, ctx.Err()
}

// RunParallel evaluates temperatures on up to workers goroutines. Seeds are
// derived from the temperature index, so the output equals Run's.
func (s *Sweep) RunParallel(ctx context.Context, workers int) ([]Point, error) {
	temps, err := s.Range.Temperatures()
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}

	points := make([]Point, len(temps))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx, t := range temps {
		g.Go(func() error {
			points[idx] = s.point(gctx, idx, t)
			// only cancellation stops the group; per-point failures stay on the point
			if errors.Is(points[idx].Err, context.Canceled) || errors.Is(points[idx].Err, context.DeadlineExceeded) {
				return points[idx].Err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return points, err
	}
	return points, nil
}

func (s *Sweep) point(ctx context.Context, idx int, t float64) Point {
	pt := Point{Temperature: t}

	src := ising.NewSource(s.Seed + int64(idx))
	lat, err := ising.NewLattice(s.Rows, s.Cols, src)
	if err != nil {
		pt.Err = err
		return pt
	}

	sim := ising.New()
	if s.NewSimulator != nil {
		sim = s.NewSimulator(t)
	}

	params := s.Params
	params.Temperature = t

	res, err := sim.Run(ctx, lat, src, params)
	pt.Result = res
	if err != nil {
		pt.Err = fmt.Errorf("T=%g: %w", t, err)
	}
	if res == nil {
		return pt
	}

	pt.Converged = err == nil
	pt.Cycles = res.Cycles
	pt.AcceptanceRate = res.AcceptanceRate()
	if len(res.Energies) > 0 {
		summary, serr := analysis.Summarize(res.Energies)
		if serr != nil {
			pt.Converged = false
			pt.Err = errors.Join(pt.Err, fmt.Errorf("T=%g: summarize: %w", t, serr))
		} else {
			pt.Energy = summary.Mean
			pt.StdDev = summary.StdDev
		}
	}
	if len(res.Magnetizations) > 0 {
		pt.Magnetization = analysis.Mean(res.Magnetizations)
	}
	return pt
}

// Curve returns the (temperature, energy) and (temperature, M/H) series of
// the successful points.
func Curve(points []Point) (temps, energies, mags []float64) {
	for _, p := range points {
		if p.Err != nil {
			continue
		}
		temps = append(temps, p.Temperature)
		energies = append(energies, p.Energy)
		mags = append(mags, p.Magnetization)
	}
	return temps, energies, mags
}
