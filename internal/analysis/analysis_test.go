package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	s, err := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NoError(t, err)

	assert.Equal(t, 8, s.N)
	assert.InDelta(t, 5.0, s.Mean, 1e-12)
	assert.InDelta(t, 2.0, s.StdDev, 1e-12)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 9.0, s.Max)
	assert.InDelta(t, 4.5, s.Median, 1e-12)
	assert.LessOrEqual(t, s.Q25, s.Median)
	assert.GreaterOrEqual(t, s.Q75, s.Median)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestSummarize_ShortTrajectories(t *testing.T) {
	tests := []struct {
		name   string
		data   []float64
		mean   float64
		stddev float64
	}{
		{"single", []float64{-16}, -16, 0},
		{"pair", []float64{-16, -16}, -16, 0},
		{"three", []float64{-12, -14, -16}, -14, math.Sqrt(8.0 / 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Summarize(tt.data)
			require.NoError(t, err)
			assert.InDelta(t, tt.mean, s.Mean, 1e-12)
			assert.InDelta(t, tt.stddev, s.StdDev, 1e-12)
			assert.LessOrEqual(t, s.Min, s.Q25)
			assert.LessOrEqual(t, s.Q25, s.Q75)
			assert.LessOrEqual(t, s.Q75, s.Max)
		})
	}
}

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, -12.5, Mean([]float64{-10, -15}), 1e-12)
}

func TestDistribution_CountsEverySample(t *testing.T) {
	data := []float64{-16, -15.5, -14, -14, -13.2, -12, -12, -11, -10.5, -8}
	d, err := NewDistribution(data, 4)
	require.NoError(t, err)

	require.Len(t, d.Edges, 5)
	require.Len(t, d.Counts, 4)

	total := 0.0
	area := 0.0
	for i, c := range d.Counts {
		total += c
		area += d.Density[i] * (d.Edges[i+1] - d.Edges[i])
	}
	assert.Equal(t, float64(len(data)), total)
	assert.InDelta(t, 1.0, area, 1e-9)
	assert.Equal(t, -16.0, d.Edges[0])
	assert.Greater(t, d.Edges[4], -8.0)

	for _, p := range d.Normal {
		assert.Greater(t, p, 0.0)
	}
}

func TestDistribution_Constant(t *testing.T) {
	d, err := NewDistribution([]float64{-16, -16, -16}, 3)
	require.NoError(t, err)

	assert.Equal(t, 3.0, d.Counts[0]+d.Counts[1]+d.Counts[2])
	assert.Equal(t, 0.0, d.Summary.StdDev)
	for _, p := range d.Normal {
		assert.False(t, math.IsNaN(p))
		assert.Equal(t, 0.0, p)
	}
}

func TestDistribution_InvalidBins(t *testing.T) {
	_, err := NewDistribution([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestAutocorrelation_Constant(t *testing.T) {
	rho, err := Autocorrelation([]float64{3, 3, 3, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0, 0}, rho)
}

func TestAutocorrelation_Alternating(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = float64(1 - 2*(i%2))
	}
	rho, err := Autocorrelation(data)
	require.NoError(t, err)

	require.Len(t, rho, 64)
	assert.InDelta(t, 1.0, rho[0], 1e-9)
	assert.Less(t, rho[1], 0.0)
	assert.Greater(t, rho[2], 0.0)
	// lag k of a period-2 signal: (n-k)/n
	assert.InDelta(t, 63.0/64.0, -rho[1], 1e-9)
}

func TestIntegratedTime(t *testing.T) {
	_, err := IntegratedTime(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	alternating := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	tau, err := IntegratedTime(alternating)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tau, 1e-12)

	slow := make([]float64, 200)
	for i := range slow {
		slow[i] = math.Sin(float64(i) / 20)
	}
	tau, err = IntegratedTime(slow)
	require.NoError(t, err)
	assert.Greater(t, tau, 5.0)
}
