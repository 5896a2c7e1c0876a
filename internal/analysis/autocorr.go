package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Autocorrelation returns the normalised autocorrelation rho(k) of data for
// lags 0..len(data)-1, computed through a zero-padded FFT. A constant series
// has rho(0) = 1 and zero elsewhere.
func Autocorrelation(data []float64) ([]float64, error) {
	n := len(data)
	if n == 0 {
		return nil, ErrEmpty
	}

	mean := Mean(data)
	padded := make([]float64, 2*n)
	for i, v := range data {
		padded[i] = v - mean
	}

	spectrum := fft.FFTReal(padded)
	for i, c := range spectrum {
		spectrum[i] = complex(cmplx.Abs(c)*cmplx.Abs(c), 0)
	}
	acf := fft.IFFT(spectrum)

	rho := make([]float64, n)
	rho[0] = 1
	c0 := real(acf[0])
	if c0 <= 0 {
		return rho, nil
	}
	for k := 1; k < n; k++ {
		rho[k] = real(acf[k]) / c0
	}
	return rho, nil
}

// IntegratedTime estimates the integrated autocorrelation time
// 1/2 + sum rho(k), summing until the first non-positive lag.
func IntegratedTime(data []float64) (float64, error) {
	rho, err := Autocorrelation(data)
	if err != nil {
		return 0, err
	}
	tau := 0.5
	for _, r := range rho[1:] {
		if r <= 0 {
			break
		}
		tau += r
	}
	return tau, nil
}
