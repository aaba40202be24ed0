package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// FFT transforms data zero padded to the next power of two.
func FFT(data []float64) []complex128 {
	buf := make([]float64, nextPow2(len(data)))
	copy(buf, data)
	return fft.FFTReal(buf)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns the magnitudes of the non-negative frequency bins
// of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := floats.Sum(data) / float64(len(data))
	centered := make([]float64, len(data))
	copy(centered, data)
	floats.AddConst(-mean, centered)

	spec := FFT(centered)
	ps := make([]float64, len(spec)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// Frequencies returns the bin centres in Hz for a spectrum of length bins
// computed from samples taken every dt seconds.
func Frequencies(bins int, dt float64) []float64 {
	n := 2 * bins
	out := make([]float64, bins)
	for i := range out {
		out[i] = float64(i) / (float64(n) * dt)
	}
	return out
}

// DominantFrequency returns the frequency and power of the strongest
// non-DC bin, or zeros when the series is too short.
func DominantFrequency(data []float64, dt float64) (freq, power float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}
	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return Frequencies(len(ps), dt)[best], ps[best]
}
