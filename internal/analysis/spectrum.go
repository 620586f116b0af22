package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var ErrShortSignal = errors.New("analysis: signal too short")

// Spectrum returns the one-sided amplitude spectrum of signal sampled every
// dt seconds, with its mean removed. freqs are in Hz.
func Spectrum(signal []float64, dt float64) (freqs, amp []float64, err error) {
	n := len(signal)
	if n < 2 {
		return nil, nil, ErrShortSignal
	}
	if dt <= 0 || math.IsNaN(dt) {
		return nil, nil, errors.New("analysis: sample period must be positive")
	}

	centered := make([]float64, n)
	copy(centered, signal)
	floats.AddConst(-stat.Mean(signal, nil), centered)

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	freqs = make([]float64, len(coeff))
	amp = make([]float64, len(coeff))
	for i, c := range coeff {
		freqs[i] = fft.Freq(i) / dt
		amp[i] = 2 * cmplx.Abs(c) / float64(n)
	}
	return freqs, amp, nil
}

// Dominant returns the strongest non-DC component.
func Dominant(freqs, amp []float64) (freq, a float64) {
	if len(amp) < 2 {
		return 0, 0
	}
	i := floats.MaxIdx(amp[1:]) + 1
	return freqs[i], amp[i]
}

// SettlingTime returns the time of the first sample after which |signal|
// never exceeds tol again. ok is false when the last sample is outside.
func SettlingTime(signal []float64, dt, tol float64) (t float64, ok bool) {
	last := -1
	for i, v := range signal {
		if math.Abs(v) > tol {
			last = i
		}
	}
	if last == len(signal)-1 {
		return 0, false
	}
	return float64(last+1) * dt, true
}

// Ripple is the standard deviation of the trailing fraction of signal.
func Ripple(signal []float64, tail float64) float64 {
	n := int(math.Ceil(float64(len(signal)) * tail))
	if n < 2 {
		return 0
	}
	return stat.StdDev(signal[len(signal)-n:], nil)
}
