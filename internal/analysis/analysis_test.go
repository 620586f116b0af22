package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpectrumFindsTone(t *testing.T) {
	const dt = 0.005
	signal := make([]float64, 400)
	for i := range signal {
		ti := float64(i) * dt
		signal[i] = 3 + 0.5*math.Sin(2*math.Pi*2*ti)
	}

	freqs, amp, err := Spectrum(signal, dt)
	require.NoError(t, err)
	assert.Len(t, freqs, 201)
	assert.InDelta(t, 100.0, freqs[200], 1e-9, "nyquist")
	assert.InDelta(t, 0, amp[0], 1e-9, "mean removed")

	f, a := Dominant(freqs, amp)
	assert.InDelta(t, 2.0, f, 1e-9)
	assert.InDelta(t, 0.5, a, 1e-9)
}

func TestSpectrumRejects(t *testing.T) {
	_, _, err := Spectrum([]float64{1}, 0.01)
	assert.ErrorIs(t, err, ErrShortSignal)
	_, _, err = Spectrum([]float64{1, 2}, 0)
	assert.Error(t, err)
}

func TestDominantShort(t *testing.T) {
	f, a := Dominant([]float64{0}, []float64{1})
	assert.Zero(t, f)
	assert.Zero(t, a)
}

func TestSettlingTime(t *testing.T) {
	signal := []float64{1, 0.5, 0.05, 0.2, 0.04, 0.03, -0.02}
	ts, ok := SettlingTime(signal, 0.1, 0.1)
	assert.True(t, ok)
	assert.InDelta(t, 0.4, ts, 1e-12)

	ts, ok = SettlingTime([]float64{0.01, 0.02}, 0.1, 0.1)
	assert.True(t, ok)
	assert.Zero(t, ts)

	_, ok = SettlingTime([]float64{0, 1}, 0.1, 0.1)
	assert.False(t, ok)
}

func TestRipple(t *testing.T) {
	signal := []float64{5, 5, 5, 5, 1, -1, 1, -1}
	assert.InDelta(t, math.Sqrt(4.0/3), Ripple(signal, 0.5), 1e-12)
	assert.Zero(t, Ripple(signal, 0.1))
}
