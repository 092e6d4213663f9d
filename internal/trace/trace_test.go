package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seqforge/fsagen/internal/trace"
)

// TestSynthesize_BadConfig verifies parameter validation errors.
func TestSynthesize_BadConfig(t *testing.T) {
	rng := trace.NewRNG(1)

	_, err := trace.Synthesize(rng, trace.Config{Samples: 0}, nil)
	assert.ErrorIs(t, err, trace.ErrBadSampleCount, "zero samples must error")

	_, err = trace.Synthesize(rng, trace.Config{Samples: -5}, nil)
	assert.ErrorIs(t, err, trace.ErrBadSampleCount, "negative samples must error")

	cfg := trace.DefaultConfig()
	bad := []trace.Peak{{Center: 100, Sigma: 0, HalfWindow: 20, MinHeight: 200}}
	_, err = trace.Synthesize(rng, cfg, bad)
	assert.ErrorIs(t, err, trace.ErrBadPeak, "zero sigma must error")
}

// TestSynthesize_LengthAndRange checks the output guarantees: exact
// length and every sample within [0, MaxIntensity].
func TestSynthesize_LengthAndRange(t *testing.T) {
	rng := trace.NewRNG(7)
	cfg := trace.Config{Samples: 8000, BaselineMean: 50, BaselineStdev: 10}

	data, err := trace.Synthesize(rng, cfg, nil)
	require.NoError(t, err)
	require.Len(t, data, cfg.Samples)

	for i, v := range data {
		require.GreaterOrEqual(t, v, int16(0), "sample %d below zero", i)
		require.LessOrEqual(t, v, int16(trace.MaxIntensity), "sample %d above max", i)
	}
}

// TestSynthesize_PeakRaisesSignal verifies that the maximum within a
// peak window strictly exceeds the baseline mean by at least the
// configured minimum height.
func TestSynthesize_PeakRaisesSignal(t *testing.T) {
	rng := trace.NewRNG(42)
	cfg := trace.DefaultConfig()
	peak := trace.Peak{Center: 2000, Sigma: 5, HalfWindow: 20, MinHeight: 200, HeightRange: 300}

	data, err := trace.Synthesize(rng, cfg, []trace.Peak{peak})
	require.NoError(t, err)

	max := windowMax(data, peak)
	require.GreaterOrEqual(t, int(max), peak.MinHeight,
		"peak window max must reach the minimum height")
	assert.Greater(t, float64(max), cfg.BaselineMean,
		"peak window max must rise above the baseline mean")

	// With a flat baseline the margin over the mean is exactly the
	// drawn peak height, so the full inequality is deterministic.
	flat := trace.Config{Samples: 4000, BaselineMean: 0, BaselineStdev: 0}
	data, err = trace.Synthesize(trace.NewRNG(42), flat, []trace.Peak{peak})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, float64(windowMax(data, peak)), flat.BaselineMean+float64(peak.MinHeight),
		"peak window max must exceed the baseline mean by at least the minimum height")
}

func windowMax(data []int16, p trace.Peak) int16 {
	var max int16
	for x := p.Center - p.HalfWindow; x < p.Center+p.HalfWindow; x++ {
		if data[x] > max {
			max = data[x]
		}
	}
	return max
}

// TestSynthesize_PeaksOnlyRaise confirms the element-wise maximum
// combine: a zero-height peak never lowers the baseline.
func TestSynthesize_PeaksOnlyRaise(t *testing.T) {
	cfg := trace.Config{Samples: 400, BaselineMean: 50, BaselineStdev: 10}
	peak := trace.Peak{Center: 200, Sigma: 5, HalfWindow: 20, MinHeight: 0, HeightRange: 0}

	base, err := trace.Synthesize(trace.NewRNG(9), cfg, nil)
	require.NoError(t, err)
	withPeak, err := trace.Synthesize(trace.NewRNG(9), cfg, []trace.Peak{peak})
	require.NoError(t, err)

	assert.Equal(t, base, withPeak, "zero-height peak must leave the baseline untouched")
}

// TestSynthesize_OutOfBoundsPeaksSkipped checks the edge policy: peaks
// whose window leaves the sample range are silently dropped.
func TestSynthesize_OutOfBoundsPeaksSkipped(t *testing.T) {
	cfg := trace.Config{Samples: 100, BaselineMean: 0, BaselineStdev: 0}
	peaks := []trace.Peak{
		{Center: 5, Sigma: 5, HalfWindow: 20, MinHeight: 500},   // window starts below 0
		{Center: 95, Sigma: 5, HalfWindow: 20, MinHeight: 500},  // window ends past n
		{Center: 500, Sigma: 5, HalfWindow: 20, MinHeight: 500}, // entirely outside
	}

	data, err := trace.Synthesize(trace.NewRNG(3), cfg, peaks)
	require.NoError(t, err)
	for i, v := range data {
		assert.Equal(t, int16(0), v, "sample %d raised by a skipped peak", i)
	}
}

// TestSynthesize_SeedReproducibility: the same seed yields identical
// traces, distinct seeds do not.
func TestSynthesize_SeedReproducibility(t *testing.T) {
	cfg := trace.DefaultConfig()
	peaks := []trace.Peak{{Center: 1000, Sigma: 5, HalfWindow: 20, MinHeight: 200, HeightRange: 300}}

	a, err := trace.Synthesize(trace.NewRNG(11), cfg, peaks)
	require.NoError(t, err)
	b, err := trace.Synthesize(trace.NewRNG(11), cfg, peaks)
	require.NoError(t, err)
	c, err := trace.Synthesize(trace.NewRNG(12), cfg, peaks)
	require.NoError(t, err)

	assert.Equal(t, a, b, "same seed must reproduce the trace")
	assert.NotEqual(t, a, c, "different seeds must differ")
}
