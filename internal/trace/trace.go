// Package trace synthesizes per-channel capillary-electrophoresis
// signal data: a Gaussian baseline with Gaussian peaks overlaid at
// preset positions.
package trace

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// MaxIntensity is the largest valid sample value. Samples are signed
// 16-bit but never negative.
const MaxIntensity = 32767

var (
	ErrBadSampleCount = errors.New("trace: sample count must be positive")
	ErrBadPeak        = errors.New("trace: invalid peak parameters")
)

// Config describes the baseline of one synthesized channel.
type Config struct {
	Samples       int
	BaselineMean  float64
	BaselineStdev float64
}

// DefaultConfig matches the demonstration instrument setup: 8000
// samples with a baseline around 50 RFU.
func DefaultConfig() Config {
	return Config{
		Samples:       8000,
		BaselineMean:  50,
		BaselineStdev: 10,
	}
}

// Peak describes one Gaussian bump overlaid on the baseline. Height is
// drawn uniformly from [MinHeight, MinHeight+HeightRange).
type Peak struct {
	Center      int
	Sigma       float64
	HalfWindow  int
	MinHeight   int
	HeightRange int
}

// NewRNG returns the random source used by the synthesizer. A non-zero
// seed gives a reproducible stream for test fixtures; a zero seed draws
// the state from the shared generator.
func NewRNG(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Synthesize produces one channel's sample sequence: an i.i.d. normal
// baseline clamped to [0, MaxIntensity], with each peak combined in via
// element-wise maximum so peaks only ever raise the signal. Peaks whose
// window [Center-HalfWindow, Center+HalfWindow) falls outside the
// sample range are skipped.
func Synthesize(rng *rand.Rand, cfg Config, peaks []Peak) ([]int16, error) {
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrBadSampleCount, cfg.Samples)
	}
	for i, p := range peaks {
		if p.Sigma <= 0 || p.HalfWindow <= 0 || p.MinHeight < 0 || p.HeightRange < 0 {
			return nil, fmt.Errorf("%w: peak %d", ErrBadPeak, i)
		}
	}

	data := make([]int16, cfg.Samples)
	for i := range data {
		v := cfg.BaselineMean + rng.NormFloat64()*cfg.BaselineStdev
		data[i] = clamp(v)
	}

	for _, p := range peaks {
		start := p.Center - p.HalfWindow
		end := p.Center + p.HalfWindow
		if start < 0 || end > cfg.Samples {
			continue
		}
		height := float64(p.MinHeight)
		if p.HeightRange > 0 {
			height += float64(rng.IntN(p.HeightRange))
		}
		for x := start; x < end; x++ {
			d := float64(x-p.Center) / p.Sigma
			g := clamp(height * math.Exp(-0.5*d*d))
			if g > data[x] {
				data[x] = g
			}
		}
	}

	return data, nil
}

func clamp(v float64) int16 {
	if v < 0 {
		return 0
	}
	if v > MaxIntensity {
		return MaxIntensity
	}
	return int16(v)
}
