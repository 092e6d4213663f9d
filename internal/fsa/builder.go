// Package fsa assembles synthetic .fsa containers: it synthesizes one
// trace per dye in a chemistry preset and serializes traces plus run
// metadata through the abif writer.
package fsa

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/seqforge/fsagen/internal/chemistry"
	"github.com/seqforge/fsagen/internal/trace"
	"github.com/seqforge/fsagen/pkg/abif"
)

// fixedMetadataTags counts the non-repeating tags every container
// carries: SMPL, MCHN, MODL, RUND, RUNT, SCAN, LANE.
const fixedMetadataTags = 7

// DefaultSampleCount is the scan length of the demonstration scenario.
const DefaultSampleCount = 8000

var ErrNoSampleName = errors.New("fsa: sample name must not be empty")

// Options configures a Builder. Zero values take defaults; Preset is
// required.
type Options struct {
	Preset      chemistry.Preset
	SampleCount int
	Lane        uint16
	// Seed makes trace synthesis reproducible when non-zero.
	Seed uint64
	// Clock overrides the run date/time source, for tests.
	Clock func() time.Time
}

// Builder creates .fsa containers. A Builder holds no open resources;
// each Build call is independent and may run concurrently with other
// Build calls targeting different paths.
type Builder struct {
	preset  chemistry.Preset
	samples int
	lane    uint16
	seed    uint64
	clock   func() time.Time
}

// Result describes one successfully built container.
type Result struct {
	Path       string    `json:"path"`
	SampleName string    `json:"sample_name"`
	RunID      string    `json:"run_id"`
	TagCount   int       `json:"tag_count"`
	FileSize   int64     `json:"file_size"`
	BuiltAt    time.Time `json:"built_at"`
}

// New validates the preset and returns a Builder.
func New(opts Options) (*Builder, error) {
	if err := opts.Preset.Validate(); err != nil {
		return nil, err
	}
	b := &Builder{
		preset:  opts.Preset,
		samples: opts.SampleCount,
		lane:    opts.Lane,
		seed:    opts.Seed,
		clock:   opts.Clock,
	}
	if b.samples <= 0 {
		b.samples = DefaultSampleCount
	}
	if b.lane == 0 {
		b.lane = 1
	}
	if b.clock == nil {
		b.clock = time.Now
	}
	return b, nil
}

// TagCount returns the exact number of directory entries a built
// container will hold. It depends only on the channel count, which is
// what lets the writer size the directory region before any payload is
// written.
func (b *Builder) TagCount() int {
	return fixedMetadataTags + 2*b.preset.Channels()
}

// SampleCount returns the per-channel scan length.
func (b *Builder) SampleCount() int { return b.samples }

// Build synthesizes traces for every channel and writes one container
// to path. On failure the partially written file is left on disk; no
// rollback is attempted.
func (b *Builder) Build(path, sampleName string) (Result, error) {
	if sampleName == "" {
		return Result{}, ErrNoSampleName
	}

	rng := trace.NewRNG(b.seed)
	cfg := trace.DefaultConfig()
	cfg.Samples = b.samples

	traces := make([][]int16, b.preset.Channels())
	for i, dye := range b.preset.Dyes {
		positions, shape := b.preset.PeaksFor(dye.Role)
		peaks := make([]trace.Peak, len(positions))
		for j, pos := range positions {
			peaks[j] = trace.Peak{
				Center:      pos,
				Sigma:       shape.Sigma,
				HalfWindow:  shape.HalfWindow,
				MinHeight:   shape.MinHeight,
				HeightRange: shape.HeightRange,
			}
		}
		data, err := trace.Synthesize(rng, cfg, peaks)
		if err != nil {
			return Result{}, fmt.Errorf("fsa: synthesize channel %s: %w", dye.Name, err)
		}
		traces[i] = data
	}

	f, err := os.Create(path)
	if err != nil {
		return Result{}, fmt.Errorf("fsa: create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	w, err := abif.NewWriter(f, b.TagCount())
	if err != nil {
		return Result{}, fmt.Errorf("fsa: %s: %w", path, err)
	}

	now := b.clock()
	steps := []struct {
		tag   string
		write func() error
	}{
		{"SMPL", func() error { return w.WriteString("SMPL", sampleName) }},
		{"MCHN", func() error { return w.WriteString("MCHN", b.preset.Instrument) }},
		{"MODL", func() error { return w.WriteString("MODL", b.preset.Model) }},
		{"RUND", func() error { return w.WriteDate("RUND", now) }},
		{"RUNT", func() error { return w.WriteTime("RUNT", now) }},
		{"SCAN", func() error { return w.WriteLong("SCAN", uint32(b.samples)) }},
		{"LANE", func() error { return w.WriteShort("LANE", b.lane) }},
	}
	for _, s := range steps {
		if err := s.write(); err != nil {
			return Result{}, fmt.Errorf("fsa: write %s: %w", s.tag, err)
		}
	}
	for _, dye := range b.preset.Dyes {
		if err := w.WriteString("DyeN", dye.Name); err != nil {
			return Result{}, fmt.Errorf("fsa: write DyeN %s: %w", dye.Name, err)
		}
	}
	for i, data := range traces {
		if err := w.WriteShortArray("DATA", data); err != nil {
			return Result{}, fmt.Errorf("fsa: write DATA %d: %w", i, err)
		}
	}

	if err := w.Finalise(); err != nil {
		return Result{}, fmt.Errorf("fsa: finalise %s: %w", path, err)
	}

	// Header, exactly-sized directory, then the payload heap: the
	// accumulated entries determine the final size without a stat.
	fileSize := int64(abif.HeaderSize) + int64(b.TagCount())*abif.EntrySize
	for _, e := range w.Entries() {
		fileSize += int64(e.Size)
	}

	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("fsa: close %s: %w", path, err)
	}

	return Result{
		Path:       path,
		SampleName: sampleName,
		RunID:      uuid.NewString(),
		TagCount:   b.TagCount(),
		FileSize:   fileSize,
		BuiltAt:    now,
	}, nil
}

// Verify re-opens a written file and checks the magic signature. Full
// structural validation is abif.Open's job; this is the cheap
// post-write check a batch run performs on every output.
func Verify(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var magic [4]byte
	if _, err := f.ReadAt(magic[:], 0); err != nil {
		return fmt.Errorf("fsa: read magic of %s: %w", path, err)
	}
	if string(magic[:]) != abif.Magic {
		return fmt.Errorf("%w: %s", abif.ErrInvalidMagic, path)
	}
	return nil
}
