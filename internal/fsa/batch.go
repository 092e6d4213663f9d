package fsa

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// ManifestName is the file the batch writer drops next to its outputs.
const ManifestName = "manifest.json"

// DefaultBatchSamples are the demonstration sample identifiers built
// when no explicit list is given.
var DefaultBatchSamples = []string{
	"IDENTIFILER_CHILD_001",
	"IDENTIFILER_FATHER_001",
	"IDENTIFILER_MOTHER_001",
}

// Manifest records one batch run.
type Manifest struct {
	GeneratedAt time.Time `json:"generated_at"`
	Preset      string    `json:"preset"`
	SampleCount int       `json:"sample_count"`
	Files       []Result  `json:"files"`
}

// BatchOutcome is the per-sample status of a batch run. Err is nil for
// samples that built and verified cleanly.
type BatchOutcome struct {
	SampleName string
	Result     Result
	Err        error
}

// BuildBatch builds one container per sample name into dir, verifying
// each written file's magic. A failing sample is reported in its
// outcome and the batch moves on; the joined error covers every
// failure. The batch is not transactional: files written before a
// failure stay on disk.
func (b *Builder) BuildBatch(dir string, sampleNames []string) ([]BatchOutcome, Manifest, error) {
	if len(sampleNames) == 0 {
		sampleNames = DefaultBatchSamples
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, Manifest{}, fmt.Errorf("fsa: create output dir: %w", err)
	}

	manifest := Manifest{
		GeneratedAt: b.clock(),
		Preset:      b.preset.Name,
		SampleCount: b.samples,
	}
	outcomes := make([]BatchOutcome, 0, len(sampleNames))
	var errs []error

	for _, name := range sampleNames {
		path := filepath.Join(dir, name+".fsa")
		res, err := b.Build(path, name)
		if err == nil {
			err = Verify(path)
		}
		if err != nil {
			outcomes = append(outcomes, BatchOutcome{SampleName: name, Err: err})
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		outcomes = append(outcomes, BatchOutcome{SampleName: name, Result: res})
		manifest.Files = append(manifest.Files, res)
	}

	return outcomes, manifest, errors.Join(errs...)
}

// WriteManifest serializes the manifest as indented JSON into dir.
func WriteManifest(dir string, m Manifest) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("fsa: encode manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("fsa: write manifest: %w", err)
	}
	return path, nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("fsa: parse manifest: %w", err)
	}
	return m, nil
}
