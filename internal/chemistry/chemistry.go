// Package chemistry holds named chemistry presets: the dye set, the
// internal-size-standard ladder positions and the peak shapes a
// synthesized run should exhibit. Presets replace the hard-coded
// instrument constants scattered through older generator scripts.
package chemistry

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Role classifies a detection channel.
type Role string

const (
	// RoleSample carries amplified sample fragments.
	RoleSample Role = "sample"
	// RoleLadder carries the internal size standard used to calibrate
	// the sample channels.
	RoleLadder Role = "ladder"
)

var (
	ErrUnknownPreset = errors.New("chemistry: unknown preset")
	ErrNoDyes        = errors.New("chemistry: preset has no dyes")
	ErrLadderCount   = errors.New("chemistry: preset must have exactly one ladder dye")
	ErrBadRole       = errors.New("chemistry: invalid dye role")
	ErrBadShape      = errors.New("chemistry: invalid peak shape")
)

// Dye is one fluorescent label and the role of its channel.
type Dye struct {
	Name string `yaml:"name"`
	Role Role   `yaml:"role"`
}

// PeakShape describes the Gaussian bumps drawn on a channel.
type PeakShape struct {
	Sigma       float64 `yaml:"sigma"`
	HalfWindow  int     `yaml:"half_window"`
	MinHeight   int     `yaml:"min_height"`
	HeightRange int     `yaml:"height_range"`
}

// Preset is a complete chemistry description. SamplePeaks and
// LadderPeaks are sample positions within the scan range.
type Preset struct {
	Name        string    `yaml:"name"`
	Instrument  string    `yaml:"instrument"`
	Model       string    `yaml:"model"`
	Dyes        []Dye     `yaml:"dyes"`
	SamplePeaks []int     `yaml:"sample_peaks"`
	LadderPeaks []int     `yaml:"ladder_peaks"`
	SampleShape PeakShape `yaml:"sample_shape"`
	LadderShape PeakShape `yaml:"ladder_shape"`
}

// IdentifilerPlus is the built-in demonstration preset: a five-dye STR
// kit on an ABI 3130 with a GeneScan 500 LIZ size standard.
func IdentifilerPlus() Preset {
	return Preset{
		Name:       "identifiler-plus",
		Instrument: "ABI_3130",
		Model:      "3130",
		Dyes: []Dye{
			{Name: "FAM", Role: RoleSample},
			{Name: "VIC", Role: RoleSample},
			{Name: "NED", Role: RoleSample},
			{Name: "PET", Role: RoleSample},
			{Name: "LIZ", Role: RoleLadder},
		},
		SamplePeaks: []int{1000, 2000, 3000, 4000, 5000, 6000},
		LadderPeaks: []int{
			350, 500, 750, 1000, 1390, 1500, 1600, 2000,
			2500, 3000, 3400, 3500, 4000, 4500, 4900, 5000,
		},
		SampleShape: PeakShape{Sigma: 5, HalfWindow: 20, MinHeight: 200, HeightRange: 300},
		LadderShape: PeakShape{Sigma: 4, HalfWindow: 15, MinHeight: 300, HeightRange: 200},
	}
}

var builtins = map[string]func() Preset{
	"identifiler-plus": IdentifilerPlus,
}

// Builtin returns a built-in preset by name.
func Builtin(name string) (Preset, error) {
	fn, ok := builtins[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return fn(), nil
}

// Load reads a preset from a YAML file and validates it.
func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("chemistry: read preset: %w", err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("chemistry: parse preset: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Preset{}, err
	}
	return p, nil
}

// Save writes the preset to a YAML file.
func (p Preset) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("chemistry: encode preset: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the preset invariants: at least one dye, exactly one
// ladder channel, known roles and positive peak shapes.
func (p Preset) Validate() error {
	if len(p.Dyes) == 0 {
		return ErrNoDyes
	}
	ladders := 0
	for _, d := range p.Dyes {
		switch d.Role {
		case RoleSample:
		case RoleLadder:
			ladders++
		default:
			return fmt.Errorf("%w: dye %s has role %q", ErrBadRole, d.Name, d.Role)
		}
	}
	if ladders != 1 {
		return fmt.Errorf("%w: got %d", ErrLadderCount, ladders)
	}
	for _, shape := range []PeakShape{p.SampleShape, p.LadderShape} {
		if shape.Sigma <= 0 || shape.HalfWindow <= 0 || shape.MinHeight < 0 || shape.HeightRange < 0 {
			return fmt.Errorf("%w: %+v", ErrBadShape, shape)
		}
	}
	return nil
}

// Channels returns the number of detection channels.
func (p Preset) Channels() int { return len(p.Dyes) }

// PeaksFor returns the peak position list for a channel role, and the
// shape its peaks should take.
func (p Preset) PeaksFor(role Role) ([]int, PeakShape) {
	if role == RoleLadder {
		return p.LadderPeaks, p.LadderShape
	}
	return p.SamplePeaks, p.SampleShape
}
