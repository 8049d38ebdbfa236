// Package preset stores named kick parameter sets as YAML.
//
// A bank file looks like:
//
//	presets:
//	  - name: gabber
//	    description: distorted 90s rotterdam kick
//	    length_ms: 120
//	    pitch_start_hz: 120
//	    pitch_decay: 8
//	    harmonics: 0.6
//	    drive: 3
//	    click_level: 0.7
//	    body_level: 1
//
// Fields left out of an entry keep their [kick.DefaultParams] value.
package preset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-kick/dsp/kick"
)

// ErrNotFound is returned by [Bank.Get] for an unknown name.
var ErrNotFound = errors.New("preset: not found")

// Preset is a named parameter set.
type Preset struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description,omitempty"`
	LengthMS     float64 `yaml:"length_ms"`
	PitchStartHz float64 `yaml:"pitch_start_hz"`
	PitchDecay   float64 `yaml:"pitch_decay"`
	Harmonics    float64 `yaml:"harmonics"`
	Drive        float64 `yaml:"drive"`
	ClickLevel   float64 `yaml:"click_level"`
	BodyLevel    float64 `yaml:"body_level"`
	SampleRate   int     `yaml:"sample_rate,omitempty"`
}

// FromParams wraps p under name.
func FromParams(name, description string, p kick.Params) Preset {
	return Preset{
		Name:         name,
		Description:  description,
		LengthMS:     p.LengthMS,
		PitchStartHz: p.PitchStartHz,
		PitchDecay:   p.PitchDecay,
		Harmonics:    p.Harmonics,
		Drive:        p.Drive,
		ClickLevel:   p.ClickLevel,
		BodyLevel:    p.BodyLevel,
		SampleRate:   p.SampleRate,
	}
}

// Params returns the synthesis parameters. A preset without a sample rate
// renders at [kick.DefaultSampleRate].
func (p Preset) Params() kick.Params {
	sr := p.SampleRate
	if sr == 0 {
		sr = kick.DefaultSampleRate
	}
	return kick.Params{
		LengthMS:     p.LengthMS,
		PitchStartHz: p.PitchStartHz,
		PitchDecay:   p.PitchDecay,
		Harmonics:    p.Harmonics,
		Drive:        p.Drive,
		ClickLevel:   p.ClickLevel,
		BodyLevel:    p.BodyLevel,
		SampleRate:   sr,
	}
}

// UnmarshalYAML seeds missing fields from kick.DefaultParams.
func (p *Preset) UnmarshalYAML(value *yaml.Node) error {
	type plain Preset
	d := kick.DefaultParams()
	d.SampleRate = 0
	tmp := plain(FromParams("", "", d))
	if err := value.Decode(&tmp); err != nil {
		return err
	}
	*p = Preset(tmp)
	return nil
}

// Validate rejects presets the synthesizer cannot render: an empty name,
// non-finite values or a negative sample rate.
func Validate(p Preset) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset: name must not be empty")
	}
	if p.SampleRate < 0 {
		return fmt.Errorf("preset %q: sample_rate must be > 0: %d", p.Name, p.SampleRate)
	}
	if err := p.Params().Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}
	return nil
}

// Bank is an ordered collection of presets with unique names.
type Bank struct {
	Presets []Preset `yaml:"presets"`
}

// Names returns preset names in bank order.
func (b Bank) Names() []string {
	names := make([]string, len(b.Presets))
	for i, p := range b.Presets {
		names[i] = p.Name
	}
	return names
}

// Get looks a preset up by name, ignoring case.
func (b Bank) Get(name string) (Preset, error) {
	for _, p := range b.Presets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Validate checks every preset and rejects duplicate names.
func (b Bank) Validate() error {
	if len(b.Presets) == 0 {
		return errors.New("preset: bank is empty")
	}
	seen := make(map[string]bool, len(b.Presets))
	for _, p := range b.Presets {
		if err := Validate(p); err != nil {
			return err
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return fmt.Errorf("preset: duplicate name %q", p.Name)
		}
		seen[key] = true
	}
	return nil
}

// Parse decodes and validates a YAML bank. Unknown keys are rejected.
func Parse(data []byte) (Bank, error) {
	var b Bank
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		if errors.Is(err, io.EOF) {
			return Bank{}, errors.New("preset: bank is empty")
		}
		return Bank{}, fmt.Errorf("preset: parse bank: %w", err)
	}
	if err := b.Validate(); err != nil {
		return Bank{}, err
	}
	return b, nil
}

// Load reads a bank file.
func Load(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bank{}, fmt.Errorf("preset: read %s: %w", path, err)
	}
	b, err := Parse(data)
	if err != nil {
		return Bank{}, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Marshal encodes b as YAML.
func Marshal(b Bank) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return nil, fmt.Errorf("preset: encode bank: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("preset: encode bank: %w", err)
	}
	return buf.Bytes(), nil
}

// Builtin returns the bank shipped with the tool. The first entry uses the
// synthesizer defaults.
func Builtin() Bank {
	return Bank{Presets: []Preset{
		FromParams("gabber", "distorted rotterdam kick, the synthesizer defaults", kick.DefaultParams()),
		{
			Name: "hardstyle", Description: "long tonal tail with heavy drive",
			LengthMS: 250, PitchStartHz: 150, PitchDecay: 6, Harmonics: 0.4,
			Drive: 5, ClickLevel: 0.5, BodyLevel: 1.2,
		},
		{
			Name: "deep", Description: "clean sub kick with a slow sweep",
			LengthMS: 600, PitchStartHz: 70, PitchDecay: 3, Harmonics: 0.1,
			Drive: 0.5, ClickLevel: 0.2, BodyLevel: 1.3,
		},
		{
			Name: "punch", Description: "short fast sweep for dense mixes",
			LengthMS: 180, PitchStartHz: 110, PitchDecay: 12, Harmonics: 0.3,
			Drive: 1.5, ClickLevel: 0.9, BodyLevel: 1,
		},
		{
			Name: "clicky", Description: "bright attack, little body",
			LengthMS: 90, PitchStartHz: 180, PitchDecay: 15, Harmonics: 0.2,
			Drive: 2, ClickLevel: 1, BodyLevel: 0.8,
		},
	}}
}
