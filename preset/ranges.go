package preset

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-kick/dsp/core"
	"github.com/cwbudde/algo-kick/dsp/kick"
)

// Range describes the editable span of one parameter, as exposed by
// interactive front ends.
type Range struct {
	Key     string // yaml field name
	Label   string
	Unit    string
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// Clamp limits v to the range and snaps it to the nearest step.
func (r Range) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return r.Default
	}
	v = core.Clamp(v, r.Min, r.Max)
	if r.Step > 0 {
		v = r.Min + math.Round((v-r.Min)/r.Step)*r.Step
		v = core.Clamp(v, r.Min, r.Max)
	}
	return v
}

// Contains reports whether v lies inside the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Ranges returns the editor ranges in display order.
func Ranges() []Range {
	d := kick.DefaultParams()
	return []Range{
		{Key: "length_ms", Label: "Length", Unit: "ms", Min: 30, Max: 800, Step: 1, Default: d.LengthMS},
		{Key: "pitch_start_hz", Label: "Start pitch", Unit: "Hz", Min: 60, Max: 200, Step: 1, Default: d.PitchStartHz},
		{Key: "pitch_decay", Label: "Pitch decay", Min: 1, Max: 18, Step: 0.1, Default: d.PitchDecay},
		{Key: "harmonics", Label: "Harmonics", Min: 0, Max: 1, Step: 0.01, Default: d.Harmonics},
		{Key: "drive", Label: "Drive", Min: 0, Max: 10, Step: 0.1, Default: d.Drive},
		{Key: "click_level", Label: "Click", Min: 0, Max: 1, Step: 0.01, Default: d.ClickLevel},
		{Key: "body_level", Label: "Body", Min: 0, Max: 1.5, Step: 0.01, Default: d.BodyLevel},
	}
}

func (p *Preset) field(key string) *float64 {
	switch key {
	case "length_ms":
		return &p.LengthMS
	case "pitch_start_hz":
		return &p.PitchStartHz
	case "pitch_decay":
		return &p.PitchDecay
	case "harmonics":
		return &p.Harmonics
	case "drive":
		return &p.Drive
	case "click_level":
		return &p.ClickLevel
	case "body_level":
		return &p.BodyLevel
	}
	return nil
}

// Get returns the value of the field named by key.
func (p Preset) Get(key string) (float64, error) {
	f := p.field(key)
	if f == nil {
		return 0, fmt.Errorf("preset: unknown parameter %q", key)
	}
	return *f, nil
}

// Set assigns the field named by key.
func (p *Preset) Set(key string, v float64) error {
	f := p.field(key)
	if f == nil {
		return fmt.Errorf("preset: unknown parameter %q", key)
	}
	*f = v
	return nil
}

// InRange reports every parameter of p that falls outside its editor
// range. Such presets still render; the synthesizer clamps what it must.
func InRange(p Preset) []string {
	var out []string
	for _, r := range Ranges() {
		v, _ := p.Get(r.Key)
		if !r.Contains(v) {
			out = append(out, fmt.Sprintf("%s=%g outside [%g, %g]", r.Key, v, r.Min, r.Max))
		}
	}
	return out
}
