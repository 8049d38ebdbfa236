package webdemo

import (
	"fmt"

	"github.com/cwbudde/algo-kick/dsp/core"
	"github.com/cwbudde/algo-kick/dsp/kick"
	"github.com/cwbudde/algo-kick/measure/spectral"
	"github.com/cwbudde/algo-kick/preset"
)

// Engine backs the browser kick editor: it holds the slider state, renders
// on demand and keeps the last render for the spectrum view.
type Engine struct {
	sampleRate int
	bank       preset.Bank
	ranges     map[string]preset.Range
	current    preset.Preset

	last     []float32
	analyzer *spectral.Analyzer
	specDB   []float64
	specBin  float64
}

// NewEngine creates an editor engine loaded with the first builtin preset.
func NewEngine(sampleRate int) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0: %d", sampleRate)
	}
	analyzer, err := spectral.New(spectral.Config{SampleRate: float64(sampleRate), FrameSize: 1024})
	if err != nil {
		return nil, err
	}

	e := &Engine{
		sampleRate: sampleRate,
		bank:       preset.Builtin(),
		ranges:     make(map[string]preset.Range),
		analyzer:   analyzer,
	}
	for _, r := range preset.Ranges() {
		e.ranges[r.Key] = r
	}
	e.current = e.bank.Presets[0]
	e.current.SampleRate = sampleRate
	return e, nil
}

// SampleRate returns the render rate.
func (e *Engine) SampleRate() int { return e.sampleRate }

// Preset returns the current slider state.
func (e *Engine) Preset() preset.Preset { return e.current }

// PresetNames lists the builtin bank.
func (e *Engine) PresetNames() []string { return e.bank.Names() }

// LoadPreset replaces the slider state with a builtin preset.
func (e *Engine) LoadPreset(name string) error {
	p, err := e.bank.Get(name)
	if err != nil {
		return err
	}
	p.SampleRate = e.sampleRate
	e.current = p
	return nil
}

// SetParam moves one slider. Values are clamped and snapped to the slider
// range.
func (e *Engine) SetParam(key string, v float64) (float64, error) {
	r, ok := e.ranges[key]
	if !ok {
		return 0, fmt.Errorf("unknown parameter: %s", key)
	}
	v = r.Clamp(v)
	if err := e.current.Set(key, v); err != nil {
		return 0, err
	}
	return v, nil
}

// Render synthesizes the current state and keeps the buffer for spectrum
// queries.
func (e *Engine) Render() ([]float32, error) {
	out, err := kick.Synthesize(e.current.Params())
	if err != nil {
		return nil, err
	}
	e.last = out
	if err := e.updateSpectrum(); err != nil {
		return nil, err
	}
	return out, nil
}

// Last returns the most recent render, or nil.
func (e *Engine) Last() []float32 { return e.last }

// PitchTrack returns the dominant frequency per frame of the last render.
func (e *Engine) PitchTrack() ([]spectral.PitchPoint, error) {
	if len(e.last) == 0 {
		return nil, nil
	}
	return e.analyzer.PitchTrack(core.ToFloat64(nil, e.last))
}
