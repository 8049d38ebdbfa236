package kick

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-kick/dsp/core"
	"github.com/cwbudde/algo-kick/dsp/signal"
)

// Trace exposes the intermediate layers of one render.
type Trace struct {
	// Params holds the clamped parameters the render used.
	Params Params

	Body  []float64 // enveloped oscillator scaled by BodyLevel
	Click []float64 // click transient

	HarmonicsApplied bool
	DriveApplied     bool

	// RawPeak is the absolute peak after fade-out and before normalization.
	RawPeak float64

	Output []float64
}

// Synthesize renders p into a new mono buffer with samples in [-0.95, 0.95].
// A parameter set whose layers cancel to silence yields an all-zero buffer.
func Synthesize(p Params) ([]float32, error) {
	out, err := SynthesizeFloat64(p)
	if err != nil {
		return nil, err
	}
	return core.ToFloat32(nil, out), nil
}

// SynthesizeFloat64 is [Synthesize] without the final float32 conversion.
func SynthesizeFloat64(p Params) ([]float64, error) {
	tr, err := render(p, false)
	if err != nil {
		return nil, err
	}
	return tr.Output, nil
}

// SynthesizeTrace renders p and keeps copies of the body and click layers.
func SynthesizeTrace(p Params) (Trace, error) {
	tr, err := render(p, true)
	if err != nil {
		return Trace{}, err
	}
	return *tr, nil
}

func render(p Params, keepLayers bool) (*Trace, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	q := p.Normalized()
	n := q.NumSamples()
	length := q.LengthSeconds()
	sr := float64(q.SampleRate)

	tr := &Trace{Params: q}

	freq, err := signal.ExpSweep(q.PitchStartHz, q.PitchDecay, length, sr, n)
	if err != nil {
		return nil, fmt.Errorf("kick pitch envelope: %w", err)
	}
	phase, err := signal.IntegratePhase(freq, sr)
	if err != nil {
		return nil, fmt.Errorf("kick phase: %w", err)
	}

	sig := oscillate(phase, q.Harmonics)
	tr.HarmonicsApplied = q.Harmonics > HarmonicsGate

	env, err := signal.ExpDecay(BodyDecay, length, sr, n)
	if err != nil {
		return nil, fmt.Errorf("kick body envelope: %w", err)
	}
	if n > 0 {
		vecmath.MulBlockInPlace(sig, env)
		vecmath.ScaleBlockInPlace(sig, q.BodyLevel)
	}

	click, err := transient(q.ClickLevel, sr, n)
	if err != nil {
		return nil, err
	}

	if keepLayers {
		tr.Body = append([]float64(nil), sig...)
		tr.Click = append([]float64(nil), click...)
	}

	if n > 0 {
		vecmath.AddBlockInPlace(sig, click)
	}

	if q.Drive > DriveGate {
		signal.Saturate(sig, q.Drive)
		tr.DriveApplied = true
	}

	signal.FadeOutInPlace(sig)

	tr.RawPeak, err = signal.NormalizeInPlace(sig, TargetPeak)
	if err != nil {
		return nil, fmt.Errorf("kick normalize: %w", err)
	}

	tr.Output = sig
	return tr, nil
}

// oscillate returns sin(phase), blended with the second and third harmonics
// when harmonics passes the gate.
func oscillate(phase []float64, harmonics float64) []float64 {
	out := make([]float64, len(phase))
	if harmonics <= HarmonicsGate {
		for i, ph := range phase {
			out[i] = math.Sin(ph)
		}
		return out
	}

	dry := 1 - harmonics
	for i, ph := range phase {
		base := math.Sin(ph)
		harm := SecondHarmonicGain*math.Sin(2*ph) + ThirdHarmonicGain*math.Sin(3*ph)
		out[i] = base*dry + harm*harmonics
	}
	return out
}

// transient returns level·sin(2π·6000·t)·exp(-4000·t).
func transient(level, sampleRate float64, n int) ([]float64, error) {
	click, err := signal.Sine(ClickFreqHz, level, sampleRate, n)
	if err != nil {
		return nil, fmt.Errorf("kick click: %w", err)
	}
	env, err := signal.ExpDecay(ClickDecayRate, 1, sampleRate, n)
	if err != nil {
		return nil, fmt.Errorf("kick click envelope: %w", err)
	}
	if n > 0 {
		vecmath.MulBlockInPlace(click, env)
	}
	return click, nil
}
