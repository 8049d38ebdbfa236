package kick

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-kick/dsp/core"
)

// Synthesis constants. Only the levels and shapes in [Params] are user facing.
const (
	// MinLength is the shortest rendered duration in seconds.
	MinLength = 0.02

	MinPitchDecay = 0.001
	MaxPitchDecay = 100.0

	// HarmonicsGate and DriveGate are the thresholds below which the
	// harmonic blend and the waveshaper are skipped entirely.
	HarmonicsGate = 0.001
	DriveGate     = 0.01

	SecondHarmonicGain = 0.6
	ThirdHarmonicGain  = 0.3

	// BodyDecay is the number of e-foldings of the body envelope over the
	// whole buffer.
	BodyDecay = 6.0

	ClickFreqHz    = 6000.0
	ClickDecayRate = 4000.0 // 1/s

	// TargetPeak is the absolute peak of every non-silent render.
	TargetPeak = 0.95

	DefaultSampleRate = 44100

	// MaxSamples bounds the buffer length of one render, a little over six
	// minutes at 44.1 kHz.
	MaxSamples = 1 << 24

	// MaxLevel bounds the magnitude of ClickLevel and BodyLevel, and MaxDrive
	// bounds Drive. Normalization keeps only the ratio of the layers, so the
	// bounds only keep intermediate sums finite.
	MaxLevel = 1e6
	MaxDrive = 1e6
)

var (
	// ErrInvalidSampleRate is returned for a sample rate <= 0.
	ErrInvalidSampleRate = errors.New("kick: sample rate must be > 0")
	// ErrNonFinite is returned when a parameter is NaN or infinite.
	ErrNonFinite = errors.New("kick: parameter must be finite")
	// ErrTooLong is returned when a render would exceed MaxSamples.
	ErrTooLong = errors.New("kick: render too long")
)

// Params describes one kick. The zero value is not useful; start from
// [DefaultParams].
type Params struct {
	LengthMS     float64 // total length in milliseconds, floored at 20 ms
	PitchStartHz float64 // oscillator frequency at t=0
	PitchDecay   float64 // speed of the downward sweep, clamped to [0.001, 100]
	Harmonics    float64 // 0 = pure sine, 1 = harmonics only
	Drive        float64 // tanh waveshaping amount; <= 0.01 disables it
	ClickLevel   float64 // level of the click transient
	BodyLevel    float64 // gain of the tonal body
	SampleRate   int
}

// DefaultParams returns a punchy, distorted kick at 44.1 kHz.
func DefaultParams() Params {
	return Params{
		LengthMS:     120,
		PitchStartHz: 120,
		PitchDecay:   8,
		Harmonics:    0.6,
		Drive:        3,
		ClickLevel:   0.7,
		BodyLevel:    1,
		SampleRate:   DefaultSampleRate,
	}
}

// Validate reports parameter sets no sound can be rendered from.
func (p Params) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, p.SampleRate)
	}

	if !core.AllFinite(p.LengthMS, p.PitchStartHz, p.PitchDecay, p.Harmonics, p.Drive, p.ClickLevel, p.BodyLevel) {
		fields := []struct {
			name  string
			value float64
		}{
			{"length_ms", p.LengthMS},
			{"pitch_start_hz", p.PitchStartHz},
			{"pitch_decay", p.PitchDecay},
			{"harmonics", p.Harmonics},
			{"drive", p.Drive},
			{"click_level", p.ClickLevel},
			{"body_level", p.BodyLevel},
		}
		for _, f := range fields {
			if !core.IsFinite(f.value) {
				return fmt.Errorf("%w: %s = %v", ErrNonFinite, f.name, f.value)
			}
		}
	}

	if n := float64(p.SampleRate) * p.LengthSeconds(); n > MaxSamples {
		return fmt.Errorf("%w: %.0f samples, limit %d", ErrTooLong, math.Round(n), MaxSamples)
	}

	return nil
}

// Normalized returns p with every clamp the synthesizer applies. The start
// pitch is limited to [0, SampleRate/2]; a sweep starting above Nyquist only
// aliases. Negative click and body levels keep their sign and invert the
// layer.
func (p Params) Normalized() Params {
	q := p
	q.LengthMS = core.AtLeast(p.LengthMS, MinLength*1000)
	q.PitchStartHz = core.AtLeast(p.PitchStartHz, 0)
	if p.SampleRate > 0 {
		q.PitchStartHz = math.Min(q.PitchStartHz, float64(p.SampleRate)/2)
	}
	q.PitchDecay = core.Clamp(p.PitchDecay, MinPitchDecay, MaxPitchDecay)
	q.Harmonics = core.Clamp(p.Harmonics, 0, 1)
	q.Drive = core.Clamp(p.Drive, 0, MaxDrive)
	q.ClickLevel = core.Clamp(p.ClickLevel, -MaxLevel, MaxLevel)
	q.BodyLevel = core.Clamp(p.BodyLevel, -MaxLevel, MaxLevel)
	return q
}

// LengthSeconds returns the effective duration, max(LengthMS/1000, 0.02).
func (p Params) LengthSeconds() float64 {
	return math.Max(p.LengthMS/1000, MinLength)
}

// Duration returns the effective duration as a time.Duration.
func (p Params) Duration() time.Duration {
	return time.Duration(math.Round(p.LengthSeconds() * float64(time.Second)))
}

// NumSamples returns round(SampleRate * LengthSeconds()), or 0 for an
// invalid sample rate.
func (p Params) NumSamples() int {
	if p.SampleRate <= 0 {
		return 0
	}
	return int(math.Round(float64(p.SampleRate) * p.LengthSeconds()))
}
