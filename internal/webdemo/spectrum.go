package webdemo

import (
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-kick/dsp/core"
	"github.com/cwbudde/algo-kick/dsp/spectrum"
	"github.com/cwbudde/algo-kick/dsp/window"
)

const (
	minSpectrumDB = -130.0
	spectrumEps   = 1e-12
)

// updateSpectrum transforms the whole last render with a Blackman-Harris
// window and stores its magnitude in dBFS.
func (e *Engine) updateSpectrum() error {
	n := len(e.last)
	if n == 0 {
		e.specDB = nil
		return nil
	}

	size := 1 << bits.Len(uint(n-1))
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return fmt.Errorf("spectrum init fft plan: %w", err)
	}

	win := window.Generate(window.TypeBlackmanHarris4Term, n, window.WithPeriodic())
	gain, err := window.CoherentGain(win)
	if err != nil {
		return fmt.Errorf("spectrum window: %w", err)
	}

	in := make([]complex128, size)
	for i, x := range e.last {
		in[i] = complex(float64(x)*win[i], 0)
	}
	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return fmt.Errorf("spectrum fft: %w", err)
	}

	// Single-sided amplitude from bin power.
	mags := spectrum.Power(out[:size/2+1])
	norm := float64(n) * math.Max(gain, spectrumEps)
	last := len(mags) - 1
	for k, pw := range mags {
		m := math.Sqrt(pw) / norm
		if k > 0 && k < last {
			m *= 2
		}
		mags[k] = math.Max(core.LinearToDB(math.Max(m, spectrumEps)), minSpectrumDB)
	}

	e.specDB = mags
	e.specBin = float64(e.sampleRate) / float64(size)
	return nil
}

// SpectrumCurveDB samples the spectrum of the last render at freqs in dBFS,
// interpolating linearly between bins. Before the first render every point
// reads -130 dB.
func (e *Engine) SpectrumCurveDB(freqs []float64) []float64 {
	out := make([]float64, len(freqs))
	lastBin := len(e.specDB) - 1
	if lastBin < 1 {
		for i := range out {
			out[i] = minSpectrumDB
		}
		return out
	}

	nyquist := float64(e.sampleRate) * 0.5
	for i, f := range freqs {
		bin := core.Clamp(f, 0, nyquist) / e.specBin
		if bin <= 0 {
			out[i] = e.specDB[0]
			continue
		}
		if bin >= float64(lastBin) {
			out[i] = e.specDB[lastBin]
			continue
		}

		base := int(bin)
		frac := bin - float64(base)
		d0 := e.specDB[base]
		d1 := e.specDB[base+1]
		out[i] = d0 + frac*(d1-d0)
	}
	return out
}
