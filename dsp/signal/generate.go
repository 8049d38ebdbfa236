package signal

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Sine generates amplitude*sin(2π·freqHz·i/sampleRate).
func Sine(freqHz, amplitude, sampleRate float64, samples int) ([]float64, error) {
	if samples < 0 {
		return nil, fmt.Errorf("sine samples must be >= 0: %d", samples)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sine sample rate must be > 0: %f", sampleRate)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// ExpDecay generates exp(-amount·t/length) over t = i/sampleRate.
//
// With length equal to the signal duration, amount is the number of
// e-foldings reached at the end of the buffer. With length 1 it is a plain
// decay rate in 1/s.
func ExpDecay(amount, length, sampleRate float64, samples int) ([]float64, error) {
	if samples < 0 {
		return nil, fmt.Errorf("decay samples must be >= 0: %d", samples)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("decay sample rate must be > 0: %f", sampleRate)
	}
	if length <= 0 {
		return nil, fmt.Errorf("decay length must be > 0: %f", length)
	}
	out := make([]float64, samples)
	for i := range out {
		t := float64(i) / sampleRate
		out[i] = mathExp(-amount * t / length)
	}
	return out, nil
}

// ExpSweep generates an exponentially falling frequency curve
// startHz·exp(-decay·t/length).
func ExpSweep(startHz, decay, length, sampleRate float64, samples int) ([]float64, error) {
	out, err := ExpDecay(decay, length, sampleRate, samples)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	vecmath.ScaleBlockInPlace(out, startHz)
	return out, nil
}

// IntegratePhase returns the running phase 2π·Σ_{j≤i} freq[j] / sampleRate.
//
// The cumulative sum keeps the oscillator continuous while its frequency
// changes; sin(2π·freq[i]·t) would jump whenever freq moves.
func IntegratePhase(freq []float64, sampleRate float64) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("phase sample rate must be > 0: %f", sampleRate)
	}
	out := make([]float64, len(freq))
	sum := 0.0
	for i, f := range freq {
		sum += f
		out[i] = 2 * math.Pi * sum / sampleRate
	}
	return out, nil
}

// Saturate applies tanh(x·drive) in place.
func Saturate(buf []float64, drive float64) {
	for i, v := range buf {
		buf[i] = mathTanh(v * drive)
	}
}

// FadeOutInPlace multiplies buf with a linear ramp from 1 to 0.
// The last sample of a buffer longer than one sample becomes exactly 0.
func FadeOutInPlace(buf []float64) {
	n := len(buf)
	if n < 2 {
		return
	}
	ramp := make([]float64, n)
	last := float64(n - 1)
	for i := range ramp {
		ramp[i] = 1 - float64(i)/last
	}
	vecmath.MulBlockInPlace(buf, ramp)
	// x*0 keeps the sign of x; store +0.
	buf[n-1] = 0
}

// NormalizeInPlace scales buf so its peak absolute value equals targetPeak and
// returns the peak before scaling. An all-zero buffer is left untouched.
func NormalizeInPlace(buf []float64, targetPeak float64) (float64, error) {
	if targetPeak < 0 {
		return 0, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(buf) == 0 {
		return 0, nil
	}

	peak := vecmath.MaxAbs(buf)
	if peak > 0 {
		vecmath.ScaleBlockInPlace(buf, targetPeak/peak)
	}
	return peak, nil
}
