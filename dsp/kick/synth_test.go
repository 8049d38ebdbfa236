package kick

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/cwbudde/algo-kick/internal/testutil"
)


func peakAbs(x []float32) float64 {
	peak := 0.0
	for _, v := range x {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	return peak
}

func TestNumSamples(t *testing.T) {
	tests := []struct {
		name     string
		lengthMS float64
		sr       int
		want     int
	}{
		{name: "default", lengthMS: 120, sr: 44100, want: 5292},
		{name: "zero floors to 20ms", lengthMS: 0, sr: 44100, want: 882},
		{name: "negative floors to 20ms", lengthMS: -50, sr: 44100, want: 882},
		{name: "one second", lengthMS: 1000, sr: 48000, want: 48000},
		{name: "rounds", lengthMS: 33.3, sr: 44100, want: 1469},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			p.LengthMS = tt.lengthMS
			p.SampleRate = tt.sr

			if got := p.NumSamples(); got != tt.want {
				t.Fatalf("NumSamples() = %d, want %d", got, tt.want)
			}

			out, err := Synthesize(p)
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			if len(out) != tt.want {
				t.Fatalf("len = %d, want %d", len(out), tt.want)
			}
		})
	}
}

func TestDefaultScenario(t *testing.T) {
	out, err := Synthesize(DefaultParams())
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if len(out) != 5292 {
		t.Fatalf("len = %d, want 5292", len(out))
	}
	if out[len(out)-1] != 0 {
		t.Fatalf("last sample = %v, want exactly 0", out[len(out)-1])
	}
	if math.Abs(peakAbs(out)-TargetPeak) > 1e-5 {
		t.Fatalf("peak = %v, want %v", peakAbs(out), TargetPeak)
	}
	if math.Abs(float64(out[0])) > 0.2 {
		t.Fatalf("first sample = %v, want close to 0", out[0])
	}
	if peakAbs(out[:10]) < 0.5 {
		t.Fatalf("attack peak over first 10 samples = %v, want > 0.5", peakAbs(out[:10]))
	}
}

func TestInvariantsAcrossParameters(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Params)
	}{
		{name: "default", modify: func(*Params) {}},
		{name: "long clean", modify: func(p *Params) { p.LengthMS = 800; p.Drive = 0; p.Harmonics = 0 }},
		{name: "heavy drive", modify: func(p *Params) { p.Drive = 10 }},
		{name: "no click", modify: func(p *Params) { p.ClickLevel = 0 }},
		{name: "click only", modify: func(p *Params) { p.BodyLevel = 0 }},
		{name: "quiet body", modify: func(p *Params) { p.BodyLevel = 0.01; p.ClickLevel = 0 }},
		{name: "high rate", modify: func(p *Params) { p.SampleRate = 96000 }},
		{name: "slow sweep", modify: func(p *Params) { p.PitchDecay = 1; p.PitchStartHz = 60 }},
		{name: "out of range", modify: func(p *Params) { p.Harmonics = 4; p.PitchDecay = 1e6 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.modify(&p)

			out, err := Synthesize(p)
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			if len(out) != p.NumSamples() {
				t.Fatalf("len = %d, want %d", len(out), p.NumSamples())
			}
			if out[len(out)-1] != 0 {
				t.Fatalf("last sample = %v, want exactly 0", out[len(out)-1])
			}
			peak := peakAbs(out)
			if math.Abs(peak-TargetPeak) > 1e-5 {
				t.Fatalf("peak = %v, want %v", peak, TargetPeak)
			}
		})
	}
}


func TestDeterministic(t *testing.T) {
	p := DefaultParams()
	a, err := Synthesize(p)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	b, err := Synthesize(p)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	for i := range a {
		if math.Float32bits(a[i]) != math.Float32bits(b[i]) {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestPitchDecayClamp(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		equivalent float64
	}{
		{name: "above ceiling", value: 200, equivalent: 100},
		{name: "below floor", value: 0, equivalent: 0.001},
		{name: "negative", value: -3, equivalent: 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			p.PitchDecay = tt.value
			a, err := Synthesize(p)
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}

			p.PitchDecay = tt.equivalent
			b, err := Synthesize(p)
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}

			for i := range a {
				if a[i] != b[i] {
					t.Fatalf("sample %d: %v != %v", i, a[i], b[i])
				}
			}
		})
	}
}

func TestNegativePitchStartActsAsZero(t *testing.T) {
	p := DefaultParams()
	p.PitchStartHz = -80
	a, err := Synthesize(p)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	p.PitchStartHz = 0
	b, err := Synthesize(p)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestSilentRenderIsAllZero(t *testing.T) {
	p := DefaultParams()
	p.PitchStartHz = 0
	p.ClickLevel = 0

	tr, err := SynthesizeTrace(p)
	if err != nil {
		t.Fatalf("SynthesizeTrace() error = %v", err)
	}
	if tr.RawPeak != 0 {
		t.Fatalf("raw peak = %v, want 0", tr.RawPeak)
	}
	testutil.RequireFinite(t, tr.Output)
	for i, v := range tr.Output {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestValidate(t *testing.T) {
	p := DefaultParams()
	p.SampleRate = 0
	if _, err := Synthesize(p); !errors.Is(err, ErrInvalidSampleRate) {
		t.Fatalf("err = %v, want ErrInvalidSampleRate", err)
	}

	p = DefaultParams()
	p.Drive = math.NaN()
	if _, err := Synthesize(p); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}

	p = DefaultParams()
	p.LengthMS = math.Inf(1)
	if err := p.Validate(); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("err = %v, want ErrNonFinite", err)
	}
}

func TestTraceLayers(t *testing.T) {
	p := DefaultParams()
	tr, err := SynthesizeTrace(p)
	if err != nil {
		t.Fatalf("SynthesizeTrace() error = %v", err)
	}
	n := p.NumSamples()
	if len(tr.Body) != n || len(tr.Click) != n || len(tr.Output) != n {
		t.Fatalf("layer lengths body=%d click=%d out=%d, want %d", len(tr.Body), len(tr.Click), len(tr.Output), n)
	}
	if !tr.HarmonicsApplied || !tr.DriveApplied {
		t.Fatalf("expected both gates open: harmonics=%v drive=%v", tr.HarmonicsApplied, tr.DriveApplied)
	}
	if tr.Click[0] != 0 {
		t.Fatalf("click[0] = %v, want 0", tr.Click[0])
	}
	// The click has decayed by more than 80 dB after 5 ms.
	if math.Abs(tr.Click[n/24]) > p.ClickLevel*1e-4 {
		t.Fatalf("click at 5 ms = %v, want decayed", tr.Click[n/24])
	}
	if tr.RawPeak <= 0 || tr.RawPeak > 1 {
		t.Fatalf("raw peak = %v, want (0, 1] after tanh", tr.RawPeak)
	}
}

func TestConcurrentSynthesize(t *testing.T) {
	params := make([]Params, 8)
	want := make([][]float32, len(params))
	for i := range params {
		p := DefaultParams()
		p.PitchStartHz = 60 + 15*float64(i)
		p.Drive = float64(i)
		params[i] = p

		out, err := Synthesize(p)
		if err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}
		want[i] = out
	}

	got := make([][]float32, len(params))
	errs := make([]error, len(params))
	var wg sync.WaitGroup
	for i := range params {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i], errs[i] = Synthesize(params[i])
		}(i)
	}
	wg.Wait()

	for i := range params {
		if errs[i] != nil {
			t.Fatalf("render %d error = %v", i, errs[i])
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("render %d sample %d: %v != %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestExtremeFiniteInputs(t *testing.T) {
	tests := []struct {
		name  string
		drive float64
	}{
		{"driven", 1e300},
		{"clean", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			p.PitchStartHz = 1e308
			p.PitchDecay = 1e-300
			p.Harmonics = 1e300
			p.BodyLevel = 1e300
			p.ClickLevel = -1e300
			p.Drive = tt.drive

			out, err := Synthesize(p)
			if err != nil {
				t.Fatalf("Synthesize() error = %v", err)
			}
			testutil.RequireFinite(t, out)
			if peak := peakAbs(out); math.Abs(peak-TargetPeak) > 1e-5 {
				t.Fatalf("peak = %v, want %v", peak, TargetPeak)
			}
			if last := out[len(out)-1]; last != 0 {
				t.Fatalf("last sample = %v, want 0", last)
			}
		})
	}
}

func TestNegativeBodyLevelInvertsPolarity(t *testing.T) {
	p := DefaultParams()
	p.ClickLevel = 0
	p.BodyLevel = 1
	pos, err := Synthesize(p)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	p.BodyLevel = -1
	neg, err := Synthesize(p)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	for i := range pos {
		if math.Abs(float64(pos[i]+neg[i])) > 1e-6 {
			t.Fatalf("sample %d: %v and %v are not opposite", i, pos[i], neg[i])
		}
	}
	if neg[1] >= 0 {
		t.Fatalf("first body sample = %v, want negative", neg[1])
	}
}
