// Package spectral analyzes the spectrum of a rendered kick: its dominant
// frequency, spectral centroid, short-time pitch track and click band level.
package spectral

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-kick/dsp/core"
	"github.com/cwbudde/algo-kick/dsp/spectrum"
	"github.com/cwbudde/algo-kick/dsp/window"
	timestats "github.com/cwbudde/algo-kick/stats/time"
)

const (
	defaultFrameSize   = 2048
	defaultPad         = 4
	defaultMinFreq     = 20.0
	defaultClickFreq   = 6000.0
	defaultClickWindow = 0.002
	silenceFloorDB     = -90.0
)

var errEmptySignal = errors.New("spectral: signal is empty")

// Config holds analysis parameters. Zero values select defaults.
type Config struct {
	SampleRate float64
	// FrameSize is the pitch-track frame length in samples.
	FrameSize int
	// HopSize is the distance between frames; default FrameSize/4.
	HopSize int
	// Pad is the zero-padding factor applied to each frame before the FFT.
	Pad int
	// Window names the taper applied to each frame: hann (default),
	// hamming, blackman-harris or rectangular.
	Window string
	// MinFreq and MaxFreq bound the peak search; default 20 Hz to Nyquist.
	MinFreq float64
	MaxFreq float64
	// ClickFreq is probed over the first ClickWindow seconds.
	ClickFreq   float64
	ClickWindow float64
}

// PitchPoint is the dominant frequency of one analysis frame.
type PitchPoint struct {
	Time    float64 // frame centre in seconds
	Freq    float64
	LevelDB float64 // frame RMS relative to full scale
}

// Result holds the analysis of one signal.
type Result struct {
	DominantFreq    float64
	DominantLevelDB float64
	Centroid        float64
	ClickLevelDB    float64
	PitchTrack      []PitchPoint
}

// Analyzer performs FFT analysis. It reuses internal buffers and is not
// safe for concurrent use.
type Analyzer struct {
	cfg     Config
	winType window.Type
	fftSize int
	plan    *algofft.Plan[complex128]
	win     []float64
	winGain float64
	scratch []float64
	in      []complex128
	out     []complex128
}

// New validates cfg, fills defaults and prepares the frame FFT plan.
func New(cfg Config) (*Analyzer, error) {
	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	winType, err := window.ParseType(cfg.Window)
	if err != nil {
		return nil, fmt.Errorf("spectral: %w", err)
	}

	fftSize := nextPow2(cfg.FrameSize * cfg.Pad)
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectral: init fft plan: %w", err)
	}

	win := window.Generate(winType, cfg.FrameSize, window.WithPeriodic())
	gain, err := window.CoherentGain(win)
	if err != nil {
		return nil, fmt.Errorf("spectral: window: %w", err)
	}

	return &Analyzer{
		cfg:     cfg,
		winType: winType,
		fftSize: fftSize,
		plan:    plan,
		win:     win,
		winGain: gain,
		scratch: make([]float64, cfg.FrameSize),
		in:      make([]complex128, fftSize),
		out:     make([]complex128, fftSize),
	}, nil
}

// Config returns the effective configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// BinWidth returns the frame spectrum bin spacing in Hz.
func (a *Analyzer) BinWidth() float64 {
	return spectrum.BinFrequency(1, a.fftSize, a.cfg.SampleRate)
}

// WindowSummary describes the frame window and its resolution.
type WindowSummary struct {
	Name string
	// ENBW is the equivalent noise bandwidth of the frame window in bins of
	// an unpadded frame; ENBWHz converts it to Hz.
	ENBW            float64
	ENBWHz          float64
	HighestSidelobe float64 // dB
}

// Window returns the frame window summary.
func (a *Analyzer) Window() (WindowSummary, error) {
	enbw, err := window.EquivalentNoiseBandwidth(a.win)
	if err != nil {
		return WindowSummary{}, fmt.Errorf("spectral: window: %w", err)
	}
	info := window.Info(a.winType)
	return WindowSummary{
		Name:            info.Name,
		ENBW:            enbw,
		ENBWHz:          enbw * spectrum.BinFrequency(1, a.cfg.FrameSize, a.cfg.SampleRate),
		HighestSidelobe: info.HighestSidelobe,
	}, nil
}

// Analyze computes the full result for signal.
func (a *Analyzer) Analyze(signal []float64) (Result, error) {
	if len(signal) == 0 {
		return Result{}, errEmptySignal
	}

	whole, binHz, err := a.wholeSpectrum(signal)
	if err != nil {
		return Result{}, err
	}

	var res Result
	lo, hi := a.searchRange(binHz, len(whole))
	if k, off, ok := spectrum.PeakBin(whole, lo, hi); ok {
		res.DominantFreq = spectrum.BinFrequency(k, len(whole)*2-2, a.cfg.SampleRate) + off*binHz
		res.DominantLevelDB = core.LinearToDB(whole[k])
	} else {
		res.DominantLevelDB = math.Inf(-1)
	}

	res.Centroid, err = spectrum.Centroid(whole, binHz)
	if err != nil {
		return Result{}, err
	}

	res.ClickLevelDB, err = a.clickLevel(signal)
	if err != nil {
		return Result{}, err
	}

	res.PitchTrack, err = a.PitchTrack(signal)
	if err != nil {
		return Result{}, err
	}

	return res, nil
}

// PitchTrack returns the dominant frequency per hop. Frames quieter than
// -90 dBFS are skipped.
func (a *Analyzer) PitchTrack(signal []float64) ([]PitchPoint, error) {
	if len(signal) == 0 {
		return nil, errEmptySignal
	}

	frame := a.cfg.FrameSize
	hop := a.cfg.HopSize
	binHz := a.BinWidth()
	lo, hi := a.searchRange(binHz, a.fftSize/2+1)

	frames := 1
	if len(signal) > frame {
		frames += (len(signal) - frame) / hop
	}

	track := make([]PitchPoint, 0, frames)
	for f := range frames {
		start := f * hop
		end := min(start+frame, len(signal))
		seg := signal[start:end]

		level := core.LinearToDB(timestats.RMS(seg))
		if level < silenceFloorDB {
			continue
		}

		mags, err := a.frameSpectrum(seg)
		if err != nil {
			return nil, err
		}
		k, off, ok := spectrum.PeakBin(mags, lo, hi)
		if !ok {
			continue
		}

		track = append(track, PitchPoint{
			Time:    (float64(start) + float64(frame)/2) / a.cfg.SampleRate,
			Freq:    spectrum.BinFrequency(k, a.fftSize, a.cfg.SampleRate) + off*binHz,
			LevelDB: level,
		})
	}

	return track, nil
}

// frameSpectrum windows seg, zero-pads it to the plan size and returns
// amplitude-scaled magnitudes for bins 0..N/2.
func (a *Analyzer) frameSpectrum(seg []float64) ([]float64, error) {
	n := copy(a.scratch, seg)
	clear(a.scratch[n:])
	if err := window.ApplyCoefficientsInPlace(a.scratch, a.win); err != nil {
		return nil, fmt.Errorf("spectral: window: %w", err)
	}

	clear(a.in)
	for i, x := range a.scratch {
		a.in[i] = complex(x, 0)
	}

	if err := a.plan.Forward(a.out, a.in); err != nil {
		return nil, fmt.Errorf("spectral: fft: %w", err)
	}

	mags := spectrum.Magnitude(a.out[:a.fftSize/2+1])
	scale := 2 / (a.winGain * float64(len(a.win)))
	for i := range mags {
		mags[i] *= scale
	}
	return mags, nil
}

// wholeSpectrum transforms the entire signal with a window sized to it.
func (a *Analyzer) wholeSpectrum(signal []float64) ([]float64, float64, error) {
	n := nextPow2(len(signal) * a.cfg.Pad)
	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, 0, fmt.Errorf("spectral: init fft plan: %w", err)
	}

	// The periodic cosine-sum window's coherent gain is its constant term.
	buf := append([]float64(nil), signal...)
	window.Apply(a.winType, buf, window.WithPeriodic())
	gain := window.Info(a.winType).CoherentGain

	in := make([]complex128, n)
	for i, x := range buf {
		in[i] = complex(x, 0)
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, 0, fmt.Errorf("spectral: fft: %w", err)
	}

	mags := spectrum.Magnitude(out[:n/2+1])
	if gain > 0 {
		scale := 2 / (gain * float64(len(signal)))
		for i := range mags {
			mags[i] *= scale
		}
	}
	return mags, a.cfg.SampleRate / float64(n), nil
}

// clickLevel returns the amplitude at ClickFreq over the opening
// ClickWindow, in dBFS.
func (a *Analyzer) clickLevel(signal []float64) (float64, error) {
	if a.cfg.ClickFreq > a.cfg.SampleRate/2 {
		return math.Inf(-1), nil
	}

	n := int(math.Round(a.cfg.ClickWindow * a.cfg.SampleRate))
	n = min(max(n, 1), len(signal))

	g, err := spectrum.NewGoertzel(a.cfg.ClickFreq, a.cfg.SampleRate)
	if err != nil {
		return 0, fmt.Errorf("spectral: click probe: %w", err)
	}
	g.ProcessBlock(signal[:n])

	return core.LinearToDB(2 * g.Magnitude() / float64(n)), nil
}

func (a *Analyzer) searchRange(binHz float64, bins int) (lo, hi int) {
	lo = int(math.Ceil(a.cfg.MinFreq / binHz))
	hi = int(math.Floor(a.cfg.MaxFreq/binHz)) + 1
	return max(lo, 1), min(hi, bins)
}

func normalizeConfig(cfg Config) (Config, error) {
	if !core.AllFinite(cfg.SampleRate, cfg.MinFreq, cfg.MaxFreq, cfg.ClickFreq, cfg.ClickWindow) {
		return cfg, fmt.Errorf("spectral: non-finite config: %+v", cfg)
	}
	if cfg.SampleRate <= 0 {
		return cfg, fmt.Errorf("spectral: sample rate must be > 0: %v", cfg.SampleRate)
	}
	if cfg.FrameSize == 0 {
		cfg.FrameSize = defaultFrameSize
	}
	if cfg.FrameSize < 8 {
		return cfg, fmt.Errorf("spectral: frame size must be >= 8: %d", cfg.FrameSize)
	}
	if cfg.HopSize == 0 {
		cfg.HopSize = cfg.FrameSize / 4
	}
	if cfg.HopSize < 1 {
		return cfg, fmt.Errorf("spectral: hop size must be > 0: %d", cfg.HopSize)
	}
	if cfg.Pad == 0 {
		cfg.Pad = defaultPad
	}
	if cfg.Pad < 1 {
		return cfg, fmt.Errorf("spectral: pad factor must be > 0: %d", cfg.Pad)
	}
	if cfg.Window == "" {
		cfg.Window = "hann"
	}

	nyquist := cfg.SampleRate / 2
	if cfg.MinFreq <= 0 {
		cfg.MinFreq = defaultMinFreq
	}
	if cfg.MaxFreq <= 0 || cfg.MaxFreq > nyquist {
		cfg.MaxFreq = nyquist
	}
	if cfg.MinFreq >= cfg.MaxFreq {
		return cfg, fmt.Errorf("spectral: min frequency %v must be below max %v", cfg.MinFreq, cfg.MaxFreq)
	}
	if cfg.ClickFreq <= 0 {
		cfg.ClickFreq = defaultClickFreq
	}
	if cfg.ClickWindow <= 0 {
		cfg.ClickWindow = defaultClickWindow
	}
	return cfg, nil
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
