// Command kickgen renders gabber-style kick drums.
//
// Usage:
//
//	kickgen [flags] [preset-name ...]
//
// Without names it renders one kick from the first preset of the bank,
// adjusted by the parameter flags. With several names it renders each
// preset into the configured output directory.
//
// Examples:
//
//	kickgen -o kick.wav
//	kickgen -drive 6 -click 0.3 -play hardstyle
//	kickgen -info -length 300 deep
//	kickgen gabber deep punch
//	kickgen -analyze kick.wav
//	kickgen -list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/cwbudde/algo-kick/audio/sink"
	"github.com/cwbudde/algo-kick/audio/wavfile"
	"github.com/cwbudde/algo-kick/dsp/core"
	"github.com/cwbudde/algo-kick/internal/config"
	"github.com/cwbudde/algo-kick/internal/render"
	"github.com/cwbudde/algo-kick/preset"
)

var version = "dev"

// paramFlags maps parameter flags to preset fields.
var paramFlags = []struct {
	flag, key, usage string
}{
	{"length", "length_ms", "kick length in ms"},
	{"pitch", "pitch_start_hz", "start pitch in Hz"},
	{"decay", "pitch_decay", "pitch sweep decay rate"},
	{"harmonics", "harmonics", "2nd/3rd harmonic amount (0-1)"},
	{"drive", "drive", "tanh distortion drive"},
	{"click", "click_level", "click transient level"},
	{"body", "body_level", "body level"},
}

type options struct {
	configPath  string
	presetsPath string
	list        bool
	output      string
	play        bool
	info        bool
	analyze     string
	backend     string
	sampleRate  int
	version     bool
	params      map[string]float64
	names       []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintf(stdout, "kickgen %s\n", version)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if opts.backend != "" {
		cfg.Playback.Backend = opts.backend
	}
	logger := config.NewLogger(cfg, stderr)

	if err := execute(ctx, opts, cfg, logger, stdout); err != nil {
		logger.Error("kickgen failed", slog.Any("error", err))
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("kickgen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.configPath, "config", "", "application config file (YAML)")
	fs.StringVar(&opts.presetsPath, "presets", "", "preset bank file (YAML); builtin bank if empty")
	fs.BoolVar(&opts.list, "list", false, "list presets and parameter ranges")
	fs.StringVar(&opts.output, "o", "", "output WAV file (single render)")
	fs.BoolVar(&opts.play, "play", false, "play the render")
	fs.BoolVar(&opts.info, "info", false, "print time and spectral analysis")
	fs.StringVar(&opts.analyze, "analyze", "", "analyze an existing WAV file")
	fs.StringVar(&opts.backend, "backend", "", "playback backend: auto|device|tempfile|none")
	fs.IntVar(&opts.sampleRate, "sr", 0, "sample rate in Hz (overrides preset and config)")
	fs.BoolVar(&opts.version, "version", false, "print version")

	values := make(map[string]*float64, len(paramFlags))
	for _, pf := range paramFlags {
		values[pf.flag] = fs.Float64(pf.flag, 0, pf.usage)
	}

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: kickgen [flags] [preset-name ...]\n\n")
		fmt.Fprintf(stderr, "Renders gabber-style kick drums.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  kickgen -o kick.wav\n")
		fmt.Fprintf(stderr, "  kickgen -drive 6 -click 0.3 -play hardstyle\n")
		fmt.Fprintf(stderr, "  kickgen gabber deep punch\n")
		fmt.Fprintf(stderr, "  kickgen -analyze kick.wav\n")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	opts.params = make(map[string]float64)
	fs.Visit(func(f *flag.Flag) {
		for _, pf := range paramFlags {
			if f.Name == pf.flag {
				opts.params[pf.key] = *values[pf.flag]
			}
		}
	})
	opts.names = fs.Args()
	return opts, nil
}

func execute(ctx context.Context, opts options, cfg config.Config, logger *slog.Logger, stdout io.Writer) error {
	if opts.analyze != "" {
		samples, sr, err := wavfile.ReadFile(opts.analyze)
		if err != nil {
			return err
		}
		return printAnalysis(stdout, opts.analyze, core.ToFloat64(nil, samples), sr)
	}

	bank, err := loadBank(opts.presetsPath, cfg.PresetFile)
	if err != nil {
		return err
	}
	if opts.list {
		return printList(stdout, bank)
	}

	presets, err := selectPresets(bank, opts, cfg.SampleRate)
	if err != nil {
		return err
	}

	if len(presets) > 1 {
		return renderBatch(ctx, opts, cfg, logger, presets, stdout)
	}
	return renderOne(ctx, opts, cfg, logger, presets[0], stdout)
}

func loadBank(flagPath, cfgPath string) (preset.Bank, error) {
	path := flagPath
	if path == "" {
		path = cfgPath
	}
	if path == "" {
		return preset.Builtin(), nil
	}
	return preset.Load(path)
}

// selectPresets resolves names against bank and applies flag overrides.
func selectPresets(bank preset.Bank, opts options, defaultRate int) ([]preset.Preset, error) {
	var presets []preset.Preset
	if len(opts.names) == 0 {
		presets = []preset.Preset{bank.Presets[0]}
	}
	for _, name := range opts.names {
		p, err := bank.Get(name)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}

	for i := range presets {
		p := &presets[i]
		for key, v := range opts.params {
			if err := p.Set(key, v); err != nil {
				return nil, err
			}
		}
		switch {
		case opts.sampleRate != 0:
			p.SampleRate = opts.sampleRate
		case p.SampleRate == 0:
			p.SampleRate = defaultRate
		}
		if err := preset.Validate(*p); err != nil {
			return nil, err
		}
	}
	return presets, nil
}

func renderOne(ctx context.Context, opts options, cfg config.Config, logger *slog.Logger, p preset.Preset, stdout io.Writer) error {
	for _, msg := range preset.InRange(p) {
		logger.Warn("parameter outside editor range", slog.String("preset", p.Name), slog.String("detail", msg))
	}

	r := &render.Renderer{Logger: logger}
	res, err := r.Render(p)
	if err != nil {
		return err
	}
	logger.Info("kick rendered",
		slog.String("preset", res.Name),
		slog.Int("samples", len(res.Samples)),
		slog.Int("sample_rate", res.Params.SampleRate),
		slog.Duration("elapsed", res.Elapsed))

	if opts.output != "" {
		if err := wavfile.WriteFile(opts.output, res.Samples, res.Params.SampleRate); err != nil {
			return err
		}
		logger.Info("wav written", slog.String("path", opts.output))
	}

	if opts.info {
		if err := printAnalysis(stdout, res.Name, core.ToFloat64(nil, res.Samples), res.Params.SampleRate); err != nil {
			return err
		}
	}

	if opts.play {
		return play(ctx, cfg, logger, []render.Result{res})
	}
	return nil
}

func renderBatch(ctx context.Context, opts options, cfg config.Config, logger *slog.Logger, presets []preset.Preset, stdout io.Writer) error {
	if opts.output != "" {
		return errors.New("-o renders a single preset; batch renders go to output_dir")
	}

	r := &render.Renderer{
		Logger:      logger,
		Concurrency: cfg.Render.Concurrency,
		OutputDir:   cfg.OutputDir,
	}
	results, err := r.RenderAll(ctx, presets)
	if err != nil {
		return err
	}
	if err := printResults(stdout, results); err != nil {
		return err
	}

	if opts.info {
		for _, res := range results {
			if err := printAnalysis(stdout, res.Name, core.ToFloat64(nil, res.Samples), res.Params.SampleRate); err != nil {
				return err
			}
		}
	}

	if opts.play {
		return play(ctx, cfg, logger, results)
	}
	return nil
}

// play hands each result to the configured sink in turn, waiting one clip
// length between them, then drains the sink.
func play(ctx context.Context, cfg config.Config, logger *slog.Logger, results []render.Result) (err error) {
	rate := results[0].Params.SampleRate
	for _, res := range results[1:] {
		if res.Params.SampleRate != rate {
			return fmt.Errorf("cannot play %s at %d Hz after %s at %d Hz", res.Name, res.Params.SampleRate, results[0].Name, rate)
		}
	}

	opts := cfg.SinkOptions(deviceOpener)
	opts.SampleRate = rate
	s, err := sink.Select(opts, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for i, res := range results {
		if err := s.PlayAsync(ctx, res.Samples); err != nil {
			return fmt.Errorf("play %s: %w", res.Name, err)
		}
		logger.Debug("playing", slog.String("preset", res.Name), slog.String("sink", s.Name()))
		if i == len(results)-1 {
			break
		}
		t := time.NewTimer(sink.ClipDuration(len(res.Samples), rate))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}
