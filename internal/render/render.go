// Package render turns presets into kick buffers and WAV files.
package render

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-kick/audio/wavfile"
	"github.com/cwbudde/algo-kick/dsp/kick"
	"github.com/cwbudde/algo-kick/preset"
)

// Result is one rendered preset.
type Result struct {
	Name    string
	Params  kick.Params
	Samples []float32
	// Path is the written WAV file; empty for in-memory renders.
	Path    string
	Elapsed time.Duration
}

// Renderer synthesizes presets. The zero value renders one preset at a
// time into the working directory.
type Renderer struct {
	Logger      *slog.Logger
	Concurrency int
	OutputDir   string
}

func (r *Renderer) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

// Render synthesizes p in memory.
func (r *Renderer) Render(p preset.Preset) (Result, error) {
	params := p.Params()
	start := time.Now()
	samples, err := kick.Synthesize(params)
	if err != nil {
		return Result{}, fmt.Errorf("render %s: %w", p.Name, err)
	}
	return Result{
		Name:    p.Name,
		Params:  params,
		Samples: samples,
		Elapsed: time.Since(start),
	}, nil
}

// RenderAll renders every preset to OutputDir/<name>.wav with at most
// Concurrency renders in flight. Results keep the input order. The first
// failure cancels renders that have not started.
func (r *Renderer) RenderAll(ctx context.Context, presets []preset.Preset) ([]Result, error) {
	logger := r.logger().With(slog.String("component", "render"))

	paths, err := r.outputPaths(presets)
	if err != nil {
		return nil, err
	}
	if len(presets) > 0 {
		if err := os.MkdirAll(r.outputDir(), 0o755); err != nil {
			return nil, fmt.Errorf("render: create output dir: %w", err)
		}
	}

	limit := r.Concurrency
	if limit < 1 {
		limit = 1
	}

	results := make([]Result, len(presets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, p := range presets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.Render(p)
			if err != nil {
				logger.Error("render failed", slog.String("preset", p.Name), slog.Any("error", err))
				return err
			}
			if err := wavfile.WriteFile(paths[i], res.Samples, res.Params.SampleRate); err != nil {
				logger.Error("write failed", slog.String("preset", p.Name), slog.Any("error", err))
				return fmt.Errorf("render %s: %w", p.Name, err)
			}
			res.Path = paths[i]
			results[i] = res
			logger.Debug("rendered",
				slog.String("preset", p.Name),
				slog.String("path", res.Path),
				slog.Int("samples", len(res.Samples)),
				slog.Duration("elapsed", res.Elapsed))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Info("batch rendered", slog.Int("count", len(results)), slog.String("dir", r.outputDir()))
	return results, nil
}

func (r *Renderer) outputDir() string {
	if r.OutputDir == "" {
		return "."
	}
	return r.OutputDir
}

func (r *Renderer) outputPaths(presets []preset.Preset) ([]string, error) {
	paths := make([]string, len(presets))
	owner := make(map[string]string, len(presets))
	for i, p := range presets {
		base := FileName(p.Name)
		if prev, ok := owner[base]; ok {
			return nil, fmt.Errorf("render: presets %q and %q both map to %s", prev, p.Name, base)
		}
		owner[base] = p.Name
		paths[i] = filepath.Join(r.outputDir(), base)
	}
	return paths, nil
}

// FileName maps a preset name to a WAV file name. Runs of characters other
// than letters, digits, '-' and '_' become a single '-'.
func FileName(name string) string {
	var b strings.Builder
	dash := false
	for _, c := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			b.WriteRune(c)
			dash = false
		case !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		s = "kick"
	}
	return s + ".wav"
}
