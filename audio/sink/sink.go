// Package sink plays rendered kicks.
//
// A Sink is chosen once at startup by Select, which negotiates between an
// audio device and a transient WAV file handed to an external player.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Backend names accepted by Select.
const (
	BackendAuto     = "auto"
	BackendDevice   = "device"
	BackendTempFile = "tempfile"
	BackendNone     = "none"
)

// ErrClosed is returned by PlayAsync after Close.
var ErrClosed = errors.New("sink: closed")

// Sink accepts rendered buffers for playback.
type Sink interface {
	// Name identifies the backend in logs.
	Name() string
	// PlayAsync starts playback and returns without waiting for it to end.
	PlayAsync(ctx context.Context, samples []float32) error
	// Close waits for pending playback and releases resources.
	Close() error
}

// DeviceOpener opens an audio device sink at the given sample rate.
type DeviceOpener func(sampleRate int) (Sink, error)

// Options configures Select.
type Options struct {
	Backend    string
	SampleRate int

	// OpenDevice is tried for the auto and device backends. Nil means no
	// device support was compiled in.
	OpenDevice DeviceOpener

	// Command is the external player for the tempfile backend, for example
	// "aplay -q {file}". Empty writes the file without playing it.
	Command string
	// Grace is added to the clip duration before a temp file is removed.
	Grace time.Duration
	// Dir holds temp files; empty uses os.TempDir.
	Dir string
}

// Select returns the sink for opts.Backend. The device backends fall back
// to a temp file sink when the device cannot be opened.
func Select(opts Options, logger *slog.Logger) (Sink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "sink"))

	backend := opts.Backend
	if backend == "" {
		backend = BackendAuto
	}

	var s Sink
	switch backend {
	case BackendNone:
		s = Discard{}
	case BackendTempFile:
		tf, err := NewTempFile(opts, logger)
		if err != nil {
			return nil, err
		}
		s = tf
	case BackendAuto, BackendDevice:
		dev, err := openDevice(opts)
		if err == nil {
			s = dev
			break
		}
		logger.Warn("audio device unavailable, falling back to temp file",
			slog.String("backend", backend),
			slog.String("error", err.Error()))
		tf, err := NewTempFile(opts, logger)
		if err != nil {
			return nil, err
		}
		s = tf
	default:
		return nil, fmt.Errorf("sink: unknown backend %q", backend)
	}

	logger.Info("playback sink selected", slog.String("sink", s.Name()))
	return s, nil
}

func openDevice(opts Options) (Sink, error) {
	if opts.OpenDevice == nil {
		return nil, errors.New("sink: no device backend available")
	}
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("sink: sample rate must be > 0: %d", opts.SampleRate)
	}
	return opts.OpenDevice(opts.SampleRate)
}

// Discard drops every buffer.
type Discard struct{}

func (Discard) Name() string { return BackendNone }

func (Discard) PlayAsync(ctx context.Context, _ []float32) error { return ctx.Err() }

func (Discard) Close() error { return nil }

// ClipDuration returns how long n samples last at sampleRate.
func ClipDuration(n, sampleRate int) time.Duration {
	if n <= 0 || sampleRate <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second / time.Duration(sampleRate)
}
