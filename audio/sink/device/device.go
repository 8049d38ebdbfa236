// Package device plays kicks on the system audio output through oto.
package device

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-kick/audio/sink"
	"github.com/cwbudde/algo-kick/dsp/pcm"
)

// oto allows a single context per process.
var (
	ctxOnce sync.Once
	otoCtx  *oto.Context
	ctxRate int
	ctxErr  error
)

func sharedContext(sampleRate int) (*oto.Context, error) {
	ctxOnce.Do(func() {
		c, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			ctxErr = fmt.Errorf("device: open audio context: %w", err)
			return
		}
		<-ready
		otoCtx = c
		ctxRate = sampleRate
	})
	if ctxErr != nil {
		return nil, ctxErr
	}
	if ctxRate != sampleRate {
		return nil, fmt.Errorf("device: context already open at %d Hz, requested %d Hz", ctxRate, sampleRate)
	}
	return otoCtx, nil
}

var _ sink.Sink = (*Device)(nil)

// Device is a mono signed 16-bit oto output.
type Device struct {
	ctx *oto.Context

	mu      sync.Mutex
	players []*oto.Player
	closed  bool
}

// Open returns a device sink at sampleRate. All devices in a process share
// one oto context, so every call must use the same rate.
func Open(sampleRate int) (*Device, error) {
	c, err := sharedContext(sampleRate)
	if err != nil {
		return nil, err
	}
	if err := c.Err(); err != nil {
		return nil, fmt.Errorf("device: audio context: %w", err)
	}
	return &Device{ctx: c}, nil
}

// Opener adapts Open to sink.DeviceOpener.
func Opener(sampleRate int) (sink.Sink, error) {
	return Open(sampleRate)
}

func (d *Device) Name() string { return sink.BackendDevice }

// PlayAsync quantizes samples and starts a new player.
func (d *Device) PlayAsync(ctx context.Context, samples []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return sink.ErrClosed
	}
	if err := d.ctx.Resume(); err != nil {
		return fmt.Errorf("device: resume: %w", err)
	}

	d.reapLocked()
	p := d.ctx.NewPlayer(bytes.NewReader(pcm.Int16LE(samples)))
	p.Play()
	d.players = append(d.players, p)
	return nil
}

// Close waits for active players to drain and releases them.
func (d *Device) Close() error {
	d.mu.Lock()
	d.closed = true
	players := d.players
	d.players = nil
	d.mu.Unlock()

	var firstErr error
	for _, p := range players {
		for p.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("device: close player: %w", err)
		}
	}
	return firstErr
}

func (d *Device) reapLocked() {
	live := d.players[:0]
	for _, p := range d.players {
		if p.IsPlaying() {
			live = append(live, p)
			continue
		}
		_ = p.Close()
	}
	clear(d.players[len(live):])
	d.players = live
}
