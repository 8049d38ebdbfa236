package sink

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/cwbudde/algo-kick/audio/wavfile"
)

// FilePlaceholder in a player command is replaced by the temp file path.
// Commands without it get the path appended as the last argument.
const FilePlaceholder = "{file}"

// TempFile writes each buffer to a transient WAV file and optionally hands
// it to an external player. Files are removed once the clip and the grace
// period have elapsed.
type TempFile struct {
	dir        string
	sampleRate int
	argv       []string
	grace      time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	closed  bool
	pending sync.WaitGroup
}

// NewTempFile builds a temp file sink from opts. The player command is
// parsed once here so malformed commands fail at startup.
func NewTempFile(opts Options, logger *slog.Logger) (*TempFile, error) {
	if opts.SampleRate <= 0 {
		return nil, fmt.Errorf("sink: sample rate must be > 0: %d", opts.SampleRate)
	}
	if opts.Grace < 0 {
		return nil, fmt.Errorf("sink: grace must be >= 0: %s", opts.Grace)
	}
	if logger == nil {
		logger = slog.Default()
	}

	var argv []string
	if cmd := strings.TrimSpace(opts.Command); cmd != "" {
		parsed, err := shellwords.NewParser().Parse(cmd)
		if err != nil {
			return nil, fmt.Errorf("sink: parse player command: %w", err)
		}
		if len(parsed) == 0 {
			return nil, fmt.Errorf("sink: empty player command %q", opts.Command)
		}
		argv = parsed
	}

	dir := opts.Dir
	if dir == "" {
		dir = os.TempDir()
	}

	return &TempFile{
		dir:        dir,
		sampleRate: opts.SampleRate,
		argv:       argv,
		grace:      opts.Grace,
		logger:     logger,
	}, nil
}

func (t *TempFile) Name() string { return BackendTempFile }

// PlayAsync writes samples to a new temp file, starts the player if one is
// configured and schedules removal of the file. Cancelling ctx kills a
// running player.
func (t *TempFile) PlayAsync(ctx context.Context, samples []float32) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}

	path, err := t.writeClip(samples)
	if err != nil {
		return err
	}

	if len(t.argv) > 0 {
		cmd := t.command(ctx, path)
		if err := cmd.Start(); err != nil {
			_ = os.Remove(path)
			return fmt.Errorf("sink: start player %s: %w", cmd.Path, err)
		}
		t.pending.Add(1)
		go func() {
			defer t.pending.Done()
			if err := cmd.Wait(); err != nil {
				t.logger.Warn("player exited with error",
					slog.String("command", t.argv[0]),
					slog.String("error", err.Error()))
			}
		}()
	}

	t.pending.Add(1)
	time.AfterFunc(ClipDuration(len(samples), t.sampleRate)+t.grace, func() {
		defer t.pending.Done()
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			t.logger.Warn("remove temp clip", slog.String("path", path), slog.String("error", err.Error()))
		}
	})

	t.logger.Debug("clip queued", slog.String("path", path), slog.Int("samples", len(samples)))
	return nil
}

// Close rejects further clips and waits for running players and pending
// file removals.
func (t *TempFile) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.pending.Wait()
	return nil
}

func (t *TempFile) writeClip(samples []float32) (path string, err error) {
	f, err := os.CreateTemp(t.dir, "kick-*.wav")
	if err != nil {
		return "", fmt.Errorf("sink: create temp clip: %w", err)
	}
	path = f.Name()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("sink: close temp clip: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := wavfile.Write(f, samples, t.sampleRate); err != nil {
		return path, err
	}
	return path, nil
}

func (t *TempFile) command(ctx context.Context, path string) *exec.Cmd {
	args := make([]string, 0, len(t.argv))
	substituted := false
	for _, a := range t.argv[1:] {
		if strings.Contains(a, FilePlaceholder) {
			a = strings.ReplaceAll(a, FilePlaceholder, path)
			substituted = true
		}
		args = append(args, a)
	}
	if !substituted {
		args = append(args, path)
	}
	return exec.CommandContext(ctx, t.argv[0], args...)
}
