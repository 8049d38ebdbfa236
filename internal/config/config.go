package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-kick/audio/sink"
)

type Config struct {
	SampleRate int            `yaml:"sample_rate"`
	OutputDir  string         `yaml:"output_dir"`
	LogLevel   string         `yaml:"log_level"`
	LogFormat  string         `yaml:"log_format"`
	Render     RenderConfig   `yaml:"render"`
	Playback   PlaybackConfig `yaml:"playback"`
	PresetFile string         `yaml:"preset_file"`
}

type RenderConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type PlaybackConfig struct {
	Backend string `yaml:"backend"`
	Command string `yaml:"command"`
	GraceMS int    `yaml:"grace_ms"`
}

// Grace returns the temp-file removal grace period.
func (p PlaybackConfig) Grace() time.Duration {
	return time.Duration(p.GraceMS) * time.Millisecond
}

func Default() Config {
	return Config{
		SampleRate: 44100,
		OutputDir:  "./out",
		LogLevel:   "info",
		LogFormat:  "text",
		Render: RenderConfig{
			Concurrency: 4,
		},
		Playback: PlaybackConfig{
			Backend: sink.BackendAuto,
			GraceMS: 250,
		},
	}
}

// Load returns defaults overlaid with the YAML file at path (if any) and
// KICK_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrideInt(&cfg.SampleRate, "KICK_SAMPLE_RATE")
	overrideString(&cfg.OutputDir, "KICK_OUTPUT_DIR")
	overrideString(&cfg.LogLevel, "KICK_LOG_LEVEL")
	overrideString(&cfg.LogFormat, "KICK_LOG_FORMAT")
	overrideInt(&cfg.Render.Concurrency, "KICK_RENDER_CONCURRENCY")
	overrideString(&cfg.Playback.Backend, "KICK_PLAYBACK_BACKEND")
	overrideString(&cfg.Playback.Command, "KICK_PLAYBACK_COMMAND")
	overrideInt(&cfg.Playback.GraceMS, "KICK_PLAYBACK_GRACE_MS")
	overrideString(&cfg.PresetFile, "KICK_PRESET_FILE")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func validate(cfg Config) error {
	if cfg.SampleRate <= 0 {
		return errors.New("sample_rate must be positive")
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		return errors.New("output_dir must not be empty")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return errors.New("log_format must be one of text|json")
	}
	if cfg.Render.Concurrency < 1 {
		return errors.New("render.concurrency must be >= 1")
	}
	switch strings.ToLower(cfg.Playback.Backend) {
	case sink.BackendAuto, sink.BackendDevice, sink.BackendTempFile, sink.BackendNone:
	default:
		return errors.New("playback.backend must be one of auto|device|tempfile|none")
	}
	if cfg.Playback.GraceMS < 0 {
		return errors.New("playback.grace_ms must be >= 0")
	}
	return nil
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, errors.New("log_level must be one of debug|info|warn|error")
}

// NewLogger builds the process logger described by cfg.
func NewLogger(cfg Config, w io.Writer) *slog.Logger {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SinkOptions translates the playback section for sink.Select.
func (cfg Config) SinkOptions(open sink.DeviceOpener) sink.Options {
	return sink.Options{
		Backend:    strings.ToLower(cfg.Playback.Backend),
		SampleRate: cfg.SampleRate,
		OpenDevice: open,
		Command:    cfg.Playback.Command,
		Grace:      cfg.Playback.Grace(),
	}
}
