package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-kick/audio/wavfile"
	"github.com/cwbudde/algo-kick/preset"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv("KICK_PLAYBACK_BACKEND", "none")
	t.Setenv("KICK_LOG_LEVEL", "warn")

	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI(t, "-version")
	if code != 0 || !strings.HasPrefix(out, "kickgen ") {
		t.Fatalf("code=%d out=%q", code, out)
	}
}

func TestUnknownFlag(t *testing.T) {
	if code, _, _ := runCLI(t, "-nope"); code != 2 {
		t.Fatalf("code = %d, want 2", code)
	}
}

func TestList(t *testing.T) {
	code, out, errOut := runCLI(t, "-list")
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, errOut)
	}
	for _, want := range []string{"gabber", "hardstyle", "pitch_decay", "Length [ms]"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSingleWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kick.wav")
	code, _, errOut := runCLI(t, "-o", path, "-length", "200", "-sr", "48000", "-play")
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, errOut)
	}

	samples, sr, err := wavfile.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if sr != 48000 || len(samples) != 9600 {
		t.Fatalf("got %d samples at %d Hz, want 9600 at 48000", len(samples), sr)
	}
	if samples[len(samples)-1] != 0 {
		t.Fatalf("last sample = %v, want 0", samples[len(samples)-1])
	}
}

func TestRenderInfo(t *testing.T) {
	code, out, errOut := runCLI(t, "-info", "deep")
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, errOut)
	}
	for _, want := range []string{"deep", "Peak [dBFS]", "Dominant [Hz]", "Pitch track", "Window", "ENBW 1.50 bins"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBatch(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KICK_OUTPUT_DIR", dir)

	code, out, errOut := runCLI(t, "gabber", "punch")
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, errOut)
	}
	for _, name := range []string{"gabber", "punch"} {
		if _, err := os.Stat(filepath.Join(dir, name+".wav")); err != nil {
			t.Errorf("%s.wav missing: %v", name, err)
		}
		if !strings.Contains(out, name) {
			t.Errorf("report missing %s:\n%s", name, out)
		}
	}

	if code, _, _ := runCLI(t, "-o", "x.wav", "gabber", "punch"); code != 1 {
		t.Fatalf("-o with batch: code = %d, want 1", code)
	}
}

func TestAnalyzeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	if code, _, errOut := runCLI(t, "-o", path, "clicky"); code != 0 {
		t.Fatalf("render: code=%d stderr=%s", code, errOut)
	}

	code, out, errOut := runCLI(t, "-analyze", path)
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, errOut)
	}
	if !strings.Contains(out, path) || !strings.Contains(out, "Centroid [Hz]") {
		t.Fatalf("unexpected analysis:\n%s", out)
	}
}

func TestCustomBank(t *testing.T) {
	bank := filepath.Join(t.TempDir(), "bank.yaml")
	src := "presets:\n  - name: tiny\n    length_ms: 40\n"
	if err := os.WriteFile(bank, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "tiny.wav")

	code, _, errOut := runCLI(t, "-presets", bank, "-o", out)
	if code != 0 {
		t.Fatalf("code=%d stderr=%s", code, errOut)
	}
	samples, _, err := wavfile.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 1764 {
		t.Fatalf("len = %d, want 1764", len(samples))
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown preset", []string{"trance"}, "not found"},
		{"missing bank", []string{"-presets", "/nonexistent/bank.yaml"}, "bank.yaml"},
		{"missing config", []string{"-config", "/nonexistent/kick.yaml"}, "config file not found"},
		{"bad rate", []string{"-sr", "-5"}, "sample_rate"},
		{"missing wav", []string{"-analyze", "/nonexistent/in.wav"}, "in.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tt.args...)
			if code != 1 {
				t.Fatalf("code = %d, want 1", code)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Fatalf("stderr missing %q:\n%s", tt.want, errOut)
			}
		})
	}
}

func TestSelectPresetsDefaultRate(t *testing.T) {
	opts := options{params: map[string]float64{"drive": 7}}
	got, err := selectPresets(preset.Builtin(), opts, 22050)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "gabber" {
		t.Fatalf("got %+v", got)
	}
	// gabber carries its own 44100 Hz rate.
	if got[0].SampleRate != 44100 || got[0].Drive != 7 {
		t.Fatalf("got %+v", got[0])
	}

	got, err = selectPresets(preset.Builtin(), options{names: []string{"deep"}}, 22050)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].SampleRate != 22050 {
		t.Fatalf("deep sample rate = %d, want config rate", got[0].SampleRate)
	}
}
