package wavfile

import (
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-kick/dsp/kick"
	"github.com/cwbudde/algo-kick/dsp/pcm"
)

func TestWriteFileReadFileRoundTrip(t *testing.T) {
	samples, err := kick.Synthesize(kick.DefaultParams())
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "kick.wav")
	if err := WriteFile(path, samples, kick.DefaultSampleRate); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, sr, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if sr != kick.DefaultSampleRate {
		t.Fatalf("sample rate = %d, want %d", sr, kick.DefaultSampleRate)
	}
	if len(got) != len(samples) {
		t.Fatalf("len = %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if math.Abs(float64(got[i]-samples[i])) > 1.0/pcm.FullScale {
			t.Fatalf("index %d: got %v, want %v", i, got[i], samples[i])
		}
	}
}

func TestWriteFileHeader(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 0.95}
	path := filepath.Join(t.TempDir(), "header.wav")
	if err := WriteFile(path, samples, 48000); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(raw) != 44+len(samples)*pcm.BytesPerSample {
		t.Fatalf("file size = %d, want %d", len(raw), 44+len(samples)*pcm.BytesPerSample)
	}
	if string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		t.Fatalf("bad RIFF/WAVE tags: %q %q", raw[0:4], raw[8:12])
	}

	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{name: "format", got: uint32(binary.LittleEndian.Uint16(raw[20:])), want: FormatPCM},
		{name: "channels", got: uint32(binary.LittleEndian.Uint16(raw[22:])), want: NumChannels},
		{name: "sample rate", got: binary.LittleEndian.Uint32(raw[24:]), want: 48000},
		{name: "byte rate", got: binary.LittleEndian.Uint32(raw[28:]), want: 48000 * pcm.BytesPerSample},
		{name: "bits", got: uint32(binary.LittleEndian.Uint16(raw[34:])), want: BitDepth},
		{name: "data size", got: binary.LittleEndian.Uint32(raw[40:]), want: uint32(len(samples) * pcm.BytesPerSample)},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	if v := int16(binary.LittleEndian.Uint16(raw[44+3*pcm.BytesPerSample:])); v != 31129 {
		t.Fatalf("last sample = %d, want 31129", v)
	}
}

func TestWriteRejectsSampleRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := WriteFile(path, []float32{0}, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("partial file left behind: %v", err)
	}
}

func TestReadRejectsStereo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stereo.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	enc := wav.NewEncoder(f, 44100, 16, 2, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		Data:           []int{0, 0, 100, -100},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	_, _, err = ReadFile(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("ReadFile() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, _, err := ReadFile(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
