// Package wavfile reads and writes mono 16-bit linear PCM WAV files.
package wavfile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-kick/dsp/pcm"
)

const (
	BitDepth    = 16
	NumChannels = 1
	// FormatPCM is the WAVE format tag for uncompressed linear PCM.
	FormatPCM = 1
)

// ErrUnsupportedFormat is returned when decoding anything other than
// mono 16-bit linear PCM.
var ErrUnsupportedFormat = errors.New("wavfile: only mono 16-bit PCM is supported")

// Write encodes samples as a mono 16-bit WAV stream at sampleRate.
func Write(w io.WriteSeeker, samples []float32, sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("wavfile: sample rate must be > 0: %d", sampleRate)
	}

	enc := wav.NewEncoder(w, sampleRate, BitDepth, NumChannels, FormatPCM)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: NumChannels,
			SampleRate:  sampleRate,
		},
		Data:           pcm.ToInts(samples),
		SourceBitDepth: BitDepth,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavfile: write samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavfile: finalize header: %w", err)
	}
	return nil
}

// WriteFile writes samples to path, replacing any existing file. A partially
// written file is removed on failure.
func WriteFile(path string, samples []float32, sampleRate int) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavfile: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("wavfile: close %s: %w", path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	return Write(f, samples, sampleRate)
}

// Read decodes a mono 16-bit WAV stream and returns its samples scaled to
// [-1, 1] together with the sample rate.
func Read(r io.ReadSeeker) ([]float32, int, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		if err := d.Err(); err != nil {
			return nil, 0, fmt.Errorf("wavfile: invalid file: %w", err)
		}
		return nil, 0, errors.New("wavfile: invalid or empty file")
	}
	if d.NumChans != NumChannels || d.BitDepth != BitDepth || d.WavAudioFormat != FormatPCM {
		return nil, 0, fmt.Errorf("%w: channels=%d bits=%d format=%d",
			ErrUnsupportedFormat, d.NumChans, d.BitDepth, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("wavfile: read samples: %w", err)
	}

	samples, err := pcm.FromInts(buf.Data)
	if err != nil {
		return nil, 0, fmt.Errorf("wavfile: %w", err)
	}
	return samples, int(d.SampleRate), nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) ([]float32, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("wavfile: open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}
