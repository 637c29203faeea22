package audio

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WriteWAV persists samples as a 16-bit PCM WAV file at the given rate.
func WriteWAV(path string, samples []int16, sampleRate, channels int) error {
	if channels <= 0 {
		channels = 1
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	buf := &gaudio.IntBuffer{
		Format: &gaudio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return f.Close()
}

// ReadWAV loads a WAV file as mono 16-bit samples plus its sample rate.
// Multi-channel files are averaged down to mono; wider bit depths are
// shifted down to 16 bits.
func ReadWAV(path string) ([]int16, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("not a valid wav file: %s", path)
	}

	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode wav file: %w", err)
	}

	rate := pcm.Format.SampleRate
	channels := pcm.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}

	shift := uint(0)
	if pcm.SourceBitDepth > 16 {
		shift = uint(pcm.SourceBitDepth - 16)
	}

	frames := len(pcm.Data) / channels
	samples := make([]int16, frames)
	for i := 0; i < frames; i++ {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += pcm.Data[i*channels+c] >> shift
		}
		samples[i] = clampInt16(sum / channels)
	}

	return samples, rate, nil
}

// Resample converts samples between rates with linear interpolation. Good
// enough for speech input.
func Resample(samples []int16, srcRate, dstRate int) []int16 {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 || len(samples) == 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	n := int(float64(len(samples)) / ratio)
	if n == 0 {
		n = 1
	}

	out := make([]int16, n)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples) {
			idx = len(samples) - 1
		}
		frac := pos - float64(idx)
		if idx+1 < len(samples) {
			v := float64(samples[idx])*(1-frac) + float64(samples[idx+1])*frac
			out[i] = clampInt16(int(math.Round(v)))
		} else {
			out[i] = samples[idx]
		}
	}
	return out
}

// ToFloat32 converts 16-bit samples to the normalized [-1, 1) float form the
// in-process transcription bindings expect.
func ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s) / 32768.0
	}
	return out
}

func clampInt16(v int) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v)
	}
}
