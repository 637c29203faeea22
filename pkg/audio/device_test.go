package audio

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gordonklaus/portaudio"
)

func TestCandidateConfigsNativeRateFirst(t *testing.T) {
	cfgs := candidateConfigs(44100, 1)

	if len(cfgs) != len(fallbackRates)*len(chunkSizes) {
		t.Fatalf("Expected %d candidates, got %d", len(fallbackRates)*len(chunkSizes), len(cfgs))
	}

	// Native rate leads, smallest chunk first.
	wantHead := []Config{
		{SampleRate: 44100, ChunkSize: 128, Channels: 1, BitDepth: 16},
		{SampleRate: 44100, ChunkSize: 256, Channels: 1, BitDepth: 16},
		{SampleRate: 44100, ChunkSize: 512, Channels: 1, BitDepth: 16},
		{SampleRate: 48000, ChunkSize: 128, Channels: 1, BitDepth: 16},
	}
	for i, want := range wantHead {
		if cfgs[i] != want {
			t.Errorf("Candidate %d: expected %+v, got %+v", i, want, cfgs[i])
		}
	}

	// The native rate must not repeat later in the list.
	seen := 0
	for _, cfg := range cfgs {
		if cfg.SampleRate == 44100 {
			seen++
		}
	}
	if seen != len(chunkSizes) {
		t.Errorf("Expected the native rate to appear %d times, got %d", len(chunkSizes), seen)
	}
}

func TestCandidateConfigsUnsupportedNativeRate(t *testing.T) {
	cfgs := candidateConfigs(96000, 1)

	if cfgs[0].SampleRate != 48000 || cfgs[0].ChunkSize != 128 {
		t.Errorf("Expected fallback order to lead with 48000/128, got %d/%d",
			cfgs[0].SampleRate, cfgs[0].ChunkSize)
	}
	for _, cfg := range cfgs {
		if cfg.SampleRate == 96000 {
			t.Error("Unsupported native rate must not appear in the candidate list")
		}
	}
}

func TestNegotiateStopsAtFirstWorkingConfig(t *testing.T) {
	candidates := []Config{
		{SampleRate: 48000, ChunkSize: 128, Channels: 1, BitDepth: 16},
		{SampleRate: 48000, ChunkSize: 256, Channels: 1, BitDepth: 16},
		{SampleRate: 44100, ChunkSize: 128, Channels: 1, BitDepth: 16},
	}

	var attempts []Config
	n := &Negotiator{
		Channels: 1,
		open: func(_ *portaudio.DeviceInfo, cfg Config) (StreamHandle, error) {
			attempts = append(attempts, cfg)
			if cfg.SampleRate == 44100 && cfg.ChunkSize == 128 {
				return &scriptedStream{}, nil
			}
			return nil, fmt.Errorf("format not supported")
		},
	}

	dev := &portaudio.DeviceInfo{Name: "picky device", DefaultSampleRate: 48000}
	handle, cfg, err := n.negotiate(dev, candidates)
	if err != nil {
		t.Fatalf("negotiate failed: %v", err)
	}
	if handle == nil {
		t.Fatal("Expected an open handle")
	}
	if cfg.SampleRate != 44100 || cfg.ChunkSize != 128 {
		t.Errorf("Expected 44100/128, got %d/%d", cfg.SampleRate, cfg.ChunkSize)
	}

	if len(attempts) != 3 {
		t.Fatalf("Expected exactly 3 attempts, got %d", len(attempts))
	}
	for i, want := range candidates {
		if attempts[i] != want {
			t.Errorf("Attempt %d: expected %+v, got %+v", i, want, attempts[i])
		}
	}
}

func TestNegotiateExhaustionReturnsNoWorkingConfig(t *testing.T) {
	calls := 0
	n := &Negotiator{
		Channels: 1,
		open: func(_ *portaudio.DeviceInfo, _ Config) (StreamHandle, error) {
			calls++
			return nil, fmt.Errorf("format not supported")
		},
	}

	dev := &portaudio.DeviceInfo{Name: "broken device", DefaultSampleRate: 44100}
	candidates := candidateConfigs(44100, 1)

	_, _, err := n.negotiate(dev, candidates)
	if !errors.Is(err, ErrNoWorkingConfig) {
		t.Fatalf("Expected ErrNoWorkingConfig, got %v", err)
	}
	if calls != len(candidates) {
		t.Errorf("Expected every candidate to be tried (%d), got %d", len(candidates), calls)
	}
}

func TestNewNegotiatorDefaultsChannels(t *testing.T) {
	n := NewNegotiator(0)
	if n.Channels != 1 {
		t.Errorf("Expected channels to default to 1, got %d", n.Channels)
	}
	if n.open == nil {
		t.Error("Expected a default opener")
	}
}
