package audio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// Errors surfaced by device negotiation.
var (
	ErrNoWorkingConfig = errors.New("no working audio configuration found")
	ErrNoInputDevice   = errors.New("no audio input device available")
)

// Config describes the capture parameters negotiated for one session. It is
// immutable for the lifetime of that session's capture loop.
type Config struct {
	SampleRate int
	ChunkSize  int // samples per blocking read
	Channels   int
	BitDepth   int
}

// fallbackRates are tried in this order when the device's native rate is not
// usable. The order favors quality over throughput.
var fallbackRates = []int{48000, 44100, 22050, 16000, 8000}

// chunkSizes are tried smallest first so the stop latency, which is bounded
// by one chunk interval, stays as small as the device allows.
var chunkSizes = []int{128, 256, 512}

// DeviceInfo describes an input-capable audio device.
type DeviceInfo struct {
	Index             int
	Name              string
	MaxInputChannels  int
	DefaultSampleRate float64
	IsDefault         bool
}

// Initialize sets up the portaudio host. Call once before any device work.
func Initialize() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize audio host: %w", err)
	}
	return nil
}

// Terminate releases the portaudio host.
func Terminate() error {
	return portaudio.Terminate()
}

// ListInputDevices returns every device that can capture audio.
func ListInputDevices() ([]DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	defaultDev, _ := portaudio.DefaultInputDevice()

	var infos []DeviceInfo
	for i, dev := range devices {
		if dev.MaxInputChannels <= 0 {
			continue
		}
		infos = append(infos, DeviceInfo{
			Index:             i,
			Name:              dev.Name,
			MaxInputChannels:  dev.MaxInputChannels,
			DefaultSampleRate: dev.DefaultSampleRate,
			IsDefault:         defaultDev != nil && dev == defaultDev,
		})
	}

	if len(infos) == 0 {
		return nil, ErrNoInputDevice
	}
	return infos, nil
}

// StreamHandle is an opened, not yet started input stream bound to one
// chunk-sized read buffer. The caller owns Close.
type StreamHandle interface {
	Start() error
	// ReadChunk blocks until one full chunk is available. The returned slice
	// is reused and only valid until the next call. An ErrInputOverflow
	// return still carries usable data.
	ReadChunk() ([]int16, error)
	Stop() error
	Close() error
}

// ErrInputOverflow marks a soft overflow read: samples were dropped by the
// host but the returned chunk is still valid.
var ErrInputOverflow = errors.New("audio input overflowed")

type paStream struct {
	stream *portaudio.Stream
	buf    []int16
}

func (s *paStream) Start() error { return s.stream.Start() }

func (s *paStream) ReadChunk() ([]int16, error) {
	if err := s.stream.Read(); err != nil {
		if errors.Is(err, portaudio.InputOverflowed) {
			return s.buf, ErrInputOverflow
		}
		return nil, err
	}
	return s.buf, nil
}

func (s *paStream) Stop() error  { return s.stream.Stop() }
func (s *paStream) Close() error { return s.stream.Close() }

// Negotiator finds a working (sample rate, chunk size) pair for an input
// device by attempting to open it with each candidate until one succeeds.
type Negotiator struct {
	Channels int

	// open is swapped out in tests; the default opens a portaudio stream.
	open func(dev *portaudio.DeviceInfo, cfg Config) (StreamHandle, error)
}

// NewNegotiator creates a negotiator for the given channel count.
func NewNegotiator(channels int) *Negotiator {
	if channels <= 0 {
		channels = 1
	}
	return &Negotiator{
		Channels: channels,
		open:     openPortAudioStream,
	}
}

// Negotiate opens the requested device (or the system default when
// deviceIndex is negative) with the first working configuration. The
// returned handle is open but not started; the caller closes it.
func (n *Negotiator) Negotiate(deviceIndex int) (StreamHandle, Config, error) {
	dev, err := resolveDevice(deviceIndex)
	if err != nil {
		return nil, Config{}, err
	}

	candidates := candidateConfigs(int(dev.DefaultSampleRate), n.Channels)
	return n.negotiate(dev, candidates)
}

func (n *Negotiator) negotiate(dev *portaudio.DeviceInfo, candidates []Config) (StreamHandle, Config, error) {
	for attempt, cfg := range candidates {
		handle, err := n.open(dev, cfg)
		if err != nil {
			logger.Debug(logger.CategoryAudio, "device %q rejected %d Hz / %d samples: %v",
				dev.Name, cfg.SampleRate, cfg.ChunkSize, err)
			continue
		}
		logger.Info(logger.CategoryAudio, "device %q accepted %d Hz / %d samples (attempt %d)",
			dev.Name, cfg.SampleRate, cfg.ChunkSize, attempt+1)
		return handle, cfg, nil
	}

	return nil, Config{}, fmt.Errorf("%w: device %q rejected all %d candidates",
		ErrNoWorkingConfig, dev.Name, len(candidates))
}

// candidateConfigs builds the prioritized candidate list: the device's
// native rate first when it is in the supported set, then the remaining
// fallback rates, each paired with the chunk sizes smallest first.
func candidateConfigs(nativeRate, channels int) []Config {
	rates := make([]int, 0, len(fallbackRates))
	nativeSupported := false
	for _, r := range fallbackRates {
		if r == nativeRate {
			nativeSupported = true
		}
	}
	if nativeSupported {
		rates = append(rates, nativeRate)
	}
	for _, r := range fallbackRates {
		if r != nativeRate {
			rates = append(rates, r)
		}
	}

	cfgs := make([]Config, 0, len(rates)*len(chunkSizes))
	for _, rate := range rates {
		for _, chunk := range chunkSizes {
			cfgs = append(cfgs, Config{
				SampleRate: rate,
				ChunkSize:  chunk,
				Channels:   channels,
				BitDepth:   16,
			})
		}
	}
	return cfgs
}

// resolveDevice maps a configured device index to a live device, falling
// back to the system default when the index is negative or stale.
func resolveDevice(deviceIndex int) (*portaudio.DeviceInfo, error) {
	if deviceIndex >= 0 {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate audio devices: %w", err)
		}
		if deviceIndex < len(devices) && devices[deviceIndex].MaxInputChannels > 0 {
			return devices[deviceIndex], nil
		}
		logger.Warning(logger.CategoryAudio, "configured device %d is gone, using system default", deviceIndex)
	}

	dev, err := portaudio.DefaultInputDevice()
	if err != nil || dev == nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInputDevice, err)
	}
	return dev, nil
}

func openPortAudioStream(dev *portaudio.DeviceInfo, cfg Config) (StreamHandle, error) {
	buf := make([]int16, cfg.ChunkSize*cfg.Channels)

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: cfg.Channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: cfg.ChunkSize,
	}

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, err
	}
	return &paStream{stream: stream, buf: buf}, nil
}
