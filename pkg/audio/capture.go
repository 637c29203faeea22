// Package audio provides device negotiation, chunked capture, and the PCM
// utilities the recording pipeline needs.
package audio

import (
	"errors"
	"fmt"

	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// ErrCaptureFailed reports a capture that died before reading any audio.
// Errors after the first chunk are downgraded to a shortened recording.
var ErrCaptureFailed = errors.New("capture failed before any audio was read")

// Loop reads fixed-size chunks from an open stream until a stop signal or a
// hard read error ends it. One Loop serves exactly one recording session.
type Loop struct {
	handle StreamHandle
	cfg    Config

	// LevelFunc, when set, receives each chunk's peak amplitude. It runs on
	// the capture goroutine and must return quickly.
	LevelFunc func(peak int)
}

// NewLoop wraps an opened stream handle for one capture run.
func NewLoop(handle StreamHandle, cfg Config) *Loop {
	return &Loop{handle: handle, cfg: cfg}
}

// Run blocks until stop is closed or reading fails hard. The stop signal is
// checked between reads, never mid-read, so stop latency is bounded by one
// chunk interval. The buffer is returned on every exit path: partial audio
// from an interrupted capture is still worth transcribing. The error is
// non-nil only when nothing was captured at all.
func (l *Loop) Run(stop <-chan struct{}) (*SampleBuffer, error) {
	buf := NewSampleBuffer(l.cfg.SampleRate)

	if err := l.handle.Start(); err != nil {
		return buf, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}
	defer func() {
		if err := l.handle.Stop(); err != nil {
			logger.Debug(logger.CategoryAudio, "stream stop: %v", err)
		}
	}()

	chunks := 0
	for {
		select {
		case <-stop:
			logger.Debug(logger.CategoryAudio, "stop observed after %d chunks (%d samples, peak %d)",
				chunks, buf.Len(), buf.Peak())
			return buf, nil
		default:
		}

		chunk, err := l.handle.ReadChunk()
		if errors.Is(err, ErrInputOverflow) {
			// The host dropped samples but the chunk itself is valid.
			logger.Debug(logger.CategoryAudio, "input overflow at chunk %d", chunks)
			err = nil
		}
		if err != nil {
			if buf.Len() == 0 {
				return buf, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
			}
			logger.Warning(logger.CategoryAudio, "recording cut short after %d chunks: %v", chunks, err)
			return buf, nil
		}

		buf.Append(chunk)
		chunks++

		if l.LevelFunc != nil {
			l.LevelFunc(PeakAmplitude(chunk))
		}
		if chunks%50 == 0 {
			logger.Debug(logger.CategoryAudio, "captured %d chunks, %d samples, peak %d",
				chunks, buf.Len(), buf.Peak())
		}
	}
}
