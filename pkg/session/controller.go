// Package session coordinates one recording at a time: combo engaged opens
// the microphone and starts the capture loop, combo disengaged stops it,
// joins the capture goroutine and hands the samples to the post-capture
// processor on a detached goroutine.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
	"github.com/jjamesmartiin/voice-transcriber/pkg/notify"
)

// Negotiator opens an audio device with a working configuration.
// *audio.Negotiator is the production implementation.
type Negotiator interface {
	Negotiate(deviceIndex int) (audio.StreamHandle, audio.Config, error)
}

// PostProcessor consumes one finished capture. *Processor is the production
// implementation.
type PostProcessor interface {
	Process(sessionID string, buf *audio.SampleBuffer, cfg audio.Config)
}

// recording is the live state of one hold-to-talk session. The capture
// goroutine owns buffer and err until done is closed; the controller reads
// them only after the join.
type recording struct {
	id      string
	cfg     audio.Config
	handle  audio.StreamHandle
	stop    chan struct{}
	done    chan struct{}
	started time.Time

	buffer *audio.SampleBuffer
	err    error
}

// Controller implements the hotkey transitions. At most one recording is
// alive at a time; a second engage while one is active is a no-op.
type Controller struct {
	negotiator  Negotiator
	processor   PostProcessor
	notifier    notify.Notifier
	deviceIndex int

	mu      sync.Mutex
	current *recording
}

// NewController wires the capture side to the processing side. deviceIndex
// is the persisted audio device selection, -1 for the system default.
func NewController(negotiator Negotiator, processor PostProcessor, notifier notify.Notifier, deviceIndex int) *Controller {
	return &Controller{
		negotiator:  negotiator,
		processor:   processor,
		notifier:    notifier,
		deviceIndex: deviceIndex,
	}
}

// OnComboEngaged opens the device and starts capturing. Negotiation failure
// is notified and leaves no session behind, so the next press tries again.
func (c *Controller) OnComboEngaged() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		logger.Debug(logger.CategorySession, "already recording, ignoring engage")
		return
	}

	handle, cfg, err := c.negotiator.Negotiate(c.deviceIndex)
	if err != nil {
		logger.Error(logger.CategorySession, "could not open an audio device: %v", err)
		c.notifier.Notify(notify.StateError, "Recording failed", "Could not open the microphone")
		return
	}

	rec := &recording{
		id:      uuid.NewString(),
		cfg:     cfg,
		handle:  handle,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
		started: time.Now(),
	}
	c.current = rec

	go func() {
		defer close(rec.done)
		rec.buffer, rec.err = audio.NewLoop(rec.handle, rec.cfg).Run(rec.stop)
	}()

	logger.Info(logger.CategorySession, "session %s recording at %d Hz, %d-sample chunks",
		shortID(rec.id), cfg.SampleRate, cfg.ChunkSize)
	c.notifier.Notify(notify.StateRecording, "Recording", "Release the keys to transcribe")
}

// OnComboDisengaged stops the capture loop, waits for it to finish so the
// buffer has exactly one owner, then hands off to the processor and returns.
// The join is bounded by one chunk interval.
func (c *Controller) OnComboDisengaged() {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.current
	if rec == nil {
		logger.Debug(logger.CategorySession, "no active recording, ignoring disengage")
		return
	}
	c.current = nil

	close(rec.stop)
	<-rec.done
	if err := rec.handle.Close(); err != nil {
		logger.Debug(logger.CategorySession, "stream close: %v", err)
	}

	if rec.err != nil {
		logger.Error(logger.CategorySession, "session %s capture failed: %v", shortID(rec.id), rec.err)
		c.notifier.Notify(notify.StateError, "Recording failed", "Could not read from the microphone")
		return
	}

	held := time.Since(rec.started)
	logger.Info(logger.CategorySession, "session %s captured %d samples over %.1fs",
		shortID(rec.id), rec.buffer.Len(), held.Seconds())

	c.notifier.Notify(notify.StateProcessing, "Processing", "")
	go c.processor.Process(rec.id, rec.buffer, rec.cfg)
}

// Active reports whether a capture loop is currently running.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Close stops an in-flight recording without processing it. Used on
// shutdown, where the half-finished utterance is not worth transcribing.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := c.current
	if rec == nil {
		return nil
	}
	c.current = nil

	close(rec.stop)
	<-rec.done
	logger.Info(logger.CategorySession, "session %s discarded on shutdown", shortID(rec.id))
	return rec.handle.Close()
}

// shortID trims a session id for logs.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
