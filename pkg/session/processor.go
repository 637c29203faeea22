package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jjamesmartiin/voice-transcriber/internal/textout"
	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
	"github.com/jjamesmartiin/voice-transcriber/pkg/notify"
	"github.com/jjamesmartiin/voice-transcriber/pkg/transcription"
)

// vadMode is the aggressiveness of the optional silence pre-check.
const vadMode = 2

// TextEmitter delivers recognized text. *textout.Emitter is the production
// implementation.
type TextEmitter interface {
	Emit(text string) (textout.Method, error)
}

// Options tune the post-capture pipeline.
type Options struct {
	// RecordingsDir is where finished captures are written. Empty falls
	// back to the system temp directory.
	RecordingsDir string
	// KeepRecordings leaves the WAV file behind after transcription.
	KeepRecordings bool
	// VADPrecheck skips transcription when no voiced frame is found.
	// Advisory: when the detector cannot run, the pipeline proceeds.
	VADPrecheck bool
}

// Processor turns one finished capture into emitted text: gain correction,
// WAV persistence, transcription and output routing, with a notification at
// every terminal state. It runs on a detached goroutine so the hotkey path
// is never blocked by a slow model.
type Processor struct {
	transcriber transcription.Transcriber
	emitter     TextEmitter
	notifier    notify.Notifier
	opts        Options
}

// NewProcessor wires the post-capture pipeline.
func NewProcessor(transcriber transcription.Transcriber, emitter TextEmitter, notifier notify.Notifier, opts Options) *Processor {
	return &Processor{
		transcriber: transcriber,
		emitter:     emitter,
		notifier:    notifier,
		opts:        opts,
	}
}

// Process consumes one capture. The buffer must not be touched by anyone
// else once handed in.
func (p *Processor) Process(sessionID string, buf *audio.SampleBuffer, cfg audio.Config) {
	samples := buf.Samples()
	if len(samples) == 0 {
		logger.Info(logger.CategorySession, "session %s captured no audio", shortID(sessionID))
		p.notifier.Notify(notify.StateWarning, "No speech detected", "")
		return
	}

	peak := buf.Peak()
	if peak < audio.LowLevelWarningThreshold {
		logger.Warning(logger.CategoryAudio, "session %s peak amplitude %d is very low", shortID(sessionID), peak)
		p.notifier.Notify(notify.StateWarning, "Microphone level is very low",
			"Check the input device or raise its volume")
	}

	if factor := audio.ApplyGain(samples, peak); factor > 1 {
		logger.Debug(logger.CategoryAudio, "session %s boosted %.2fx from peak %d", shortID(sessionID), factor, peak)
	}

	if p.opts.VADPrecheck && audio.ValidVADRate(cfg.SampleRate) && !p.hasSpeech(samples, cfg.SampleRate) {
		logger.Info(logger.CategorySession, "session %s has no voiced frames, skipping transcription", shortID(sessionID))
		p.notifier.Notify(notify.StateWarning, "No speech detected", "")
		return
	}

	wavPath, err := p.persist(sessionID, samples, cfg)
	if err != nil {
		logger.Warning(logger.CategorySession, "session %s could not persist recording: %v", shortID(sessionID), err)
	} else if !p.opts.KeepRecordings {
		defer os.Remove(wavPath)
	}

	start := time.Now()
	text, err := p.transcriber.Transcribe(samples, cfg.SampleRate)
	elapsed := time.Since(start)
	if err != nil {
		logger.Error(logger.CategoryTranscription, "session %s transcription failed: %v", shortID(sessionID), err)
		p.notifier.Notify(notify.StateError, "Transcription failed", err.Error())
		return
	}

	logger.Info(logger.CategoryTranscription, "session %s transcribed %.1fs of audio in %.1fs",
		shortID(sessionID), buf.Duration(cfg.SampleRate).Seconds(), elapsed.Seconds())

	if text == "" {
		p.notifier.Notify(notify.StateWarning, "No speech detected", "")
		return
	}

	method, err := p.emitter.Emit(text)
	if err != nil {
		// The recognized text must not be lost with the failed delivery.
		logger.Error(logger.CategoryOutput, "session %s could not deliver text: %v", shortID(sessionID), err)
		logger.Info(logger.CategoryOutput, "recognized text: %s", text)
		p.notifier.Notify(notify.StateError, "Output failed", "Could not type or copy the text")
		return
	}

	logger.Info(logger.CategorySession, "session %s done: %s", shortID(sessionID), text)
	p.notifier.Notify(notify.StateCompleted, "Transcription complete", completionMessage(method, elapsed))
}

// hasSpeech runs the advisory silence pre-check. Any detector problem keeps
// the pipeline going rather than dropping the utterance.
func (p *Processor) hasSpeech(samples []int16, rate int) bool {
	vad, err := audio.NewVAD(rate, vadMode)
	if err != nil {
		logger.Debug(logger.CategoryAudio, "voice detector unavailable: %v", err)
		return true
	}
	voiced, err := vad.HasSpeech(samples)
	if err != nil {
		logger.Debug(logger.CategoryAudio, "voice detection failed: %v", err)
		return true
	}
	return voiced
}

// persist writes the capture as a WAV at the session's negotiated rate.
func (p *Processor) persist(sessionID string, samples []int16, cfg audio.Config) (string, error) {
	dir := p.opts.RecordingsDir
	if dir == "" {
		dir = os.TempDir()
	}

	name := fmt.Sprintf("recording-%s-%s.wav", time.Now().Format("20060102-150405"), shortID(sessionID))
	path := filepath.Join(dir, name)
	if err := audio.WriteWAV(path, samples, cfg.SampleRate, cfg.Channels); err != nil {
		return "", err
	}

	logger.Debug(logger.CategorySession, "session %s persisted to %s", shortID(sessionID), path)
	return path, nil
}

func completionMessage(method textout.Method, elapsed time.Duration) string {
	switch method {
	case textout.MethodClipboard:
		return fmt.Sprintf("Copied to clipboard (%.1fs)", elapsed.Seconds())
	default:
		return fmt.Sprintf("Typed into the focused window (%.1fs)", elapsed.Seconds())
	}
}
