// Package transcription converts captured audio into text using a local
// whisper model, either through the whisper.cpp Go bindings or by driving an
// external whisper executable.
package transcription

import (
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// whisperRate is the sample rate whisper models expect. Audio captured at
// other rates is resampled before inference.
const whisperRate = 16000

// ModelSize selects which whisper model variant to load.
type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

// Config holds configuration for building a transcriber.
type Config struct {
	// Model size to use when ModelPath is empty.
	ModelSize ModelSize
	// Path to a ggml model file, or a directory holding models for the
	// configured size. Empty means search the standard locations.
	ModelPath string
	// Language code hint. Empty or "auto" lets the model detect.
	Language string
	// Explicit path to a whisper executable. Empty means search PATH and
	// common install locations.
	ExecutablePath string
	// Prefer the in-process whisper.cpp bindings when the binary was built
	// with native support.
	PreferNative bool
	// Progress receives interim status lines while a transcription runs.
	// Optional; may be nil.
	Progress func(text string)
}

// Transcriber converts one utterance of PCM audio into text. Implementations
// are safe for use from a single goroutine at a time.
type Transcriber interface {
	// Transcribe runs inference over the full utterance. The samples are
	// mono 16-bit PCM at the given rate; rates other than 16 kHz are
	// resampled internally. An empty string with a nil error means the
	// audio contained no recognizable speech.
	Transcribe(samples []int16, sampleRate int) (string, error)
	// Backend names the inference path, for logs and diagnostics.
	Backend() string
	// ModelInfo returns the configured size and resolved model path.
	ModelInfo() (ModelSize, string)
	// Close frees model resources.
	Close() error
}

// New builds a transcriber from the configuration. The native backend is
// tried first when requested; failures there fall back to the executable
// backend rather than aborting.
func New(cfg Config) (Transcriber, error) {
	if cfg.ModelSize == "" {
		cfg.ModelSize = ModelBase
	}

	modelPath, err := FindModel(cfg.ModelPath, cfg.ModelSize)
	if err != nil {
		return nil, err
	}

	if cfg.PreferNative {
		t, err := newNativeTranscriber(cfg, modelPath)
		if err == nil {
			logger.Info(logger.CategoryTranscription, "using native whisper bindings with model %s", modelPath)
			return t, nil
		}
		logger.Warning(logger.CategoryTranscription, "native whisper unavailable (%v), falling back to executable", err)
	}

	execPath, err := FindExecutable(cfg.ExecutablePath)
	if err != nil {
		return nil, err
	}

	return newExecTranscriber(cfg, modelPath, execPath)
}
