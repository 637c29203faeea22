//go:build cgo && whisper_go

// The whisper.cpp static library (libwhisper.a) and headers must be
// available at link time; build with -tags whisper_go to enable this path.

package transcription

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	whisperlib "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// nativeTranscriber runs whisper.cpp in-process through its Go bindings.
// The model is loaded once; each utterance gets a fresh context because
// contexts are not reusable across goroutines.
type nativeTranscriber struct {
	model     whisperlib.Model
	modelPath string
	modelSize ModelSize
	language  string
	progress  func(string)

	mu sync.Mutex
}

// newNativeTranscriber loads the model through the bindings.
func newNativeTranscriber(cfg Config, modelPath string) (Transcriber, error) {
	model, err := whisperlib.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model %q: %w", modelPath, err)
	}

	return &nativeTranscriber{
		model:     model,
		modelPath: modelPath,
		modelSize: cfg.ModelSize,
		language:  cfg.Language,
		progress:  cfg.Progress,
	}, nil
}

// Backend names the inference path.
func (t *nativeTranscriber) Backend() string {
	return "native (whisper.cpp bindings)"
}

// ModelInfo returns the configured size and resolved model path.
func (t *nativeTranscriber) ModelInfo() (ModelSize, string) {
	return t.modelSize, t.modelPath
}

// Close releases the model.
func (t *nativeTranscriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.model != nil {
		err := t.model.Close()
		t.model = nil
		return err
	}
	return nil
}

// Transcribe resamples the utterance to the whisper rate and runs inference.
func (t *nativeTranscriber) Transcribe(samples []int16, sampleRate int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.model == nil {
		return "", fmt.Errorf("%w: transcriber is closed", ErrTranscriptionFailed)
	}
	if len(samples) == 0 {
		return "", nil
	}

	if sampleRate != whisperRate {
		samples = audio.Resample(samples, sampleRate, whisperRate)
	}
	pcm := audio.ToFloat32(samples)

	wctx, err := t.model.NewContext()
	if err != nil {
		return "", fmt.Errorf("%w: create context: %v", ErrTranscriptionFailed, err)
	}

	if t.language != "" && t.language != "auto" {
		if err := wctx.SetLanguage(t.language); err != nil {
			logger.Warning(logger.CategoryTranscription, "could not set language %q: %v", t.language, err)
		}
	}

	if err := wctx.Process(pcm, nil, nil, nil); err != nil {
		return "", fmt.Errorf("%w: process audio: %v", ErrTranscriptionFailed, err)
	}

	var parts []string
	for {
		segment, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: read segment: %v", ErrTranscriptionFailed, err)
		}
		text := strings.TrimSpace(segment.Text)
		if text == "" {
			continue
		}
		parts = append(parts, text)
		if t.progress != nil {
			t.progress(text)
		}
	}

	return normalizeText(strings.Join(parts, " ")), nil
}
