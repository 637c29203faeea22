package transcription

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// ExecutableType distinguishes the flag dialects of whisper ports.
type ExecutableType int

const (
	ExecutableTypeUnknown ExecutableType = iota
	// whisper.cpp binaries (main, whisper-cli, whisper-cpp).
	ExecutableTypeWhisperCpp
	// The pip-installed OpenAI reference CLI.
	ExecutableTypeOpenAI
)

// detectExecutableType determines the flag dialect of a whisper executable,
// first from its name, then by probing --help output.
func detectExecutableType(execPath string) ExecutableType {
	name := filepath.Base(execPath)

	switch {
	case strings.Contains(name, "whisper-cli"),
		strings.Contains(name, "whisper-cpp"),
		strings.Contains(name, "whisper.cpp"):
		return ExecutableTypeWhisperCpp
	}

	out, err := exec.Command(execPath, "--help").CombinedOutput()
	if err == nil {
		help := strings.ToLower(string(out))
		switch {
		case strings.Contains(help, "whisper.cpp"):
			return ExecutableTypeWhisperCpp
		case strings.Contains(help, "--output_format"), strings.Contains(help, "openai"):
			return ExecutableTypeOpenAI
		}
	}

	logger.Info(logger.CategoryTranscription, "could not determine dialect of %s, assuming whisper.cpp flags", execPath)
	return ExecutableTypeWhisperCpp
}

// executableTypeName names a dialect for logs and diagnostics.
func executableTypeName(execType ExecutableType) string {
	switch execType {
	case ExecutableTypeWhisperCpp:
		return "whisper.cpp"
	case ExecutableTypeOpenAI:
		return "openai-whisper"
	default:
		return "unknown"
	}
}

// ExecTranscriber runs an external whisper executable once per utterance and
// collects the transcription from its standard output.
type ExecTranscriber struct {
	modelPath string
	modelSize ModelSize
	execPath  string
	execType  ExecutableType
	language  string
	progress  func(string)

	mu sync.Mutex
}

// newExecTranscriber builds the executable-backed transcriber. Both paths
// have already been resolved and validated by the caller.
func newExecTranscriber(cfg Config, modelPath, execPath string) (*ExecTranscriber, error) {
	t := &ExecTranscriber{
		modelPath: modelPath,
		modelSize: cfg.ModelSize,
		execPath:  execPath,
		execType:  detectExecutableType(execPath),
		language:  cfg.Language,
		progress:  cfg.Progress,
	}

	logger.Info(logger.CategoryTranscription, "using %s executable %s with model %s",
		executableTypeName(t.execType), execPath, modelPath)
	return t, nil
}

// Backend names the inference path.
func (t *ExecTranscriber) Backend() string {
	return fmt.Sprintf("executable (%s)", executableTypeName(t.execType))
}

// ModelInfo returns the configured size and resolved model path.
func (t *ExecTranscriber) ModelInfo() (ModelSize, string) {
	return t.modelSize, t.modelPath
}

// Close frees resources. The executable backend holds none between calls.
func (t *ExecTranscriber) Close() error {
	return nil
}

// Transcribe resamples the utterance to the whisper rate, writes it to a
// temporary WAV file and runs the executable over it.
func (t *ExecTranscriber) Transcribe(samples []int16, sampleRate int) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(samples) == 0 {
		return "", nil
	}

	if sampleRate != whisperRate {
		samples = audio.Resample(samples, sampleRate, whisperRate)
	}

	wavPath := filepath.Join(os.TempDir(), fmt.Sprintf("utterance_%d.wav", time.Now().UnixNano()))
	if err := audio.WriteWAV(wavPath, samples, whisperRate, 1); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	defer os.Remove(wavPath)

	text, err := t.run(wavPath, len(samples))
	if err != nil {
		return "", err
	}
	return normalizeText(text), nil
}

// run executes the whisper process and scans its stdout line by line so
// interim text can be surfaced while long utterances decode.
func (t *ExecTranscriber) run(wavPath string, sampleCount int) (string, error) {
	args := execArgs(t.execType, t.modelPath, t.modelSize, t.language, wavPath)
	logger.Debug(logger.CategoryTranscription, "executing %s %v", t.execPath, args)

	cmd := exec.Command(t.execPath, args...)
	cmd.Env = append(os.Environ(), "OMP_NUM_THREADS=4")
	cmd.Stderr = logger.GetStandardLogWriter(logger.LevelDebug, logger.CategoryTranscription)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("%w: stdout pipe: %v", ErrTranscriptionFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%w: start %s: %v", ErrTranscriptionFailed, t.execPath, err)
	}

	resultChan := make(chan string, 1)
	errChan := make(chan error, 1)
	doneChan := make(chan struct{})

	go func() {
		defer close(doneChan)
		scanner := bufio.NewScanner(stdout)
		var result strings.Builder

		for scanner.Scan() {
			line := scanner.Text()
			if isProgressLine(line) {
				continue
			}

			cleaned := cleanOutputLine(line)
			if cleaned == "" {
				continue
			}

			if result.Len() > 0 {
				result.WriteString(" ")
			}
			result.WriteString(cleaned)

			if t.progress != nil {
				t.progress(cleaned)
			}
		}

		if err := scanner.Err(); err != nil {
			errChan <- fmt.Errorf("reading output: %v", err)
			return
		}
		resultChan <- result.String()
	}()

	timeout := execTimeout(sampleCount)

	select {
	case <-doneChan:
		waitErr := cmd.Wait()
		select {
		case res := <-resultChan:
			if waitErr != nil && res == "" {
				return "", fmt.Errorf("%w: process exited with error: %v", ErrTranscriptionFailed, waitErr)
			}
			if waitErr != nil {
				logger.Warning(logger.CategoryTranscription,
					"process exited with error but produced text: %v", waitErr)
			}
			return res, nil
		case scanErr := <-errChan:
			return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, scanErr)
		case <-time.After(100 * time.Millisecond):
			if waitErr != nil {
				return "", fmt.Errorf("%w: process exited with error: %v", ErrTranscriptionFailed, waitErr)
			}
			return "", nil
		}

	case err := <-errChan:
		cmd.Process.Kill()
		cmd.Wait()
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)

	case <-time.After(timeout):
		cmd.Process.Kill()
		cmd.Wait()
		logger.Warning(logger.CategoryTranscription, "transcription timed out after %v", timeout)

		select {
		case res := <-resultChan:
			return res, nil
		case <-time.After(100 * time.Millisecond):
			return "", fmt.Errorf("%w: timed out after %v", ErrTranscriptionFailed, timeout)
		}
	}
}

// execArgs builds the argument list for the detected dialect.
func execArgs(execType ExecutableType, modelPath string, modelSize ModelSize, language, inputFile string) []string {
	switch execType {
	case ExecutableTypeOpenAI:
		// The reference CLI resolves models by size name, not file path.
		args := []string{
			inputFile,
			"--model", string(modelSize),
			"--output_format", "txt",
			"--task", "transcribe",
			"--temperature", "0",
		}
		if language != "" && language != "auto" {
			args = append(args, "--language", language)
		}
		return args

	default:
		args := []string{
			"-m", modelPath,
			"-f", inputFile,
			"-nt",
			"-t", "4",
		}
		if language != "" && language != "auto" {
			args = append(args, "-l", language)
		}
		return args
	}
}

// execTimeout scales the subprocess deadline with utterance length so slow
// hardware gets room to decode without letting a hung process stall the
// session forever.
func execTimeout(sampleCount int) time.Duration {
	audioSec := float64(sampleCount) / float64(whisperRate)
	sec := audioSec*2.0 + 10.0
	if sec < 15 {
		sec = 15
	}
	if sec > 300 {
		sec = 300
	}
	return time.Duration(sec * float64(time.Second))
}
