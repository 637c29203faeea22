package transcription

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// ModelFileName returns the conventional ggml file name for a model size.
func ModelFileName(size ModelSize) string {
	return fmt.Sprintf("ggml-%s.bin", size)
}

// FindModel resolves the model file to use. An explicit file path wins when
// it exists, and a directory is checked for the sized file before the
// standard locations are searched.
func FindModel(explicitPath string, size ModelSize) (string, error) {
	name := ModelFileName(size)

	if explicitPath != "" {
		info, err := os.Stat(explicitPath)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrModelNotFound, explicitPath)
		}
		if !info.IsDir() {
			return explicitPath, nil
		}
		path := filepath.Join(explicitPath, name)
		if _, err := os.Stat(path); err == nil {
			logger.Debug(logger.CategoryTranscription, "found model %s", path)
			return path, nil
		}
	}

	for _, dir := range modelSearchDirs() {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			logger.Debug(logger.CategoryTranscription, "found model %s", path)
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: no %s in standard locations (set WhisperModelPath in the config or place the file under ~/.voice-transcriber/models)", ErrModelNotFound, name)
}

// modelSearchDirs lists candidate model directories in search order.
func modelSearchDirs() []string {
	var dirs []string

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".voice-transcriber", "models"),
			filepath.Join(home, ".whisper", "models"),
		)
		switch runtime.GOOS {
		case "windows":
			dirs = append(dirs, filepath.Join(home, "AppData", "Local", "voice-transcriber", "models"))
		case "darwin":
			dirs = append(dirs, filepath.Join(home, "Library", "Application Support", "voice-transcriber", "models"))
		default:
			dirs = append(dirs, filepath.Join(home, ".local", "share", "voice-transcriber", "models"))
		}
	}

	dirs = append(dirs,
		"models",
		filepath.Join("whisper.cpp", "models"),
	)

	if runtime.GOOS != "windows" {
		dirs = append(dirs, "/usr/local/share/whisper/models", "/usr/share/whisper/models")
	}

	return dirs
}

// FindExecutable resolves the whisper executable to run. An explicit path is
// validated as-is; otherwise PATH and common install locations are searched.
func FindExecutable(explicitPath string) (string, error) {
	if explicitPath != "" {
		if info, err := os.Stat(explicitPath); err == nil && !info.IsDir() {
			if isExecutable(explicitPath) {
				return explicitPath, nil
			}
			return "", fmt.Errorf("%w: %s exists but is not executable", ErrInvalidExecutablePath, explicitPath)
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidExecutablePath, explicitPath)
	}

	names := executableNames()
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug(logger.CategoryTranscription, "found whisper executable in PATH: %s", path)
			return path, nil
		}
	}

	for _, dir := range executableSearchDirs() {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil && isExecutable(path) {
				logger.Debug(logger.CategoryTranscription, "found whisper executable: %s", path)
				return path, nil
			}
		}
	}

	return "", fmt.Errorf("%w: install whisper.cpp or set WhisperExecutable in the config", ErrExecutableNotFound)
}

// executableNames lists candidate binary names, newest CLI names first.
func executableNames() []string {
	names := []string{"whisper-cli", "whisper", "whisper-cpp", "whisper.cpp"}
	if runtime.GOOS == "windows" {
		withExt := make([]string, 0, len(names))
		for _, n := range names {
			withExt = append(withExt, n+".exe")
		}
		return withExt
	}
	return names
}

// executableSearchDirs lists install locations checked after PATH.
func executableSearchDirs() []string {
	var dirs []string

	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(home, ".local", "bin"),
			filepath.Join(home, "bin"),
			filepath.Join(home, ".voice-transcriber", "bin"),
			filepath.Join(home, "git", "whisper.cpp"),
			filepath.Join(home, "whisper.cpp"),
		)
	}

	switch runtime.GOOS {
	case "windows":
		dirs = append(dirs,
			filepath.Join("C:", "Program Files", "Whisper"),
			filepath.Join("C:", "Whisper"),
		)
	default:
		dirs = append(dirs,
			"/usr/local/bin",
			"/usr/bin",
			"/opt/whisper.cpp",
			"/opt/whisper",
		)
	}

	return dirs
}

// isExecutable checks whether a file has execute permission.
func isExecutable(path string) bool {
	if runtime.GOOS == "windows" {
		return true
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}
