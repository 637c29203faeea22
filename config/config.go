package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// OutputMode selects how recognized text is delivered
type OutputMode string

const (
	// OutputModeAuto tries typing first, then falls back to the clipboard
	OutputModeAuto OutputMode = "auto"
	// OutputModeType only types into the focused window
	OutputModeType OutputMode = "type"
	// OutputModeClipboard only copies to the clipboard
	OutputModeClipboard OutputMode = "clipboard"
)

// Config holds the application configuration
type Config struct {
	// HotKey configuration
	HotKeyCtrl  bool
	HotKeyAlt   bool
	HotKeyShift bool
	HotKeyKey   string

	// Audio configuration
	AudioInputDevice int // portaudio device index, -1 for system default
	AudioChannels    int

	// Whisper configuration
	WhisperModelPath     string
	WhisperModelSize     string
	WhisperExecutable    string // explicit path, empty for auto-detection
	WhisperLanguage      string // language hint, empty for auto-detect
	UseNativeTranscriber bool   // prefer in-process bindings when compiled in

	// Output configuration
	Output OutputMode

	// Behavior configuration
	ClearKeysOnDisconnect bool // clear a lost keyboard's keys instead of leaving them stuck
	VADPrecheck           bool // skip transcription when no voiced frames were captured
	SoundCues             bool // audible start/finish cues
	KeepRecordings        bool // keep WAV files after transcription

	// Logging configuration
	LogLevel string
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	modelDir := "./models/"
	if dir, err := GetModelDir(); err == nil {
		modelDir = dir
	}

	return &Config{
		// Default hotkey: Alt+Shift, no literal key
		HotKeyCtrl:  false,
		HotKeyAlt:   true,
		HotKeyShift: true,
		HotKeyKey:   "",

		AudioInputDevice: -1,
		AudioChannels:    1,

		WhisperModelPath: modelDir,
		WhisperModelSize: "base",
		WhisperLanguage:  "",

		Output: OutputModeAuto,

		ClearKeysOnDisconnect: false,
		VADPrecheck:           false,
		SoundCues:             true,
		KeepRecordings:        false,

		LogLevel: "info",
	}
}

// Current holds the active configuration
var Current = DefaultConfig()

// GetAppDir returns the path to the .voice-transcriber directory
func GetAppDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	appDir := filepath.Join(homeDir, ".voice-transcriber")

	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create app directory: %w", err)
	}

	return appDir, nil
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, "config.json"), nil
}

// GetRecordingsDir returns the directory where finished captures are written
func GetRecordingsDir() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}

	recDir := filepath.Join(appDir, "recordings")
	if err := os.MkdirAll(recDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create recordings directory: %w", err)
	}

	return recDir, nil
}

// GetModelDir returns the path to the model directory
func GetModelDir() (string, error) {
	appDir, err := GetAppDir()
	if err != nil {
		return "", err
	}

	modelDir := filepath.Join(appDir, "models")
	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	return modelDir, nil
}

// LoadConfig loads the configuration from the config file. A missing file is
// replaced with saved defaults; an unreadable or invalid file leaves the
// defaults active and reports the problem so the caller can warn and proceed.
func LoadConfig() error {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		Current = DefaultConfig()
		return SaveConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		Current = DefaultConfig()
		return fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		Current = DefaultConfig()
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	Current = cfg

	if Current.Output == "" {
		Current.Output = OutputModeAuto
	}
	if Current.AudioChannels <= 0 {
		Current.AudioChannels = 1
	}

	return nil
}

// SaveConfig saves the configuration to the config file
func SaveConfig() error {
	configPath, err := GetConfigFilePath()
	if err != nil {
		return fmt.Errorf("failed to get config file path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(Current, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
