package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel determines which messages are logged
type LogLevel int

const (
	// LevelDebug logs everything including detailed debug information
	LevelDebug LogLevel = iota
	// LevelInfo logs informational messages, warnings, and errors
	LevelInfo
	// LevelWarning logs warnings and errors only
	LevelWarning
	// LevelError logs only errors
	LevelError
	// LevelSilent disables all logging
	LevelSilent
)

// Category represents a subsystem or component for more granular logging
type Category string

const (
	// CategoryAudio for device negotiation and capture logs
	CategoryAudio Category = "AUDIO"
	// CategoryInput for keyboard sources and hotkey state logs
	CategoryInput Category = "INPUT"
	// CategorySession for recording session lifecycle logs
	CategorySession Category = "SESSION"
	// CategoryTranscription for transcription-related logs
	CategoryTranscription Category = "TRANSCR"
	// CategoryOutput for text output and notification logs
	CategoryOutput Category = "OUTPUT"
	// CategoryApp for general application logs
	CategoryApp Category = "APP"
	// CategorySystem for system-related logs
	CategorySystem Category = "SYSTEM"
)

var (
	currentLevel LogLevel = LevelInfo

	mu sync.Mutex

	output io.Writer = os.Stderr

	useColors = true

	// Suppress repetitive errors
	lastError     string
	errorCount    int
	suppressNoise bool
)

// ANSI escape codes per level
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
)

// SetLevel changes the current logging level
func SetLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
}

// ParseLevel converts a config/flag string into a LogLevel. Unknown values
// fall back to LevelInfo.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info", "":
		return LevelInfo
	case "warn", "warning":
		return LevelWarning
	case "error":
		return LevelError
	case "silent", "off":
		return LevelSilent
	}
	return LevelInfo
}

// SetOutput changes where logs are written
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	log.SetOutput(w)
}

// EnableColors turns on ANSI color in log output
func EnableColors(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	useColors = enable
}

// SuppressSoundServerWarnings prevents ALSA/JACK chatter emitted while
// portaudio probes devices from flooding the logs
func SuppressSoundServerWarnings(suppress bool) {
	mu.Lock()
	defer mu.Unlock()
	suppressNoise = suppress
}

// formatLog creates a formatted log message with timestamp, level and category
func formatLog(level LogLevel, category Category, message string) string {
	levelStr := "INFO"
	prefix := ""

	switch level {
	case LevelDebug:
		levelStr = "DEBUG"
		prefix = colorBlue
	case LevelInfo:
		levelStr = "INFO"
		prefix = colorGreen
	case LevelWarning:
		levelStr = "WARN"
		prefix = colorYellow
	case LevelError:
		levelStr = "ERROR"
		prefix = colorRed
	}

	timestamp := time.Now().Format("2006/01/02 15:04:05")

	if useColors {
		return fmt.Sprintf("%s%s [%s] [%s] %s%s",
			prefix, timestamp, levelStr, category, message, colorReset)
	}

	return fmt.Sprintf("%s [%s] [%s] %s",
		timestamp, levelStr, category, message)
}

// shouldLog determines if a message should be logged based on current level
func shouldLog(level LogLevel) bool {
	mu.Lock()
	defer mu.Unlock()
	return level >= currentLevel
}

// isSuppressedNoiseLine checks for sound-server warnings that are safe to drop
func isSuppressedNoiseLine(message string) bool {
	if !suppressNoise {
		return false
	}

	suppressPatterns := []string{
		"ALSA lib pcm.c",
		"ALSA lib pcm_route.c",
		"ALSA lib pcm_dmix.c",
		"ALSA lib confmisc.c",
		"Cannot connect to server socket",
		"jack server is not running",
		"JackShmReadWritePtr",
	}

	for _, pattern := range suppressPatterns {
		if strings.Contains(message, pattern) {
			return true
		}
	}

	return false
}

// Debug logs at debug level
func Debug(category Category, format string, args ...interface{}) {
	if shouldLog(LevelDebug) {
		message := fmt.Sprintf(format, args...)
		if !isSuppressedNoiseLine(message) {
			log.Println(formatLog(LevelDebug, category, message))
		}
	}
}

// Info logs at info level
func Info(category Category, format string, args ...interface{}) {
	if shouldLog(LevelInfo) {
		message := fmt.Sprintf(format, args...)
		if !isSuppressedNoiseLine(message) {
			log.Println(formatLog(LevelInfo, category, message))
		}
	}
}

// Warning logs at warning level
func Warning(category Category, format string, args ...interface{}) {
	if shouldLog(LevelWarning) {
		message := fmt.Sprintf(format, args...)
		if !isSuppressedNoiseLine(message) {
			log.Println(formatLog(LevelWarning, category, message))
		}
	}
}

// Error logs at error level. Identical consecutive errors are sampled so a
// failing device read cannot flood the log between capture chunks.
func Error(category Category, format string, args ...interface{}) {
	if shouldLog(LevelError) {
		message := fmt.Sprintf(format, args...)

		mu.Lock()
		if message == lastError {
			errorCount++
			if errorCount%5 != 0 {
				mu.Unlock()
				return
			}
			message = fmt.Sprintf("%s (repeated %d times)", message, errorCount)
		} else {
			lastError = message
			errorCount = 1
		}
		mu.Unlock()

		log.Println(formatLog(LevelError, category, message))
	}
}

// Initialize sets up the logger with default settings
func Initialize() {
	log.SetFlags(0)
	log.SetOutput(output)
}

// GetStandardLogWriter returns an io.Writer that can be used with standard Go
// loggers or wired under a subprocess's stderr. Messages written to it are
// logged at the specified level and category.
func GetStandardLogWriter(level LogLevel, category Category) io.Writer {
	return &logWriter{level: level, category: category}
}

type logWriter struct {
	level    LogLevel
	category Category
}

// Write implements io.Writer
func (w *logWriter) Write(p []byte) (n int, err error) {
	if shouldLog(w.level) {
		message := strings.TrimSpace(string(p))
		if message != "" && !isSuppressedNoiseLine(message) {
			log.Println(formatLog(w.level, w.category, message))
		}
	}
	return len(p), nil
}
