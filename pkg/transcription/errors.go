package transcription

import "errors"

// Sentinel errors for the transcription package.
var (
	// ErrExecutableNotFound indicates that no whisper executable could be
	// found on the system.
	ErrExecutableNotFound = errors.New("whisper executable not found")

	// ErrInvalidExecutablePath indicates that the configured executable
	// path does not exist or is not executable.
	ErrInvalidExecutablePath = errors.New("invalid whisper executable path")

	// ErrModelNotFound indicates that no model file was found in any of
	// the standard locations.
	ErrModelNotFound = errors.New("whisper model not found")

	// ErrTranscriptionFailed indicates that the transcription process
	// failed.
	ErrTranscriptionFailed = errors.New("transcription process failed")

	// ErrNativeUnavailable indicates the binary was built without the
	// whisper.cpp bindings.
	ErrNativeUnavailable = errors.New("native whisper support not built in")
)
