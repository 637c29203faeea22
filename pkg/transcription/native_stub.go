//go:build !cgo || !whisper_go

package transcription

// newNativeTranscriber reports that this binary was built without the
// whisper.cpp bindings; callers fall back to the executable backend.
func newNativeTranscriber(Config, string) (Transcriber, error) {
	return nil, ErrNativeUnavailable
}
