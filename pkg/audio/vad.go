package audio

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

// vadFrameMillis is the analysis window. WebRTC VAD accepts 10, 20 or 30 ms.
const vadFrameMillis = 30

// ValidVADRate reports whether voice activity detection can run at the given
// sample rate.
func ValidVADRate(rate int) bool {
	switch rate {
	case 8000, 16000, 32000, 48000:
		return true
	}
	return false
}

// VAD answers whether a finished capture contains any voiced frames. Used as
// an optional pre-check so obviously silent recordings skip transcription.
type VAD struct {
	vad  *webrtcvad.VAD
	rate int
}

// NewVAD creates a detector for the given sample rate. Mode ranges from 0
// (least aggressive) to 3 (most aggressive) and is clamped.
func NewVAD(rate, mode int) (*VAD, error) {
	if !ValidVADRate(rate) {
		return nil, fmt.Errorf("voice detection unsupported at %d Hz", rate)
	}

	v, err := webrtcvad.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create voice detector: %w", err)
	}

	if mode < 0 {
		mode = 0
	}
	if mode > 3 {
		mode = 3
	}
	if err := v.SetMode(mode); err != nil {
		return nil, fmt.Errorf("failed to set voice detector mode: %w", err)
	}

	return &VAD{vad: v, rate: rate}, nil
}

// HasSpeech scans the samples in 30 ms frames and reports whether any frame
// is voiced. A trailing partial frame is ignored.
func (v *VAD) HasSpeech(samples []int16) (bool, error) {
	frame := v.rate * vadFrameMillis / 1000
	if frame <= 0 {
		return false, fmt.Errorf("invalid voice detector frame size for %d Hz", v.rate)
	}

	buf := make([]byte, frame*2)
	for i := 0; i+frame <= len(samples); i += frame {
		for j, s := range samples[i : i+frame] {
			buf[j*2] = byte(s)
			buf[j*2+1] = byte(s >> 8)
		}

		active, err := v.vad.Process(v.rate, buf)
		if err != nil {
			return false, fmt.Errorf("voice detection failed: %w", err)
		}
		if active {
			return true, nil
		}
	}

	return false, nil
}
