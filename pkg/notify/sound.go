package notify

import (
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

const (
	cueRate     = 16000
	cueDuration = 0.12
	cueVolume   = 0.35
)

// cueFreqs assigns a blip pitch per state. States without an entry stay
// silent.
var cueFreqs = map[State]float64{
	StateRecording: 880,
	StateCompleted: 660,
	StateError:     220,
}

// SoundNotifier plays short generated blips for the main state changes.
// Cue files are synthesized once into a temp directory and played through
// whichever command line audio player the system has.
type SoundNotifier struct {
	player string
	dir    string
}

// NewSoundNotifier resolves an audio player. An error means the system has
// none of the known players and sound cues should stay off.
func NewSoundNotifier() (*SoundNotifier, error) {
	player, err := findPlayer()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(os.TempDir(), "voice-transcriber-cues")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cue directory: %w", err)
	}

	return &SoundNotifier{player: player, dir: dir}, nil
}

// findPlayer picks the first available WAV-capable player.
func findPlayer() (string, error) {
	for _, name := range []string{"paplay", "aplay", "play"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no audio player found (tried paplay, aplay, play)")
}

// playerArgs adapts flags to the resolved player.
func playerArgs(player, cuePath string) []string {
	switch filepath.Base(player) {
	case "aplay", "play":
		return []string{"-q", cuePath}
	default:
		return []string{cuePath}
	}
}

// Notify plays the cue for the state, fire and forget.
func (n *SoundNotifier) Notify(state State, title, message string) {
	if _, ok := cueFreqs[state]; !ok {
		return
	}

	path, err := n.cuePath(state)
	if err != nil {
		logger.Debug(logger.CategoryOutput, "sound cue unavailable: %v", err)
		return
	}

	cmd := exec.Command(n.player, playerArgs(n.player, path)...)
	if err := cmd.Start(); err != nil {
		logger.Debug(logger.CategoryOutput, "sound cue playback failed: %v", err)
		return
	}
	go cmd.Wait()
}

// Close implements Notifier. Cue files stay cached for the next run.
func (n *SoundNotifier) Close() error {
	return nil
}

// cuePath returns the cue file for a state, synthesizing it on first use.
func (n *SoundNotifier) cuePath(state State) (string, error) {
	path := filepath.Join(n.dir, fmt.Sprintf("cue-%s.wav", state))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	samples := synthesizeCue(cueFreqs[state])
	if err := audio.WriteWAV(path, samples, cueRate, 1); err != nil {
		return "", err
	}
	return path, nil
}

// synthesizeCue renders a short sine blip with a linear fade out so it ends
// without a click.
func synthesizeCue(freq float64) []int16 {
	count := int(cueDuration * cueRate)
	samples := make([]int16, count)
	for i := range samples {
		t := float64(i) / cueRate
		fade := 1.0 - float64(i)/float64(count)
		v := math.Sin(2*math.Pi*freq*t) * cueVolume * fade
		samples[i] = int16(v * 32767)
	}
	return samples
}
