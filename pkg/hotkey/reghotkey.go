package hotkey

import (
	"context"
	"errors"
	"fmt"

	xhotkey "golang.design/x/hotkey"

	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// ErrNotRegistrable reports a combo the OS hotkey facility cannot express.
var ErrNotRegistrable = errors.New("combo cannot be registered as a system hotkey")

// xhotkeyKeys maps canonical codes to the registration library's key values.
var xhotkeyKeys = map[uint16]xhotkey.Key{
	30: xhotkey.KeyA, 48: xhotkey.KeyB, 46: xhotkey.KeyC, 32: xhotkey.KeyD,
	18: xhotkey.KeyE, 33: xhotkey.KeyF, 34: xhotkey.KeyG, 35: xhotkey.KeyH,
	23: xhotkey.KeyI, 36: xhotkey.KeyJ, 37: xhotkey.KeyK, 38: xhotkey.KeyL,
	50: xhotkey.KeyM, 49: xhotkey.KeyN, 24: xhotkey.KeyO, 25: xhotkey.KeyP,
	16: xhotkey.KeyQ, 19: xhotkey.KeyR, 31: xhotkey.KeyS, 20: xhotkey.KeyT,
	22: xhotkey.KeyU, 47: xhotkey.KeyV, 17: xhotkey.KeyW, 45: xhotkey.KeyX,
	21: xhotkey.KeyY, 44: xhotkey.KeyZ,
	2: xhotkey.Key1, 3: xhotkey.Key2, 4: xhotkey.Key3, 5: xhotkey.Key4,
	6: xhotkey.Key5, 7: xhotkey.Key6, 8: xhotkey.Key7, 9: xhotkey.Key8,
	10: xhotkey.Key9, 11: xhotkey.Key0,
}

// RegisteredSource binds the combo through the OS hotkey registration
// facility. The OS only reports whole-combo down/up transitions, so the
// source synthesizes press and release edges for one representative key per
// group. Registration requires a literal key; modifier-only combos must use
// the evdev or gohook sources instead.
type RegisteredSource struct {
	combo *ComboDefinition
	mods  []xhotkey.Modifier
	key   xhotkey.Key
	codes []uint16
}

// NewRegisteredSource validates that the combo is expressible as a system
// hotkey and prepares the registration parameters.
func NewRegisteredSource(combo *ComboDefinition) (*RegisteredSource, error) {
	s := &RegisteredSource{combo: combo, codes: combo.RepresentativeCodes()}

	haveKey := false
	for _, g := range combo.groups {
		switch g[0] {
		case KeyLeftCtrl:
			s.mods = append(s.mods, xhotkey.ModCtrl)
		case KeyLeftAlt:
			s.mods = append(s.mods, modAlt)
		case KeyLeftShift:
			s.mods = append(s.mods, xhotkey.ModShift)
		default:
			if haveKey {
				return nil, fmt.Errorf("%w: more than one literal key in %s", ErrNotRegistrable, combo)
			}
			key, ok := xhotkeyKeys[g[0]]
			if !ok {
				return nil, fmt.Errorf("%w: no registration mapping for key code %d", ErrNotRegistrable, g[0])
			}
			s.key = key
			haveKey = true
		}
	}

	if !haveKey {
		return nil, fmt.Errorf("%w: modifier-only combo %s needs a literal key", ErrNotRegistrable, combo)
	}
	return s, nil
}

// Name identifies the backend in logs.
func (s *RegisteredSource) Name() string { return "registered-hotkey" }

// Run registers the hotkey and converts its down/up notifications into
// synthetic key edges until ctx is done.
func (s *RegisteredSource) Run(ctx context.Context, emit func(Event)) error {
	hk := xhotkey.New(s.mods, s.key)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register %s: %w", s.combo, err)
	}
	defer hk.Unregister()

	logger.Info(logger.CategoryInput, "registered system hotkey %s", s.combo)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-hk.Keydown():
			for _, code := range s.codes {
				emit(Event{Code: code, Press: true})
			}
		case <-hk.Keyup():
			for i := len(s.codes) - 1; i >= 0; i-- {
				emit(Event{Code: s.codes[i], Press: false})
			}
		}
	}
}
