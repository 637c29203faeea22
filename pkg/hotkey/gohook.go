package hotkey

import (
	"context"
	"errors"
	"runtime"
	"unicode"

	hook "github.com/robotn/gohook"

	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// HookSource adapts the gohook global keyboard hook into an event source.
// It works on X11, macOS and Windows without elevated permissions, at the
// cost of seeing only the hook's merged event stream instead of per-device
// events.
type HookSource struct{}

// NewHookSource creates the portable hook-based source.
func NewHookSource() *HookSource { return &HookSource{} }

// Name identifies the backend in logs.
func (s *HookSource) Name() string { return "gohook" }

// darwinModifierCodes maps macOS virtual keycodes for modifiers to the
// canonical codes.
var darwinModifierCodes = map[uint16]uint16{
	56: KeyLeftShift,
	60: KeyRightShift,
	58: KeyLeftAlt,
	61: KeyRightAlt,
	59: KeyLeftCtrl,
	62: KeyRightCtrl,
}

// windowsModifierCodes maps Win32 virtual-key codes for modifiers to the
// canonical codes, including the generic (side-less) variants.
var windowsModifierCodes = map[uint16]uint16{
	160: KeyLeftShift,
	161: KeyRightShift,
	164: KeyLeftAlt,
	165: KeyRightAlt,
	162: KeyLeftCtrl,
	163: KeyRightCtrl,
	16:  KeyLeftShift,
	18:  KeyLeftAlt,
	17:  KeyLeftCtrl,
}

// Run pumps hook events until ctx is done. gohook reports holds as repeated
// key events, so a held map reduces the stream to clean press/release edges
// before anything reaches the state machine.
func (s *HookSource) Run(ctx context.Context, emit func(Event)) error {
	evChan := hook.Start()
	defer hook.End()

	held := make(map[uint16]bool)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-evChan:
			if !ok {
				return errors.New("hook event channel closed")
			}

			switch ev.Kind {
			case hook.KeyDown, hook.KeyHold:
				code, known := mapHookEvent(ev.Rawcode, ev.Keychar)
				if !known {
					continue
				}
				if held[code] {
					// auto-repeat
					continue
				}
				held[code] = true
				emit(Event{Code: code, Press: true})
			case hook.KeyUp:
				code, known := mapHookEvent(ev.Rawcode, ev.Keychar)
				if !known {
					continue
				}
				if !held[code] {
					continue
				}
				delete(held, code)
				emit(Event{Code: code, Press: false})
			}
		}
	}
}

// mapHookEvent translates a gohook raw code into a canonical key code.
func mapHookEvent(rawcode uint16, keychar rune) (uint16, bool) {
	switch runtime.GOOS {
	case "linux":
		// X11 keycodes are the kernel code plus 8.
		if rawcode >= 8 {
			return rawcode - 8, true
		}
		return 0, false
	case "darwin":
		if code, ok := darwinModifierCodes[rawcode]; ok {
			return code, true
		}
	default:
		if code, ok := windowsModifierCodes[rawcode]; ok {
			return code, true
		}
	}

	if code, ok := letterCodes[unicode.ToLower(keychar)]; ok {
		return code, true
	}

	logger.Debug(logger.CategoryInput, "unmapped key event rawcode=%d keychar=%q", rawcode, keychar)
	return 0, false
}
