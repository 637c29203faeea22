//go:build !linux

package hotkey

import (
	"context"
	"errors"
)

var errEvdevUnsupported = errors.New("raw input devices require linux")

// EvdevSource is only functional on Linux; this stub keeps callers portable.
type EvdevSource struct {
	ClearKeysOnDisconnect bool
}

// NewEvdevSource creates the stub source. Its Run always fails; callers
// check ListKeyboards before choosing this backend.
func NewEvdevSource(clearKeysOnDisconnect bool) *EvdevSource {
	return &EvdevSource{ClearKeysOnDisconnect: clearKeysOnDisconnect}
}

func (s *EvdevSource) Name() string { return "evdev" }

func (s *EvdevSource) Run(context.Context, func(Event)) error {
	return errEvdevUnsupported
}

// ListKeyboards reports no devices on platforms without evdev.
func ListKeyboards() ([]KeyboardInfo, error) {
	return nil, errEvdevUnsupported
}
