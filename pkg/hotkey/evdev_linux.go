//go:build linux

package hotkey

import (
	"context"
	"sync"
	"time"

	"github.com/holoplot/go-evdev"

	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// evdev event values: 0 release, 1 press, 2 auto-repeat.
const (
	evdevRelease = 0
	evdevPress   = 1
)

// EvdevSource reads raw key events straight from /dev/input devices. It
// monitors every keyboard-capable device concurrently, rescans for new
// devices on a fixed interval, and drops a device on read failure.
type EvdevSource struct {
	// ClearKeysOnDisconnect emits synthetic release edges for a lost
	// device's held keys. When false, a key held on an unplugged keyboard
	// stays pressed in the state machine until the process restarts.
	ClearKeysOnDisconnect bool

	rescanInterval time.Duration
}

// NewEvdevSource creates the Linux raw-input source.
func NewEvdevSource(clearKeysOnDisconnect bool) *EvdevSource {
	return &EvdevSource{
		ClearKeysOnDisconnect: clearKeysOnDisconnect,
		rescanInterval:        time.Second,
	}
}

// Name identifies the backend in logs.
func (s *EvdevSource) Name() string { return "evdev" }

// Run scans for keyboards, spawns one reader per device, and keeps rescanning
// so newly plugged keyboards join the monitored set. It returns when ctx is
// done; individual device failures only shrink the set.
func (s *EvdevSource) Run(ctx context.Context, emit func(Event)) error {
	interval := s.rescanInterval
	if interval <= 0 {
		interval = time.Second
	}

	var (
		mu      sync.Mutex
		active  = make(map[string]bool)
		readers sync.WaitGroup
	)

	scan := func() {
		paths, err := evdev.ListDevicePaths()
		if err != nil {
			logger.Debug(logger.CategoryInput, "device scan failed: %v", err)
			return
		}

		for _, p := range paths {
			mu.Lock()
			watching := active[p.Path]
			mu.Unlock()
			if watching {
				continue
			}

			dev, err := evdev.Open(p.Path)
			if err != nil {
				continue
			}
			if !isKeyboard(dev) {
				dev.Close()
				continue
			}

			mu.Lock()
			active[p.Path] = true
			mu.Unlock()

			logger.Info(logger.CategoryInput, "monitoring keyboard %q (%s)", p.Name, p.Path)

			readers.Add(1)
			go func(path string, dev *evdev.InputDevice) {
				defer readers.Done()
				s.watchDevice(ctx, path, dev, emit)
				mu.Lock()
				delete(active, path)
				mu.Unlock()
			}(p.Path, dev)
		}
	}

	scan()
	mu.Lock()
	if len(active) == 0 {
		logger.Warning(logger.CategoryInput, "no accessible keyboards found; will keep scanning (is the user in the input group?)")
	}
	mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			readers.Wait()
			return ctx.Err()
		case <-ticker.C:
			scan()
		}
	}
}

// watchDevice reads one device until ctx is done or the device goes away.
// Only press/release edges are forwarded; auto-repeat (value 2) is dropped
// here so the state machine never sees it.
func (s *EvdevSource) watchDevice(ctx context.Context, path string, dev *evdev.InputDevice, emit func(Event)) {
	var closeOnce sync.Once
	closeDev := func() { closeOnce.Do(func() { dev.Close() }) }
	defer closeDev()

	// ReadOne blocks with no deadline; closing the device unblocks it.
	go func() {
		<-ctx.Done()
		closeDev()
	}()

	held := make(map[uint16]bool)

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warning(logger.CategoryInput, "keyboard %s disappeared: %v", path, err)
			if s.ClearKeysOnDisconnect {
				for code := range held {
					emit(Event{Code: code, Press: false})
				}
			}
			return
		}

		if ev.Type != evdev.EV_KEY {
			continue
		}

		code := uint16(ev.Code)
		switch ev.Value {
		case evdevPress:
			held[code] = true
			emit(Event{Code: code, Press: true})
		case evdevRelease:
			delete(held, code)
			emit(Event{Code: code, Press: false})
		default:
			// auto-repeat
		}
	}
}

// ListKeyboards returns the keyboard-capable devices currently accessible.
// Callers use it to decide whether this backend is viable before running it.
func ListKeyboards() ([]KeyboardInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}

	var out []KeyboardInfo
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		if isKeyboard(dev) {
			out = append(out, KeyboardInfo{Path: p.Path, Name: p.Name})
		}
		dev.Close()
	}
	return out, nil
}

// isKeyboard filters out mice, buttons and other EV_KEY devices that cannot
// type: a keyboard must at least carry the letter A and a shift key.
func isKeyboard(dev *evdev.InputDevice) bool {
	hasKeyType := false
	for _, t := range dev.CapableTypes() {
		if t == evdev.EV_KEY {
			hasKeyType = true
			break
		}
	}
	if !hasKeyType {
		return false
	}

	hasLetter := false
	hasShift := false
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		switch code {
		case evdev.KEY_A:
			hasLetter = true
		case evdev.KEY_LEFTSHIFT:
			hasShift = true
		}
	}
	return hasLetter && hasShift
}
