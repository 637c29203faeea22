package notify

import (
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

const (
	notifyService = "org.freedesktop.Notifications"
	notifyPath    = "/org/freedesktop/Notifications"
	notifyMethod  = "org.freedesktop.Notifications.Notify"

	notifyAppName = "Voice Transcriber"
	notifyIcon    = "audio-input-microphone"
)

// DesktopNotifier shows state changes as desktop notification bubbles over
// the freedesktop notification bus. Each call replaces the previous bubble
// so a session shows one evolving notification instead of a stack.
type DesktopNotifier struct {
	conn *dbus.Conn
	obj  dbus.BusObject

	mu     sync.Mutex
	lastID uint32
}

// NewDesktopNotifier connects to the session bus. An error means no bus is
// reachable (headless session, no DBUS_SESSION_BUS_ADDRESS) and the caller
// should run without desktop notifications.
func NewDesktopNotifier() (*DesktopNotifier, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect to session bus: %w", err)
	}
	return &DesktopNotifier{
		conn: conn,
		obj:  conn.Object(notifyService, dbus.ObjectPath(notifyPath)),
	}, nil
}

// Notify shows or replaces the notification bubble.
func (n *DesktopNotifier) Notify(state State, title, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(stateUrgency(state)),
	}

	call := n.obj.Call(notifyMethod, 0,
		notifyAppName, n.lastID, notifyIcon,
		title, message,
		[]string{}, hints, stateExpireTimeout(state))
	if call.Err != nil {
		logger.Debug(logger.CategoryOutput, "desktop notification failed: %v", call.Err)
		return
	}

	var id uint32
	if err := call.Store(&id); err == nil {
		n.lastID = id
	}
}

// Close disconnects from the bus.
func (n *DesktopNotifier) Close() error {
	return n.conn.Close()
}

// stateUrgency maps states onto freedesktop urgency levels.
func stateUrgency(state State) byte {
	switch state {
	case StateError:
		return 2
	case StateCompleted:
		return 0
	default:
		return 1
	}
}

// stateExpireTimeout returns the bubble lifetime in milliseconds. Recording
// and processing stay up until the next state replaces them.
func stateExpireTimeout(state State) int32 {
	switch state {
	case StateRecording, StateProcessing:
		return 0
	case StateError, StateWarning:
		return 3000
	default:
		return 2000
	}
}
