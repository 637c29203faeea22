// Package notify surfaces session state changes to the user through desktop
// notifications, styled terminal output and optional sound cues. Every
// backend is best-effort: a notifier that cannot reach its sink logs the
// problem and moves on rather than disturbing the recording flow.
package notify

import "errors"

// State describes what the session is doing.
type State int

const (
	StateRecording State = iota
	StateProcessing
	StateCompleted
	StateError
	StateWarning
)

// String names the state for logs.
func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateError:
		return "error"
	case StateWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Notifier shows one state change to the user.
type Notifier interface {
	Notify(state State, title, message string)
	Close() error
}

// Multi fans a state change out to several notifiers.
type Multi struct {
	notifiers []Notifier
}

// NewMulti bundles notifiers; nil entries are skipped.
func NewMulti(notifiers ...Notifier) *Multi {
	m := &Multi{}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Notify delivers the state change to every backend.
func (m *Multi) Notify(state State, title, message string) {
	for _, n := range m.notifiers {
		n.Notify(state, title, message)
	}
}

// Close closes every backend and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
