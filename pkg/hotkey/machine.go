package hotkey

// Event is one raw key edge from an input source. Auto-repeat events are
// filtered at the source; only genuine press/release edges reach the machine.
type Event struct {
	Code  uint16
	Press bool
}

// Handler receives the derived combo transitions. The recording session
// controller implements it.
type Handler interface {
	OnComboEngaged()
	OnComboDisengaged()
}

// Machine is the single hotkey state machine. All input sources funnel into
// one instance so a press on one keyboard and a release on another see the
// same state. Handle must only be called from one goroutine; the dispatcher
// guarantees that.
type Machine struct {
	combo   *ComboDefinition
	handler Handler

	keys    KeyState
	engaged bool

	// Sampled observability, kept out of the per-event hot path.
	observe      func(keysDown int, engaged bool)
	observeEvery int
	events       int
}

// NewMachine creates a machine for the given combo, delivering transitions
// to handler.
func NewMachine(combo *ComboDefinition, handler Handler) *Machine {
	return &Machine{
		combo:   combo,
		handler: handler,
		keys:    make(KeyState),
	}
}

// SetObserver installs a sampled state observer invoked every nth event.
func (m *Machine) SetObserver(every int, fn func(keysDown int, engaged bool)) {
	if every <= 0 {
		every = 1
	}
	m.observeEvery = every
	m.observe = fn
}

// Handle applies one key edge: update the key state, re-evaluate the combo,
// and fire a transition when the engaged flag flips. A combo period fires
// engaged at most once and disengaged at most once, in strict alternation.
func (m *Machine) Handle(ev Event) {
	m.keys[ev.Code] = ev.Press

	satisfied := m.combo.Satisfied(m.keys)
	switch {
	case satisfied && !m.engaged:
		m.engaged = true
		m.handler.OnComboEngaged()
	case !satisfied && m.engaged:
		m.engaged = false
		m.handler.OnComboDisengaged()
	}

	m.events++
	if m.observe != nil && m.events%m.observeEvery == 0 {
		m.observe(m.keysDown(), m.engaged)
	}
}

// Engaged reports whether the combo is currently held.
func (m *Machine) Engaged() bool {
	return m.engaged
}

func (m *Machine) keysDown() int {
	n := 0
	for _, pressed := range m.keys {
		if pressed {
			n++
		}
	}
	return n
}
