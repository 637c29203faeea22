package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jjamesmartiin/voice-transcriber/pkg/audio"
	"github.com/jjamesmartiin/voice-transcriber/pkg/notify"
)

type fakeStream struct {
	mu      sync.Mutex
	started bool
	stopped bool
	closed  bool
	reads   int
	readErr error
	chunk   []int16
}

func newFakeStream() *fakeStream {
	return &fakeStream{chunk: []int16{1000, -2000, 3000, -1500}}
}

func (s *fakeStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = true
	return nil
}

func (s *fakeStream) ReadChunk() ([]int16, error) {
	s.mu.Lock()
	s.reads++
	err := s.readErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	time.Sleep(time.Millisecond)
	return s.chunk, nil
}

func (s *fakeStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeNegotiator struct {
	stream *fakeStream
	cfg    audio.Config
	err    error
	calls  int
}

func (n *fakeNegotiator) Negotiate(int) (audio.StreamHandle, audio.Config, error) {
	n.calls++
	if n.err != nil {
		return nil, audio.Config{}, n.err
	}
	return n.stream, n.cfg, nil
}

type handoff struct {
	id              string
	samples         int
	closedAtHandoff bool
}

type fakeProcessor struct {
	stream *fakeStream
	calls  chan handoff
}

func newFakeProcessor(stream *fakeStream) *fakeProcessor {
	return &fakeProcessor{stream: stream, calls: make(chan handoff, 4)}
}

func (p *fakeProcessor) Process(id string, buf *audio.SampleBuffer, cfg audio.Config) {
	p.calls <- handoff{id: id, samples: buf.Len(), closedAtHandoff: p.stream.Closed()}
}

type stateRecorder struct {
	mu     sync.Mutex
	states []notify.State
	titles []string
}

func (r *stateRecorder) Notify(state notify.State, title, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, state)
	r.titles = append(r.titles, title)
}

func (r *stateRecorder) Close() error { return nil }

func (r *stateRecorder) snapshot() []notify.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.State(nil), r.states...)
}

func (r *stateRecorder) lastTitle() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.titles) == 0 {
		return ""
	}
	return r.titles[len(r.titles)-1]
}

func testConfig() audio.Config {
	return audio.Config{SampleRate: 16000, ChunkSize: 4, Channels: 1, BitDepth: 16}
}

func waitHandoff(t *testing.T, p *fakeProcessor) handoff {
	t.Helper()
	select {
	case h := <-p.calls:
		return h
	case <-time.After(2 * time.Second):
		t.Fatal("processor was never invoked")
		return handoff{}
	}
}

func TestEngageStartsExactlyOneSession(t *testing.T) {
	stream := newFakeStream()
	neg := &fakeNegotiator{stream: stream, cfg: testConfig()}
	proc := newFakeProcessor(stream)
	rec := &stateRecorder{}
	c := NewController(neg, proc, rec, -1)

	c.OnComboEngaged()
	if !c.Active() {
		t.Fatal("no active session after engage")
	}
	if neg.calls != 1 {
		t.Fatalf("negotiator called %d times, want 1", neg.calls)
	}

	// A duplicate engage must not start a second capture loop.
	c.OnComboEngaged()
	if neg.calls != 1 {
		t.Fatalf("duplicate engage negotiated again (%d calls)", neg.calls)
	}

	states := rec.snapshot()
	if len(states) != 1 || states[0] != notify.StateRecording {
		t.Errorf("notifications = %v, want one recording notification", states)
	}

	c.OnComboDisengaged()
	waitHandoff(t, proc)
}

func TestDisengageJoinsBeforeHandoff(t *testing.T) {
	stream := newFakeStream()
	neg := &fakeNegotiator{stream: stream, cfg: testConfig()}
	proc := newFakeProcessor(stream)
	rec := &stateRecorder{}
	c := NewController(neg, proc, rec, -1)

	c.OnComboEngaged()
	time.Sleep(15 * time.Millisecond)
	c.OnComboDisengaged()

	h := waitHandoff(t, proc)
	if h.samples == 0 {
		t.Error("handed-off buffer is empty despite captured chunks")
	}
	if !h.closedAtHandoff {
		t.Error("stream not closed before the buffer was handed off")
	}
	if c.Active() {
		t.Error("controller still active after disengage")
	}

	states := rec.snapshot()
	want := []notify.State{notify.StateRecording, notify.StateProcessing}
	if len(states) != len(want) || states[0] != want[0] || states[1] != want[1] {
		t.Errorf("notifications = %v, want %v", states, want)
	}
}

func TestDisengageWithoutSessionIsNoop(t *testing.T) {
	stream := newFakeStream()
	proc := newFakeProcessor(stream)
	rec := &stateRecorder{}
	c := NewController(&fakeNegotiator{stream: stream, cfg: testConfig()}, proc, rec, -1)

	c.OnComboDisengaged()

	if len(rec.snapshot()) != 0 {
		t.Error("stray notifications from a no-op disengage")
	}
	select {
	case <-proc.calls:
		t.Error("processor invoked without a session")
	default:
	}
}

func TestNegotiationFailureLeavesNoSession(t *testing.T) {
	stream := newFakeStream()
	neg := &fakeNegotiator{stream: stream, err: audio.ErrNoWorkingConfig}
	proc := newFakeProcessor(stream)
	rec := &stateRecorder{}
	c := NewController(neg, proc, rec, -1)

	c.OnComboEngaged()

	if c.Active() {
		t.Fatal("session created despite negotiation failure")
	}
	states := rec.snapshot()
	if len(states) != 1 || states[0] != notify.StateError {
		t.Errorf("notifications = %v, want one error", states)
	}

	// The next press tries again instead of being wedged.
	c.OnComboEngaged()
	if neg.calls != 2 {
		t.Errorf("negotiator called %d times, want 2", neg.calls)
	}
}

func TestCaptureFailureBeforeAnyChunk(t *testing.T) {
	stream := newFakeStream()
	stream.readErr = errors.New("device unplugged")
	neg := &fakeNegotiator{stream: stream, cfg: testConfig()}
	proc := newFakeProcessor(stream)
	rec := &stateRecorder{}
	c := NewController(neg, proc, rec, -1)

	c.OnComboEngaged()
	// Give the capture goroutine time to hit the read error.
	time.Sleep(20 * time.Millisecond)
	c.OnComboDisengaged()

	select {
	case <-proc.calls:
		t.Error("processor invoked for a capture that read nothing")
	case <-time.After(100 * time.Millisecond):
	}

	if got := rec.lastTitle(); got != "Recording failed" {
		t.Errorf("last notification %q, want capture failure", got)
	}
	if !stream.Closed() {
		t.Error("stream left open after failed capture")
	}
}

func TestTwoFullCycles(t *testing.T) {
	stream := newFakeStream()
	neg := &fakeNegotiator{stream: stream, cfg: testConfig()}
	proc := newFakeProcessor(stream)
	rec := &stateRecorder{}
	c := NewController(neg, proc, rec, -1)

	c.OnComboEngaged()
	time.Sleep(5 * time.Millisecond)
	c.OnComboDisengaged()
	first := waitHandoff(t, proc)

	c.OnComboEngaged()
	time.Sleep(5 * time.Millisecond)
	c.OnComboDisengaged()
	second := waitHandoff(t, proc)

	if first.id == second.id {
		t.Error("both sessions share an id")
	}
	if neg.calls != 2 {
		t.Errorf("negotiator called %d times, want 2", neg.calls)
	}
}

func TestCloseDiscardsActiveSession(t *testing.T) {
	stream := newFakeStream()
	neg := &fakeNegotiator{stream: stream, cfg: testConfig()}
	proc := newFakeProcessor(stream)
	rec := &stateRecorder{}
	c := NewController(neg, proc, rec, -1)

	c.OnComboEngaged()
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if c.Active() {
		t.Error("session survives Close")
	}
	if !stream.Closed() {
		t.Error("stream left open after Close")
	}
	select {
	case <-proc.calls:
		t.Error("shutdown should not process the discarded capture")
	case <-time.After(100 * time.Millisecond):
	}
}
