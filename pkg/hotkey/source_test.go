package hotkey

import (
	"context"
	"errors"
	"testing"
	"time"
)

type scriptedSource struct {
	name string
	run  func(ctx context.Context, emit func(Event)) error
}

func (s *scriptedSource) Name() string { return s.name }

func (s *scriptedSource) Run(ctx context.Context, emit func(Event)) error {
	return s.run(ctx, emit)
}

type signalHandler struct {
	engaged    chan struct{}
	disengaged chan struct{}
}

func newSignalHandler() *signalHandler {
	return &signalHandler{
		engaged:    make(chan struct{}, 4),
		disengaged: make(chan struct{}, 4),
	}
}

func (h *signalHandler) OnComboEngaged()    { h.engaged <- struct{}{} }
func (h *signalHandler) OnComboDisengaged() { h.disengaged <- struct{}{} }

func waitSignal(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestDispatcherNoSources(t *testing.T) {
	m := NewMachine(altShiftCombo(t), newSignalHandler())
	if err := NewDispatcher(m).Run(context.Background()); !errors.Is(err, ErrNoSources) {
		t.Fatalf("Run = %v, want ErrNoSources", err)
	}
}

func TestDispatcherMergesSourcesIntoOneMachine(t *testing.T) {
	h := newSignalHandler()
	m := NewMachine(altShiftCombo(t), h)

	altDown := make(chan struct{})
	releaseShift := make(chan struct{})

	srcA := &scriptedSource{name: "kbd0", run: func(ctx context.Context, emit func(Event)) error {
		emit(Event{Code: KeyLeftAlt, Press: true})
		close(altDown)
		return blockUntilDone(ctx)
	}}
	srcB := &scriptedSource{name: "kbd1", run: func(ctx context.Context, emit func(Event)) error {
		select {
		case <-altDown:
		case <-ctx.Done():
			return ctx.Err()
		}
		emit(Event{Code: KeyRightShift, Press: true})
		select {
		case <-releaseShift:
		case <-ctx.Done():
			return ctx.Err()
		}
		emit(Event{Code: KeyRightShift, Press: false})
		return blockUntilDone(ctx)
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- NewDispatcher(m, srcA, srcB).Run(ctx) }()

	waitSignal(t, h.engaged, "combo engagement across two sources")
	close(releaseShift)
	waitSignal(t, h.disengaged, "combo disengagement")

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}
}

func TestDispatcherSurvivesSingleSourceFailure(t *testing.T) {
	combo, err := FromSettings(false, false, true, "")
	if err != nil {
		t.Fatalf("FromSettings: %v", err)
	}
	h := newSignalHandler()
	m := NewMachine(combo, h)

	flaky := &scriptedSource{name: "flaky", run: func(ctx context.Context, emit func(Event)) error {
		return errors.New("device unplugged")
	}}

	releaseShift := make(chan struct{})
	steady := &scriptedSource{name: "kbd0", run: func(ctx context.Context, emit func(Event)) error {
		emit(Event{Code: KeyLeftShift, Press: true})
		select {
		case <-releaseShift:
		case <-ctx.Done():
			return ctx.Err()
		}
		emit(Event{Code: KeyLeftShift, Press: false})
		return blockUntilDone(ctx)
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- NewDispatcher(m, flaky, steady).Run(ctx) }()

	waitSignal(t, h.engaged, "engagement from the surviving source")
	close(releaseShift)
	waitSignal(t, h.disengaged, "disengagement from the surviving source")

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop after cancel")
	}
}

func TestDispatcherAllSourcesStopped(t *testing.T) {
	m := NewMachine(altShiftCombo(t), newSignalHandler())

	src := func(name string) EventSource {
		return &scriptedSource{name: name, run: func(ctx context.Context, emit func(Event)) error {
			return errors.New("hook lost")
		}}
	}

	done := make(chan error, 1)
	go func() { done <- NewDispatcher(m, src("a"), src("b")).Run(context.Background()) }()

	select {
	case err := <-done:
		if !errors.Is(err, ErrAllSourcesStopped) {
			t.Fatalf("Run = %v, want ErrAllSourcesStopped", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not stop after every source died")
	}
}
