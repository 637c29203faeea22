package hotkey

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jjamesmartiin/voice-transcriber/pkg/logger"
)

// EventSource delivers raw key edges from one input backend. Run blocks
// until ctx is done or the backend fails, forwarding every edge to emit.
// Sources must filter auto-repeat events before emitting; emit is safe to
// call from any goroutine the source spawns.
type EventSource interface {
	Name() string
	Run(ctx context.Context, emit func(Event)) error
}

// KeyboardInfo describes one detected keyboard-capable input device.
type KeyboardInfo struct {
	Path string
	Name string
}

// Dispatcher errors.
var (
	ErrNoSources         = errors.New("no input sources configured")
	ErrAllSourcesStopped = errors.New("all input sources stopped")
)

// Dispatcher funnels every source's events through one channel into a single
// state machine, so the machine only ever runs on the dispatch goroutine.
type Dispatcher struct {
	machine *Machine
	sources []EventSource
}

// NewDispatcher wires sources to one machine.
func NewDispatcher(machine *Machine, sources ...EventSource) *Dispatcher {
	return &Dispatcher{machine: machine, sources: sources}
}

// Run blocks until ctx is canceled or every source has died. A single source
// failing is logged and tolerated; the machine keeps running on whatever
// sources remain, with their keys left at the last reported state.
func (d *Dispatcher) Run(ctx context.Context) error {
	if len(d.sources) == 0 {
		return ErrNoSources
	}

	events := make(chan Event, 64)
	emit := func(ev Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	remaining := int32(len(d.sources))
	for _, src := range d.sources {
		src := src
		g.Go(func() error {
			err := src.Run(gctx, emit)
			if err != nil && gctx.Err() == nil {
				logger.Warning(logger.CategoryInput, "input source %s stopped: %v", src.Name(), err)
			}
			if atomic.AddInt32(&remaining, -1) == 0 && gctx.Err() == nil {
				return ErrAllSourcesStopped
			}
			return nil
		})
	}

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case ev := <-events:
				d.machine.Handle(ev)
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
