package events

import (
	"context"
	"log/slog"
	"sync"
)

// Named events applications can subscribe to. Commands never raise these as
// errors to the immediate caller; they arrive here asynchronously.
const (
	EventPlay                 = "on_play"
	EventTrackEnd             = "on_track_end"
	EventQueueEnd             = "on_queue_end"
	EventInactivityDisconnect = "on_inactivity_disconnect"
	EventMusicError           = "on_music_error"
)

// Event is one of the event structs defined in this package.
type Event any

// Handler processes a dispatched event.
type Handler func(ctx context.Context, event Event)

// Dispatcher consumes the bus channels and fans events out to handlers
// subscribed by name. Handlers for one event run sequentially in
// subscription order; distinct event kinds are dispatched concurrently.
type Dispatcher struct {
	bus *Bus

	mu       sync.RWMutex
	handlers map[string][]Handler

	wg   sync.WaitGroup
	done chan struct{}
}

// NewDispatcher creates a Dispatcher draining the given bus.
func NewDispatcher(bus *Bus) *Dispatcher {
	return &Dispatcher{
		bus:      bus,
		handlers: make(map[string][]Handler),
		done:     make(chan struct{}),
	}
}

// On subscribes a handler to a named event. Subscribe before Start; later
// subscriptions are honored but may miss in-flight events.
func (d *Dispatcher) On(name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = append(d.handlers[name], handler)
}

// Start begins draining the bus in background goroutines.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(5)

	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.done:
				return
			case event, ok := <-d.bus.TrackStarted():
				if !ok {
					return
				}
				d.dispatch(ctx, EventPlay, event)
			}
		}
	}()

	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.done:
				return
			case event, ok := <-d.bus.TrackEnded():
				if !ok {
					return
				}
				d.dispatch(ctx, EventTrackEnd, event)
			}
		}
	}()

	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.done:
				return
			case event, ok := <-d.bus.QueueEnded():
				if !ok {
					return
				}
				d.dispatch(ctx, EventQueueEnd, event)
			}
		}
	}()

	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.done:
				return
			case event, ok := <-d.bus.InactivityDisconnect():
				if !ok {
					return
				}
				d.dispatch(ctx, EventInactivityDisconnect, event)
			}
		}
	}()

	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case <-d.done:
				return
			case event, ok := <-d.bus.MusicError():
				if !ok {
					return
				}
				d.dispatch(ctx, EventMusicError, event)
			}
		}
	}()

	slog.Debug("event dispatcher started")
}

// Stop stops the dispatcher and waits for its goroutines to finish.
func (d *Dispatcher) Stop() {
	close(d.done)
	d.wg.Wait()
	slog.Debug("event dispatcher stopped")
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, event Event) {
	d.mu.RLock()
	handlers := d.handlers[name]
	d.mu.RUnlock()

	if len(handlers) == 0 {
		slog.Debug("no handlers for event", "event", name)
		return
	}

	for _, handler := range handlers {
		handler(ctx, event)
	}
}
