package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// eventRecorder collects dispatched events across goroutines.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) handler(_ context.Context, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) wait(t *testing.T, n int) []Event {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		count := len(r.events)
		r.mu.Unlock()
		if count >= n {
			break
		}
		time.Sleep(time.Millisecond)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) < n {
		t.Fatalf("expected %d events, got %d", n, len(r.events))
	}
	return append([]Event{}, r.events...)
}

func TestDispatcher_FansOutByName(t *testing.T) {
	bus := NewBus(8)
	dispatcher := NewDispatcher(bus)

	started := &eventRecorder{}
	ended := &eventRecorder{}
	dispatcher.On(EventPlay, started.handler)
	dispatcher.On(EventTrackEnd, ended.handler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	bus.PublishTrackStarted(TrackStartedEvent{GuildID: snowflake.ID(1)})
	bus.PublishTrackEnded(TrackEndedEvent{GuildID: snowflake.ID(1)})

	events := started.wait(t, 1)
	if _, ok := events[0].(TrackStartedEvent); !ok {
		t.Errorf("expected TrackStartedEvent, got %T", events[0])
	}
	events = ended.wait(t, 1)
	if _, ok := events[0].(TrackEndedEvent); !ok {
		t.Errorf("expected TrackEndedEvent, got %T", events[0])
	}
}

func TestDispatcher_MultipleHandlersRunInOrder(t *testing.T) {
	bus := NewBus(8)
	dispatcher := NewDispatcher(bus)

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})
	dispatcher.On(EventQueueEnd, func(_ context.Context, _ Event) {
		mu.Lock()
		order = append(order, 1)
		mu.Unlock()
	})
	dispatcher.On(EventQueueEnd, func(_ context.Context, _ Event) {
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
		close(done)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	bus.PublishQueueEnded(QueueEndedEvent{GuildID: snowflake.ID(1)})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handlers did not run")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("expected handlers in subscription order, got %v", order)
	}
}

func TestDispatcher_StopWaitsForWorkers(t *testing.T) {
	bus := NewBus(8)
	dispatcher := NewDispatcher(bus)

	dispatcher.Start(context.Background())
	dispatcher.Stop()

	// Publishing after Stop reaches nobody but must not block or panic.
	bus.PublishMusicError(MusicErrorEvent{GuildID: snowflake.ID(1)})
}

func TestDispatcher_StopsOnContextCancel(t *testing.T) {
	bus := NewBus(8)
	dispatcher := NewDispatcher(bus)

	recorder := &eventRecorder{}
	dispatcher.On(EventInactivityDisconnect, recorder.handler)

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher.Start(ctx)
	cancel()

	dispatcher.wg.Wait()

	bus.PublishInactivityDisconnect(InactivityDisconnectEvent{GuildID: snowflake.ID(1)})
	time.Sleep(10 * time.Millisecond)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.events) != 0 {
		t.Errorf("expected no dispatch after cancel, got %d", len(recorder.events))
	}
}
