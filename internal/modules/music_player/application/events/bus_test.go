package events

import (
	"errors"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func TestBus_PublishAndReceive(t *testing.T) {
	bus := NewBus(4)
	defer bus.Close()

	bus.PublishTrackStarted(TrackStartedEvent{GuildID: snowflake.ID(1)})
	bus.PublishMusicError(MusicErrorEvent{GuildID: snowflake.ID(1), Err: errors.New("boom")})

	select {
	case event := <-bus.TrackStarted():
		if event.GuildID != snowflake.ID(1) {
			t.Errorf("expected guild 1, got %s", event.GuildID)
		}
	default:
		t.Fatal("expected a TrackStarted event")
	}

	select {
	case event := <-bus.MusicError():
		if event.Err == nil {
			t.Error("expected the error carried through")
		}
	default:
		t.Fatal("expected a MusicError event")
	}
}

func TestBus_DropsWhenFull(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	bus.PublishQueueEnded(QueueEndedEvent{GuildID: snowflake.ID(1)})
	// Buffer is full; this publish must not block.
	bus.PublishQueueEnded(QueueEndedEvent{GuildID: snowflake.ID(2)})

	event := <-bus.QueueEnded()
	if event.GuildID != snowflake.ID(1) {
		t.Errorf("expected the first event kept, got guild %s", event.GuildID)
	}
	select {
	case <-bus.QueueEnded():
		t.Error("expected the second event dropped")
	default:
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewBus(4)
	bus.Close()
	bus.Close() // idempotent

	// Must not panic on the closed channel.
	bus.PublishTrackEnded(TrackEndedEvent{GuildID: snowflake.ID(1)})

	if _, ok := <-bus.TrackEnded(); ok {
		t.Error("expected no event after close")
	}
}

func TestBus_DefaultBufferSize(t *testing.T) {
	bus := NewBus(0)
	defer bus.Close()

	if cap(bus.trackStarted) != DefaultEventBufferSize {
		t.Errorf("expected default buffer %d, got %d", DefaultEventBufferSize, cap(bus.trackStarted))
	}
}
