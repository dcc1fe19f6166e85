package events

import (
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// TrackStartedEvent is published when a track starts playing.
type TrackStartedEvent struct {
	GuildID snowflake.ID
	Track   *domain.Track
}

// TrackEndedEvent is published by the audio transport when a track ends,
// for any reason.
type TrackEndedEvent struct {
	GuildID snowflake.ID
	Reason  domain.TrackEndReason
}

// QueueEndedEvent is published when the advance step finds nothing left to
// play and the session queue is released.
type QueueEndedEvent struct {
	GuildID snowflake.ID
}

// InactivityDisconnectEvent is published when a watchdog force-disconnects
// an idle or deserted session.
type InactivityDisconnectEvent struct {
	GuildID snowflake.ID
}

// MusicErrorEvent carries a failed precondition or queue navigation error.
// Commands never raise these to the caller; they are observed here.
type MusicErrorEvent struct {
	GuildID snowflake.ID
	Err     error
}

// Bus is a channel-based event bus for async event handling. Publishing is
// non-blocking: if a channel buffer is full the event is dropped with a
// warning.
type Bus struct {
	trackStarted         chan TrackStartedEvent
	trackEnded           chan TrackEndedEvent
	queueEnded           chan QueueEndedEvent
	inactivityDisconnect chan InactivityDisconnectEvent
	musicError           chan MusicErrorEvent

	closed bool
	mu     sync.RWMutex
}

// NewBus creates a new Bus with the given buffer size.
func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	return &Bus{
		trackStarted:         make(chan TrackStartedEvent, bufferSize),
		trackEnded:           make(chan TrackEndedEvent, bufferSize),
		queueEnded:           make(chan QueueEndedEvent, bufferSize),
		inactivityDisconnect: make(chan InactivityDisconnectEvent, bufferSize),
		musicError:           make(chan MusicErrorEvent, bufferSize),
	}
}

// PublishTrackStarted publishes a TrackStartedEvent.
func (b *Bus) PublishTrackStarted(event TrackStartedEvent) {
	publish(b, b.trackStarted, event, "TrackStarted")
}

// PublishTrackEnded publishes a TrackEndedEvent.
func (b *Bus) PublishTrackEnded(event TrackEndedEvent) {
	publish(b, b.trackEnded, event, "TrackEnded")
}

// PublishQueueEnded publishes a QueueEndedEvent.
func (b *Bus) PublishQueueEnded(event QueueEndedEvent) {
	publish(b, b.queueEnded, event, "QueueEnded")
}

// PublishInactivityDisconnect publishes an InactivityDisconnectEvent.
func (b *Bus) PublishInactivityDisconnect(event InactivityDisconnectEvent) {
	publish(b, b.inactivityDisconnect, event, "InactivityDisconnect")
}

// PublishMusicError publishes a MusicErrorEvent.
func (b *Bus) PublishMusicError(event MusicErrorEvent) {
	publish(b, b.musicError, event, "MusicError")
}

func publish[E any](b *Bus, ch chan E, event E, name string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", name)
		return
	}

	select {
	case ch <- event:
		slog.Debug("published event", "type", name)
	default:
		slog.Warn("event buffer full, dropping event", "type", name)
	}
}

// TrackStarted returns the channel for TrackStartedEvent.
func (b *Bus) TrackStarted() <-chan TrackStartedEvent {
	return b.trackStarted
}

// TrackEnded returns the channel for TrackEndedEvent.
func (b *Bus) TrackEnded() <-chan TrackEndedEvent {
	return b.trackEnded
}

// QueueEnded returns the channel for QueueEndedEvent.
func (b *Bus) QueueEnded() <-chan QueueEndedEvent {
	return b.queueEnded
}

// InactivityDisconnect returns the channel for InactivityDisconnectEvent.
func (b *Bus) InactivityDisconnect() <-chan InactivityDisconnectEvent {
	return b.inactivityDisconnect
}

// MusicError returns the channel for MusicErrorEvent.
func (b *Bus) MusicError() <-chan MusicErrorEvent {
	return b.musicError
}

// Close closes all event channels. After Close, publishing no longer sends
// events.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true
	close(b.trackStarted)
	close(b.trackEnded)
	close(b.queueEnded)
	close(b.inactivityDisconnect)
	close(b.musicError)

	slog.Debug("event bus closed")
}
