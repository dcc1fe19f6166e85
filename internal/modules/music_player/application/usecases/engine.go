package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/application/events"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// Config carries the tunables the engine needs at runtime.
type Config struct {
	// DefaultVolume is applied to a session queue when it is first created.
	DefaultVolume float64

	// InactivityTimeout is how long a session may sit without active
	// playback before the bot disconnects. Zero disables the watchdog.
	InactivityTimeout time.Duration

	// MinimumListeners is the number of non-bot occupants the voice
	// channel must retain for the bot to stay connected.
	MinimumListeners int

	// VoteSkipRatio is the share of non-bot occupants whose votes skip
	// the current track.
	VoteSkipRatio float64
}

// session is the per-guild playback state tracked by the engine. The queue
// is nil until the first enqueue and reset to nil when the queue finishes.
type session struct {
	guildID        snowflake.ID
	voiceChannelID snowflake.ID
	queue          *domain.SessionQueue
}

// Engine coordinates per-guild playback sessions. All commands address a
// session by guild ID; a session exists exactly while a voice connection is
// open. Commands validate their preconditions up front, and a failed
// precondition is reported on the notification channel before returning.
type Engine struct {
	mu       sync.Mutex
	sessions map[snowflake.ID]*session

	transport  ports.AudioTransport
	resolver   ports.TrackResolver
	voiceState ports.VoiceStateProvider
	bus        *events.Bus
	cfg        Config

	// Injected for tests.
	now   func() time.Time
	after func(d time.Duration, f func())
}

func NewEngine(
	transport ports.AudioTransport,
	resolver ports.TrackResolver,
	voiceState ports.VoiceStateProvider,
	bus *events.Bus,
	cfg Config,
) *Engine {
	return &Engine{
		sessions:   make(map[snowflake.ID]*session),
		transport:  transport,
		resolver:   resolver,
		voiceState: voiceState,
		bus:        bus,
		cfg:        cfg,
		now:        time.Now,
		after:      func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Register wires the engine's own event subscriptions into the dispatcher.
// Track completion is what drives queue advancement.
func (e *Engine) Register(dispatcher *events.Dispatcher) {
	dispatcher.On(events.EventTrackEnd, func(ctx context.Context, event events.Event) {
		ended, ok := event.(events.TrackEndedEvent)
		if !ok {
			return
		}
		e.handleTrackEnded(ctx, ended)
	})
}

func (e *Engine) getSession(guildID snowflake.ID) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[guildID]
}

// checkConnection validates the shared command preconditions: a session
// must exist, and optionally a track must be active and a queue present.
func (e *Engine) checkConnection(guildID snowflake.ID, requirePlaying, requireQueue bool) (*session, error) {
	sess := e.getSession(guildID)
	if sess == nil {
		return nil, e.reportError(guildID, ErrNotConnected)
	}
	if requirePlaying && !e.transport.IsPlaying(guildID) && !e.transport.IsPaused(guildID) {
		return nil, e.reportError(guildID, ErrNotPlaying)
	}
	if requireQueue && sess.queue == nil {
		return nil, e.reportError(guildID, ErrNoActiveQueue)
	}
	return sess, nil
}

// reportError publishes err as an on_music_error notification and returns
// it unchanged so callers can propagate it as data.
func (e *Engine) reportError(guildID snowflake.ID, err error) error {
	e.bus.PublishMusicError(events.MusicErrorEvent{GuildID: guildID, Err: err})
	return err
}

// finishQueue releases the session queue and announces the queue end. The
// voice connection stays open; the inactivity watchdog decides when to
// leave.
func (e *Engine) finishQueue(guildID snowflake.ID) {
	e.mu.Lock()
	if sess := e.sessions[guildID]; sess != nil {
		sess.queue = nil
	}
	e.mu.Unlock()

	e.bus.PublishQueueEnded(events.QueueEndedEvent{GuildID: guildID})
	e.armInactivityWatchdog(guildID)
}

func (e *Engine) logger(guildID snowflake.ID) *slog.Logger {
	return slog.With("guild_id", guildID)
}
