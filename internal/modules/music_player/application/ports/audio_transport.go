package ports

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// ErrUnsupported is returned by capability methods a backend does not
// implement.
var ErrUnsupported = errors.New("operation not supported by this audio backend")

// AudioTransport is the contract both audio backends implement. The engine
// drives the locally transcoding backend and the relay-node backend through
// this interface and never branches on backend identity.
//
// Stop must cause a track-end event on the module event bus, the same way a
// naturally finishing track does; skip and previous rely on that.
type AudioTransport interface {
	// Connect opens the voice connection for a guild. At most one
	// connection per guild may exist; the engine enforces this.
	Connect(ctx context.Context, guildID, channelID snowflake.ID) error

	// Disconnect tears down the guild's voice connection and player.
	Disconnect(ctx context.Context, guildID snowflake.ID) error

	// Play starts the given track at the given volume.
	Play(ctx context.Context, guildID snowflake.ID, track *domain.Track, volume float64) error

	// Stop ends the current track and fires the completion event.
	Stop(ctx context.Context, guildID snowflake.ID) error

	Pause(ctx context.Context, guildID snowflake.ID) error
	Resume(ctx context.Context, guildID snowflake.ID) error

	IsPlaying(guildID snowflake.ID) bool
	IsPaused(guildID snowflake.ID) bool

	// SetVolume adjusts the live playback volume (0-150, percent).
	SetVolume(ctx context.Context, guildID snowflake.ID, volume float64) error
}

// Seeker is an optional transport capability.
type Seeker interface {
	Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error
}

// EqualizerSetter is an optional transport capability.
type EqualizerSetter interface {
	SetEqualizer(ctx context.Context, guildID snowflake.ID, bands EqualizerBands) error
}
