package ports

import (
	"github.com/disgoorg/snowflake/v2"
)

// VoiceStateProvider exposes the Discord voice state the engine needs for
// join-time channel lookup and the occupancy watchdog.
type VoiceStateProvider interface {
	// GetUserVoiceChannel returns the voice channel the user is currently
	// in, or zero if they are not in one.
	GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error)

	// CountListeners returns the number of non-bot occupants of the given
	// voice channel.
	CountListeners(guildID, channelID snowflake.ID) (int, error)
}
