package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// Join opens a voice connection to the requesting user's channel and
// registers the session. At most one connection per guild is kept.
func (e *Engine) Join(ctx context.Context, guildID, userID snowflake.ID) (snowflake.ID, error) {
	if e.getSession(guildID) != nil {
		return 0, e.reportError(guildID, ErrAlreadyConnected)
	}

	channelID, err := e.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		return 0, err
	}
	if channelID == 0 {
		return 0, e.reportError(guildID, ErrUserNotConnected)
	}

	if err := e.transport.Connect(ctx, guildID, channelID); err != nil {
		return 0, err
	}

	e.mu.Lock()
	if _, exists := e.sessions[guildID]; exists {
		// A concurrent join won the race; back out our connection.
		e.mu.Unlock()
		_ = e.transport.Disconnect(ctx, guildID)
		return 0, e.reportError(guildID, ErrAlreadyConnected)
	}
	e.sessions[guildID] = &session{guildID: guildID, voiceChannelID: channelID}
	e.mu.Unlock()

	e.logger(guildID).Info("joined voice channel", "channel_id", channelID)

	return channelID, nil
}

// Leave tears a session down. The registry entry is removed before any
// transport call, so once Leave returns no command can observe the session
// and a late completion event from the stopped track finds nothing to
// advance.
func (e *Engine) Leave(ctx context.Context, guildID snowflake.ID) error {
	e.mu.Lock()
	sess := e.sessions[guildID]
	if sess == nil {
		e.mu.Unlock()
		return e.reportError(guildID, ErrNotConnected)
	}
	delete(e.sessions, guildID)
	e.mu.Unlock()

	if e.transport.IsPlaying(guildID) || e.transport.IsPaused(guildID) {
		if err := e.transport.Stop(ctx, guildID); err != nil {
			e.logger(guildID).Warn("failed to stop playback on leave", "error", err)
		}
	}

	if err := e.transport.Disconnect(ctx, guildID); err != nil {
		return err
	}

	e.logger(guildID).Info("left voice channel")

	return nil
}
