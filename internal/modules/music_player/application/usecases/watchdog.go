package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/application/events"
)

// Watchdogs are armed, never cancelled. Every timer re-checks the
// condition that armed it when it fires, so a timer made stale by a
// resume, a leave or a listener returning is a no-op. This keeps the
// timer bookkeeping trivial at the cost of the occasional wasted wakeup.

// armInactivityWatchdog schedules an idle check. Armed whenever playback
// can stall: at track start, at pause, and when the queue finishes.
func (e *Engine) armInactivityWatchdog(guildID snowflake.ID) {
	if e.cfg.InactivityTimeout <= 0 {
		return
	}
	e.after(e.cfg.InactivityTimeout, func() {
		e.onInactivityTimer(guildID)
	})
}

func (e *Engine) onInactivityTimer(guildID snowflake.ID) {
	if e.getSession(guildID) == nil {
		return
	}
	if e.transport.IsPlaying(guildID) {
		return
	}

	e.logger(guildID).Info("disconnecting idle session")
	e.forceDisconnect(context.Background(), guildID)
}

// CheckOccupancy is invoked by the presentation layer on every voice state
// change in a guild the bot is connected to. When the channel falls below
// the listener minimum a grace timer is armed; if occupancy has not
// recovered by the time it fires, the session is torn down.
func (e *Engine) CheckOccupancy(guildID snowflake.ID) {
	sess := e.getSession(guildID)
	if sess == nil || e.cfg.InactivityTimeout <= 0 {
		return
	}

	listeners, err := e.voiceState.CountListeners(guildID, sess.voiceChannelID)
	if err != nil {
		e.logger(guildID).Warn("failed to count listeners", "error", err)
		return
	}
	if listeners >= e.cfg.MinimumListeners {
		return
	}

	e.after(e.cfg.InactivityTimeout, func() {
		e.onOccupancyTimer(guildID)
	})
}

func (e *Engine) onOccupancyTimer(guildID snowflake.ID) {
	sess := e.getSession(guildID)
	if sess == nil {
		return
	}

	listeners, err := e.voiceState.CountListeners(guildID, sess.voiceChannelID)
	if err != nil {
		e.logger(guildID).Warn("failed to count listeners", "error", err)
		return
	}
	if listeners >= e.cfg.MinimumListeners {
		return
	}

	e.logger(guildID).Info("disconnecting deserted session", "listeners", listeners)
	e.forceDisconnect(context.Background(), guildID)
}

// forceDisconnect tears a session down on behalf of a watchdog and
// announces it. Removing the registry entry first makes the teardown
// observable at most once even when both watchdogs fire together.
func (e *Engine) forceDisconnect(ctx context.Context, guildID snowflake.ID) {
	e.mu.Lock()
	if _, exists := e.sessions[guildID]; !exists {
		e.mu.Unlock()
		return
	}
	delete(e.sessions, guildID)
	e.mu.Unlock()

	if e.transport.IsPlaying(guildID) || e.transport.IsPaused(guildID) {
		if err := e.transport.Stop(ctx, guildID); err != nil {
			e.logger(guildID).Warn("failed to stop playback on forced disconnect", "error", err)
		}
	}
	if err := e.transport.Disconnect(ctx, guildID); err != nil {
		e.logger(guildID).Warn("failed to disconnect", "error", err)
	}

	e.bus.PublishInactivityDisconnect(events.InactivityDisconnectEvent{GuildID: guildID})
}
