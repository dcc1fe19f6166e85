package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/application/events"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// Play starts playback of the session queue. A no-op when a track is
// already active, including while paused.
func (e *Engine) Play(ctx context.Context, guildID snowflake.ID) error {
	if _, err := e.checkConnection(guildID, false, true); err != nil {
		return err
	}
	if e.transport.IsPlaying(guildID) || e.transport.IsPaused(guildID) {
		return nil
	}
	return e.advance(ctx, guildID)
}

// advance selects the next track from the queue and hands it to the
// transport. It is the single re-entry point for the playback loop: the
// initial play command, every track-end completion, and skip/previous (via
// the transport stop they issue) all funnel through here. A vanished
// session or queue is tolerated silently, since completions race leaves.
func (e *Engine) advance(ctx context.Context, guildID snowflake.ID) error {
	e.mu.Lock()
	sess := e.sessions[guildID]
	var queue *domain.SessionQueue
	if sess != nil {
		queue = sess.queue
	}
	e.mu.Unlock()

	if queue == nil {
		e.logger(guildID).Debug("completion with no active queue, ignoring")
		return nil
	}

	track, err := queue.NextTrack()
	switch {
	case errors.Is(err, domain.ErrAutoplayNeeded):
		similar, rerr := e.resolver.ResolveSimilar(ctx, queue.LastPlayed())
		if rerr != nil {
			e.logger(guildID).Warn("autoplay resolution failed", "error", rerr)
			e.finishQueue(guildID)
			return nil
		}
		if similar == nil {
			e.finishQueue(guildID)
			return nil
		}
		track = queue.InjectAutoplay(similar)
	case errors.Is(err, domain.ErrQueueFinished):
		e.finishQueue(guildID)
		return nil
	case err != nil:
		return err
	}

	track.StartedAt = e.now()
	track.LastPausedAt = time.Time{}

	if err := e.transport.Play(ctx, guildID, track, queue.Volume()); err != nil {
		return e.reportError(guildID, err)
	}

	e.bus.PublishTrackStarted(events.TrackStartedEvent{GuildID: guildID, Track: track})
	e.armInactivityWatchdog(guildID)

	return nil
}

// handleTrackEnded reacts to transport completion events. Only natural
// ends, load failures and deliberate stops advance the queue; teardown
// events do not.
func (e *Engine) handleTrackEnded(ctx context.Context, event events.TrackEndedEvent) {
	if !event.Reason.ShouldAdvanceQueue() {
		return
	}
	if err := e.advance(ctx, event.GuildID); err != nil {
		e.logger(event.GuildID).Error("failed to advance queue", "reason", event.Reason, "error", err)
	}
}

// Pause pauses the current track, freezing its elapsed time.
func (e *Engine) Pause(ctx context.Context, guildID snowflake.ID) error {
	sess, err := e.checkConnection(guildID, true, false)
	if err != nil {
		return err
	}
	if e.transport.IsPaused(guildID) {
		return e.reportError(guildID, ErrAlreadyPaused)
	}

	if err := e.transport.Pause(ctx, guildID); err != nil {
		return err
	}

	if sess.queue != nil {
		if track := sess.queue.NowPlaying(); track != nil {
			track.LastPausedAt = e.now()
		}
	}

	e.armInactivityWatchdog(guildID)

	return nil
}

// Resume resumes a paused track. The pause gap is folded into StartedAt so
// elapsed time stays continuous.
func (e *Engine) Resume(ctx context.Context, guildID snowflake.ID) error {
	sess, err := e.checkConnection(guildID, true, false)
	if err != nil {
		return err
	}
	if !e.transport.IsPaused(guildID) {
		return e.reportError(guildID, ErrNotPaused)
	}

	if err := e.transport.Resume(ctx, guildID); err != nil {
		return err
	}

	if sess.queue != nil {
		if track := sess.queue.NowPlaying(); track != nil && !track.LastPausedAt.IsZero() {
			track.StartedAt = track.StartedAt.Add(e.now().Sub(track.LastPausedAt))
			track.LastPausedAt = time.Time{}
		}
	}

	return nil
}

// Skip jumps ahead by offset tracks, where 1 (or 0, the default) is the
// track right after the current one. The jump itself happens in the
// completion handler after the transport stop.
func (e *Engine) Skip(ctx context.Context, guildID snowflake.ID, offset int) error {
	sess, err := e.checkConnection(guildID, true, true)
	if err != nil {
		return err
	}
	if offset == 0 {
		offset = 1
	}

	if err := sess.queue.SkipAhead(offset); err != nil {
		return e.reportError(guildID, err)
	}

	return e.transport.Stop(ctx, guildID)
}

// Previous steps back by offset tracks, where 1 (or 0, the default) is the
// track played right before the current one. Returns the tracks that were
// re-exposed to the upcoming list.
func (e *Engine) Previous(ctx context.Context, guildID snowflake.ID, offset int, excludeAutoplay bool) ([]*domain.Track, error) {
	sess, err := e.checkConnection(guildID, true, true)
	if err != nil {
		return nil, err
	}
	if offset == 0 {
		offset = 1
	}

	reexposed, err := sess.queue.StepBack(offset, excludeAutoplay)
	if err != nil {
		return nil, e.reportError(guildID, err)
	}

	if err := e.transport.Stop(ctx, guildID); err != nil {
		return nil, err
	}

	return reexposed, nil
}

// Volume reads or sets the session volume in percent. A nil volume only
// reads. Values are clamped to [0, 150].
func (e *Engine) Volume(ctx context.Context, guildID snowflake.ID, volume *float64) (float64, error) {
	sess, err := e.checkConnection(guildID, true, true)
	if err != nil {
		return 0, err
	}
	if volume == nil {
		return sess.queue.Volume(), nil
	}

	v := *volume
	if v < 0 {
		v = 0
	}
	if v > 150 {
		v = 150
	}

	if err := e.transport.SetVolume(ctx, guildID, v); err != nil {
		return 0, err
	}
	sess.queue.SetVolume(v)

	return v, nil
}

// ToggleLoop toggles track looping and reports the new state.
func (e *Engine) ToggleLoop(guildID snowflake.ID) (bool, error) {
	sess, err := e.checkConnection(guildID, true, true)
	if err != nil {
		return false, err
	}
	return sess.queue.ToggleLoop(), nil
}

// ToggleQueueLoop toggles queue looping and reports the new state.
func (e *Engine) ToggleQueueLoop(guildID snowflake.ID) (bool, error) {
	sess, err := e.checkConnection(guildID, true, true)
	if err != nil {
		return false, err
	}
	return sess.queue.ToggleQueueLoop(), nil
}

// ToggleShuffle toggles shuffled selection and reports the new state.
func (e *Engine) ToggleShuffle(guildID snowflake.ID) (bool, error) {
	sess, err := e.checkConnection(guildID, true, true)
	if err != nil {
		return false, err
	}
	return sess.queue.ToggleShuffle(), nil
}

// ToggleAutoplay toggles autoplay continuation and reports the new state.
func (e *Engine) ToggleAutoplay(guildID snowflake.ID) (bool, error) {
	sess, err := e.checkConnection(guildID, true, true)
	if err != nil {
		return false, err
	}
	return sess.queue.ToggleAutoplay(), nil
}

// NowPlaying returns the current track.
func (e *Engine) NowPlaying(guildID snowflake.ID) (*domain.Track, error) {
	sess, err := e.checkConnection(guildID, false, true)
	if err != nil {
		return nil, err
	}

	track := sess.queue.NowPlaying()
	if track == nil {
		return nil, e.reportError(guildID, ErrNotPlaying)
	}
	// The queue cursor can point at a track the transport already dropped.
	if !e.transport.IsPlaying(guildID) && !e.transport.IsPaused(guildID) {
		return nil, e.reportError(guildID, ErrNotPlaying)
	}
	return track, nil
}

// PlayedDuration returns how far into the current track playback is,
// frozen while paused.
func (e *Engine) PlayedDuration(guildID snowflake.ID) (time.Duration, error) {
	track, err := e.NowPlaying(guildID)
	if err != nil {
		return 0, err
	}
	return track.Elapsed(e.now(), e.transport.IsPaused(guildID)), nil
}

// Seek moves playback of the current track to the given position, when the
// transport supports it.
func (e *Engine) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	if _, err := e.checkConnection(guildID, true, false); err != nil {
		return err
	}

	seeker, ok := e.transport.(ports.Seeker)
	if !ok {
		return e.reportError(guildID, ports.ErrUnsupported)
	}
	if err := seeker.Seek(ctx, guildID, position); err != nil {
		return err
	}

	// Re-anchor elapsed time to the new position.
	if sess := e.getSession(guildID); sess != nil && sess.queue != nil {
		if track := sess.queue.NowPlaying(); track != nil {
			track.StartedAt = e.now().Add(-position)
			if !track.LastPausedAt.IsZero() {
				track.LastPausedAt = e.now()
			}
		}
	}

	return nil
}

// SetEqualizer applies a named equalizer preset, when the transport
// supports it.
func (e *Engine) SetEqualizer(ctx context.Context, guildID snowflake.ID, preset string) error {
	if _, err := e.checkConnection(guildID, true, false); err != nil {
		return err
	}

	setter, ok := e.transport.(ports.EqualizerSetter)
	if !ok {
		return e.reportError(guildID, ports.ErrUnsupported)
	}
	return setter.SetEqualizer(ctx, guildID, ports.EqualizerPreset(preset))
}

// VoteSkip records a skip vote from userID. When the votes reach the
// configured share of the channel's non-bot occupants the current track is
// skipped. Returns the vote count, the threshold, and whether the skip
// fired.
func (e *Engine) VoteSkip(ctx context.Context, guildID, userID snowflake.ID) (votes, needed int, skipped bool, err error) {
	sess, err := e.checkConnection(guildID, true, true)
	if err != nil {
		return 0, 0, false, err
	}

	votes, _ = sess.queue.AddSkipVote(userID)

	listeners, err := e.voiceState.CountListeners(guildID, sess.voiceChannelID)
	if err != nil {
		return votes, 0, false, err
	}
	needed = voteThreshold(e.cfg.VoteSkipRatio, listeners)

	if votes < needed {
		return votes, needed, false, nil
	}

	if err := sess.queue.SkipAhead(1); err != nil {
		return votes, needed, false, e.reportError(guildID, err)
	}
	if err := e.transport.Stop(ctx, guildID); err != nil {
		return votes, needed, false, err
	}
	return votes, needed, true, nil
}

// voteThreshold is the minimum vote count for a listener population, never
// below one.
func voteThreshold(ratio float64, listeners int) int {
	needed := int(ratio * float64(listeners))
	if float64(needed) < ratio*float64(listeners) {
		needed++
	}
	if needed < 1 {
		needed = 1
	}
	return needed
}
