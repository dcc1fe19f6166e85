package usecases

import (
	"context"

	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// QueueSnapshot is a read-only view of a session queue for display.
type QueueSnapshot struct {
	NowPlaying *domain.Track
	Upcoming   []*domain.Track
	History    []*domain.Track
	LoopMode   domain.LoopMode
	Shuffle    bool
	Autoplay   bool
	Volume     float64
}

// Enqueue resolves a query and appends the resulting tracks to the session
// queue, creating the queue with the configured default volume on first
// use. Returns the appended tracks and the queue position of the first one.
func (e *Engine) Enqueue(ctx context.Context, guildID, requesterID snowflake.ID, query string) ([]*domain.Track, int, error) {
	sess, err := e.checkConnection(guildID, false, false)
	if err != nil {
		return nil, 0, err
	}

	tracks, err := e.resolver.Resolve(ctx, query, requesterID)
	if err != nil {
		return nil, 0, e.reportError(guildID, err)
	}
	if len(tracks) == 0 {
		return nil, 0, e.reportError(guildID, ErrNoResults)
	}

	enqueuedAt := e.now()
	for _, track := range tracks {
		track.EnqueuedAt = enqueuedAt
	}

	e.mu.Lock()
	if sess.queue == nil {
		sess.queue = domain.NewSessionQueue(e.cfg.DefaultVolume)
	}
	queue := sess.queue
	e.mu.Unlock()

	position := queue.Len()
	queue.Append(tracks...)

	e.logger(guildID).Info("enqueued tracks", "count", len(tracks), "position", position)

	return tracks, position, nil
}

// GetQueue returns a display snapshot of the session queue.
func (e *Engine) GetQueue(guildID snowflake.ID) (*QueueSnapshot, error) {
	sess, err := e.checkConnection(guildID, false, true)
	if err != nil {
		return nil, err
	}

	queue := sess.queue
	return &QueueSnapshot{
		NowPlaying: queue.NowPlaying(),
		Upcoming:   queue.Upcoming(),
		History:    queue.History(),
		LoopMode:   queue.LoopMode(),
		Shuffle:    queue.Shuffle(),
		Autoplay:   queue.Autoplay(),
		Volume:     queue.Volume(),
	}, nil
}

// RemoveTrack removes the upcoming track at the given 1-based offset from
// the current track.
func (e *Engine) RemoveTrack(guildID snowflake.ID, offset int) (*domain.Track, error) {
	sess, err := e.checkConnection(guildID, false, true)
	if err != nil {
		return nil, err
	}

	track, rerr := sess.queue.Remove(sess.queue.CurrentIndex() + offset)
	if rerr != nil {
		return nil, e.reportError(guildID, rerr)
	}
	return track, nil
}

// ClearQueue drops every upcoming track, leaving the current one playing.
// Returns how many tracks were dropped.
func (e *Engine) ClearQueue(guildID snowflake.ID) (int, error) {
	sess, err := e.checkConnection(guildID, false, true)
	if err != nil {
		return 0, err
	}
	return sess.queue.ClearUpcoming(), nil
}
