package domain

import (
	"math/rand"

	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"
)

// SessionQueue owns the ordered track list, cursor, playback flags and
// history for one session. It implements the "what plays next" algorithm;
// it performs no I/O and knows nothing about transports or resolvers.
//
// The cursor starts at -1; a cursor of -1 or >= Len() both mean "nothing
// currently playing". Methods are not safe for concurrent use; the engine
// serializes access per session.
type SessionQueue struct {
	tracks []*Track
	pos    int

	loopMode LoopMode
	shuffle  bool
	autoplay bool
	volume   float64

	playedHistory  []*Track
	queueLoopStart int
	originalOrder  []*Track
	voteSkips      map[snowflake.ID]struct{}

	// Set by SkipAhead/StepBack so the next advance moves the cursor even
	// in track-loop mode: an explicit skip must not replay the same track.
	skipPending bool

	randIntN func(n int) int
}

// NewSessionQueue creates a queue holding the given tracks, with the cursor
// before the first track. The track slice is copied; later queue mutations
// never touch the caller's slice.
func NewSessionQueue(volume float64, tracks ...*Track) *SessionQueue {
	return &SessionQueue{
		tracks:    append([]*Track(nil), tracks...),
		pos:       -1,
		volume:    volume,
		voteSkips: make(map[snowflake.ID]struct{}),
		randIntN:  rand.Intn,
	}
}

// Len returns the total number of tracks in the queue, played or not.
func (q *SessionQueue) Len() int {
	return len(q.tracks)
}

// IsEmpty returns true if the queue holds no tracks at all.
func (q *SessionQueue) IsEmpty() bool {
	return len(q.tracks) == 0
}

// CurrentIndex returns the cursor position (-1 before anything has played).
func (q *SessionQueue) CurrentIndex() int {
	return q.pos
}

// NowPlaying returns the track at the cursor, or nil if nothing is playing.
func (q *SessionQueue) NowPlaying() *Track {
	if q.pos < 0 || q.pos >= len(q.tracks) {
		return nil
	}
	return q.tracks[q.pos]
}

// Upcoming returns a copy of the tracks after the cursor.
func (q *SessionQueue) Upcoming() []*Track {
	if q.pos+1 >= len(q.tracks) {
		return nil
	}
	upcoming := make([]*Track, len(q.tracks)-q.pos-1)
	copy(upcoming, q.tracks[q.pos+1:])
	return upcoming
}

// History returns a copy of every track that actually started playing, in
// play order. Replays are logged once per start.
func (q *SessionQueue) History() []*Track {
	history := make([]*Track, len(q.playedHistory))
	copy(history, q.playedHistory)
	return history
}

// LastPlayed returns the most recently started track, or nil.
func (q *SessionQueue) LastPlayed() *Track {
	if len(q.playedHistory) == 0 {
		return nil
	}
	return q.playedHistory[len(q.playedHistory)-1]
}

// Append adds tracks to the end of the queue.
func (q *SessionQueue) Append(tracks ...*Track) {
	q.tracks = append(q.tracks, tracks...)
}

// Volume returns the stored session volume.
func (q *SessionQueue) Volume() float64 {
	return q.volume
}

// SetVolume stores the session volume; new tracks inherit it.
func (q *SessionQueue) SetVolume(volume float64) {
	q.volume = volume
}

// LoopMode returns the current loop mode.
func (q *SessionQueue) LoopMode() LoopMode {
	return q.loopMode
}

// Shuffle reports whether shuffle is enabled.
func (q *SessionQueue) Shuffle() bool {
	return q.shuffle
}

// Autoplay reports whether autoplay is enabled.
func (q *SessionQueue) Autoplay() bool {
	return q.autoplay
}

// ToggleLoop toggles track-loop and returns the new state. Enabling it
// clears queue-loop.
func (q *SessionQueue) ToggleLoop() bool {
	if q.loopMode == LoopModeTrack {
		q.loopMode = LoopModeNone
	} else {
		q.loopMode = LoopModeTrack
	}
	return q.loopMode == LoopModeTrack
}

// ToggleQueueLoop toggles queue-loop and returns the new state. Enabling
// captures the wrap start at the current cursor, so re-enabling later
// re-captures the then-current position.
func (q *SessionQueue) ToggleQueueLoop() bool {
	if q.loopMode == LoopModeQueue {
		q.loopMode = LoopModeNone
		return false
	}
	q.loopMode = LoopModeQueue
	q.queueLoopStart = max(q.pos, 0)
	return true
}

// QueueLoopStart returns the cursor value captured when queue-loop was
// last enabled.
func (q *SessionQueue) QueueLoopStart() int {
	return q.queueLoopStart
}

// ToggleShuffle toggles shuffle and returns the new state. Enabling it
// snapshots the current order; the track at the cursor is never moved,
// only the unplayed remainder is ever permuted (at selection time).
func (q *SessionQueue) ToggleShuffle() bool {
	q.shuffle = !q.shuffle
	if q.shuffle {
		q.originalOrder = make([]*Track, len(q.tracks))
		copy(q.originalOrder, q.tracks)
	} else {
		q.originalOrder = nil
	}
	return q.shuffle
}

// ToggleAutoplay toggles autoplay and returns the new state.
func (q *SessionQueue) ToggleAutoplay() bool {
	q.autoplay = !q.autoplay
	return q.autoplay
}

// NextTrack advances the cursor according to the loop mode and returns the
// track to play next.
//
// Queue-loop wraps to the captured start before autoplay is consulted, so
// queue-loop takes precedence when both are enabled. With shuffle on, the
// selection is a uniformly random pick from the unplayed range; tracks
// before the cursor are never reshuffled.
//
// Returns ErrQueueFinished when there is nothing left to play, or
// ErrAutoplayNeeded when the caller should resolve a similar track and
// inject it.
func (q *SessionQueue) NextTrack() (*Track, error) {
	if len(q.tracks) == 0 {
		return nil, ErrQueueFinished
	}

	mode := q.loopMode
	if q.skipPending {
		// An explicit skip bypasses track loop once; queue loop must still
		// wrap when the skip target passes the end.
		if mode == LoopModeTrack {
			mode = LoopModeNone
		}
		q.skipPending = false
	}

	if mode != LoopModeTrack {
		q.pos++
	}

	switch mode {
	case LoopModeTrack:
		if q.pos < 0 || q.pos >= len(q.tracks) {
			return nil, ErrQueueFinished
		}

	case LoopModeQueue:
		if q.pos >= len(q.tracks) {
			q.pos = q.queueLoopStart
		}
		q.pickShuffled()

	default:
		if q.pos >= len(q.tracks) {
			if q.autoplay && len(q.playedHistory) > 0 {
				return nil, ErrAutoplayNeeded
			}
			return nil, ErrQueueFinished
		}
		q.pickShuffled()
	}

	track := q.tracks[q.pos]
	q.commit(track)
	return track, nil
}

// InjectAutoplay appends a resolved similar track, marks it
// autoplay-originated and selects it as now playing.
func (q *SessionQueue) InjectAutoplay(track *Track) *Track {
	track.Autoplayed = true
	track.RequesterID = 0
	q.tracks = append(q.tracks, track)
	q.pos = len(q.tracks) - 1
	q.commit(track)
	return track
}

// pickShuffled swaps a uniformly random unplayed track into the cursor
// position when shuffle is enabled. History before the cursor stays fixed.
func (q *SessionQueue) pickShuffled() {
	remaining := len(q.tracks) - q.pos
	if !q.shuffle || remaining <= 1 {
		return
	}
	j := q.pos + q.randIntN(remaining)
	q.tracks[q.pos], q.tracks[j] = q.tracks[j], q.tracks[q.pos]
}

// commit records a selection: the track is logged to history and the
// vote-skip set is cleared. Clearing happens here, at track start, not at
// skip-request time.
func (q *SessionQueue) commit(track *Track) {
	q.playedHistory = append(q.playedHistory, track)
	q.voteSkips = make(map[snowflake.ID]struct{})
}

// SkipAhead validates and applies a skip of offset tracks, 1 being the
// adjacent next track. On success the cursor is left one short of the
// target so that the next advance selects it; nothing is mutated on error.
func (q *SessionQueue) SkipAhead(offset int) error {
	if offset < 1 {
		return ErrInvalidSkipIndex
	}

	extendable := q.autoplay || q.loopMode == LoopModeQueue
	target := q.pos + offset
	if target >= len(q.tracks) && !extendable {
		return ErrNoSkipTarget
	}
	// Autoplay and queue-loop extend the queue one selection at a time.
	if target > len(q.tracks) {
		target = len(q.tracks)
	}

	q.pos = target - 1
	q.skipPending = true
	return nil
}

// StepBack validates and applies a jump of offset tracks backwards, 1 being
// the track played right before the current one. It returns the tracks
// re-exposed between the target and the old cursor; with excludeAutoplay
// set, autoplay-originated tracks are dropped from the queue instead of
// being replayed, and the step fails when that leaves nothing to replay.
// Nothing is mutated on error.
func (q *SessionQueue) StepBack(offset int, excludeAutoplay bool) ([]*Track, error) {
	if offset < 1 {
		return nil, ErrInvalidPreviousIndex
	}

	target := q.pos - offset
	if target < 0 {
		return nil, ErrInvalidPreviousIndex
	}

	oldPos := q.pos
	reexposed := make([]*Track, oldPos-target)
	copy(reexposed, q.tracks[target:oldPos])

	if excludeAutoplay {
		kept := lo.Filter(reexposed, func(t *Track, _ int) bool {
			return !t.Autoplayed
		})
		// Stripping everything would make the advance replay the current
		// track; there is no previous track to go to.
		if len(kept) == 0 {
			return nil, ErrInvalidPreviousIndex
		}
		if len(kept) != len(reexposed) {
			rebuilt := append([]*Track{}, q.tracks[:target]...)
			rebuilt = append(rebuilt, kept...)
			rebuilt = append(rebuilt, q.tracks[oldPos:]...)
			q.tracks = rebuilt
			reexposed = kept
		}
	}

	q.pos = target - 1
	q.skipPending = true
	return reexposed, nil
}

// Remove deletes the track at an absolute index and returns it. The cursor
// is adjusted so it keeps pointing at the same track when an earlier entry
// is removed.
func (q *SessionQueue) Remove(index int) (*Track, error) {
	if index < 0 || index >= len(q.tracks) {
		return nil, ErrInvalidRemoveIndex
	}

	track := q.tracks[index]
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	if index < q.pos {
		q.pos--
	}
	return track, nil
}

// ClearUpcoming drops every track after the cursor and returns how many
// were removed. The current track is untouched.
func (q *SessionQueue) ClearUpcoming() int {
	if q.pos+1 >= len(q.tracks) {
		return 0
	}
	removed := len(q.tracks) - q.pos - 1
	q.tracks = q.tracks[: q.pos+1 : q.pos+1]
	return removed
}

// AddSkipVote records a vote from the given user and returns the vote
// count together with whether this vote was new. The set resets every time
// a track starts.
func (q *SessionQueue) AddSkipVote(userID snowflake.ID) (int, bool) {
	_, exists := q.voteSkips[userID]
	if !exists {
		q.voteSkips[userID] = struct{}{}
	}
	return len(q.voteSkips), !exists
}

// SkipVotes returns the number of recorded skip votes for the current track.
func (q *SessionQueue) SkipVotes() int {
	return len(q.voteSkips)
}
