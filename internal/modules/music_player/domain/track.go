package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
)

// TrackID is a unique identifier for a track in a session queue.
type TrackID string

// NewTrackID generates a fresh TrackID.
func NewTrackID() TrackID {
	return TrackID(uuid.NewString())
}

// Track represents one playable audio item. The descriptive fields are set
// by a track resolver and never change afterwards; the playback bookkeeping
// fields are mutated only by the engine while this is the active track.
type Track struct {
	ID        TrackID
	Title     string
	Artist    string
	SourceURL string // page the track was resolved from
	StreamURL string // resolved stream location
	Encoded   string // relay-node payload, empty for locally transcoded tracks
	Duration  time.Duration
	IsStream  bool // live/unbounded, Duration is meaningless

	RequesterID snowflake.ID // zero for autoplay-injected tracks
	Autoplayed  bool
	EnqueuedAt  time.Time

	// Playback bookkeeping. AssignedSource is an opaque handle owned by the
	// audio transport while the track is playing.
	StartedAt      time.Time
	LastPausedAt   time.Time
	AssignedSource any
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.Title != "" && (t.StreamURL != "" || t.Encoded != "")
}

// Elapsed reports how much of the track has played at the given instant.
// StartedAt is pushed forward on resume, so pause gaps are already
// accounted for; while paused the clock is frozen at LastPausedAt.
func (t *Track) Elapsed(now time.Time, paused bool) time.Duration {
	if t.StartedAt.IsZero() {
		return 0
	}

	end := now
	if paused && !t.LastPausedAt.IsZero() {
		end = t.LastPausedAt
	}

	elapsed := end.Sub(t.StartedAt)
	if elapsed < 0 {
		return 0
	}
	if !t.IsStream && elapsed > t.Duration {
		return t.Duration
	}
	return elapsed
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t *Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
