package usecases

import "errors"

// Precondition errors for engine commands. They are published on the
// notification channel as on_music_error events and also returned to the
// caller as data; the command performs no side effect when one applies.
var (
	// ErrNotConnected is reported when a command requires an open voice
	// connection for the session.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrAlreadyConnected is reported when join is called for a session
	// that already has a voice connection.
	ErrAlreadyConnected = errors.New("already connected to a voice channel")

	// ErrUserNotConnected is reported when the requesting user has no
	// voice channel to join.
	ErrUserNotConnected = errors.New("user is not connected to a voice channel")

	// ErrNotPlaying is reported when a command requires an active track.
	ErrNotPlaying = errors.New("nothing is currently playing")

	// ErrAlreadyPaused is reported when pausing an already paused session.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrNotPaused is reported when resuming a session that is not paused.
	ErrNotPaused = errors.New("playback is not paused")

	// ErrNoActiveQueue is reported when a command requires a session queue
	// and none exists.
	ErrNoActiveQueue = errors.New("no active queue for this session")

	// ErrNoResults is reported when a resolver returned nothing for a query.
	ErrNoResults = errors.New("no results found")
)
