package domain

import "errors"

// Queue navigation errors. These are surfaced to the application layer as
// data through the notification channel, never raised across the command
// boundary.
var (
	// ErrQueueFinished signals that the queue has no further track to play.
	ErrQueueFinished = errors.New("queue finished")

	// ErrAutoplayNeeded signals that the queue is exhausted but autoplay is
	// enabled: the caller should resolve a track similar to the last played
	// one and inject it with InjectAutoplay.
	ErrAutoplayNeeded = errors.New("autoplay track needed")

	// ErrInvalidSkipIndex is returned for a skip offset below 1.
	ErrInvalidSkipIndex = errors.New("skip index invalid")

	// ErrNoSkipTarget is returned when there is no track to skip to and
	// neither autoplay nor queue loop can extend the queue.
	ErrNoSkipTarget = errors.New("no track to skip to")

	// ErrInvalidPreviousIndex is returned when a previous offset would move
	// the cursor before the start of the queue.
	ErrInvalidPreviousIndex = errors.New("previous index invalid")

	// ErrInvalidRemoveIndex is returned for an out-of-range remove index.
	ErrInvalidRemoveIndex = errors.New("remove index invalid")
)
