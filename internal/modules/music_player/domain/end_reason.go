package domain

// TrackEndReason describes why the transport stopped delivering a track.
type TrackEndReason string

const (
	// TrackEndFinished means the track played to the end.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the stream could not be loaded or decoded.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped explicitly (skip/previous).
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means another track took over the player.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the player was torn down.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue reports whether this end reason re-enters the advance
// step. Stopped advances because skip and previous are implemented as a
// transport stop; Replaced and Cleanup must not, or teardown would restart
// playback.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed || r == TrackEndStopped
}
