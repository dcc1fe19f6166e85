package domain

// LoopMode controls how the queue cursor moves when a track completes.
type LoopMode int

const (
	LoopModeNone  LoopMode = iota // advance normally
	LoopModeTrack                 // replay the current track indefinitely
	LoopModeQueue                 // wrap back to the marked start when exhausted
)

// String returns a human-readable representation of the loop mode.
func (m LoopMode) String() string {
	switch m {
	case LoopModeTrack:
		return "track"
	case LoopModeQueue:
		return "queue"
	default:
		return "none"
	}
}

// ParseLoopMode converts a string to a LoopMode.
func ParseLoopMode(s string) LoopMode {
	switch s {
	case "track":
		return LoopModeTrack
	case "queue":
		return LoopModeQueue
	default:
		return LoopModeNone
	}
}
