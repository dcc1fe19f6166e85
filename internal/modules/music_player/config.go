package music_player

import (
	"fmt"
	"time"
)

// Audio backend selectors.
const (
	BackendLavalink = "lavalink"
	BackendLocal    = "local"
)

// Config holds the music player module configuration.
type Config struct {
	// AudioBackend selects how audio reaches Discord: "lavalink" plays
	// through a relay node, "local" transcodes with ffmpeg in-process.
	AudioBackend string `env:"AUDIO_BACKEND" envDefault:"lavalink"`

	// The relay node is always required: it also serves as the track
	// catalog for search and playlist resolution.
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`

	FFmpegPath string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`

	DefaultVolume     float64       `env:"DEFAULT_VOLUME"     envDefault:"50"`
	InactivityTimeout time.Duration `env:"INACTIVITY_TIMEOUT" envDefault:"60s"`
	MinimumListeners  int           `env:"MINIMUM_LISTENERS"  envDefault:"1"`
	VoteSkipRatio     float64       `env:"VOTE_SKIP_RATIO"    envDefault:"0.5"`
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	if c.AudioBackend != BackendLavalink && c.AudioBackend != BackendLocal {
		return fmt.Errorf("unknown audio backend %q", c.AudioBackend)
	}
	if c.DefaultVolume < 0 || c.DefaultVolume > 150 {
		return fmt.Errorf("default volume %.0f out of range [0, 150]", c.DefaultVolume)
	}
	if c.VoteSkipRatio <= 0 || c.VoteSkipRatio > 1 {
		return fmt.Errorf("vote skip ratio %.2f out of range (0, 1]", c.VoteSkipRatio)
	}
	return nil
}
