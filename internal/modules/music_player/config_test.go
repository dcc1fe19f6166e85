package music_player

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		AudioBackend:      BackendLavalink,
		LavalinkAddress:   "localhost:2333",
		LavalinkPassword:  "youshallnotpass",
		FFmpegPath:        "ffmpeg",
		DefaultVolume:     50,
		InactivityTimeout: time.Minute,
		MinimumListeners:  1,
		VoteSkipRatio:     0.5,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid lavalink backend",
			mutate: func(*Config) {},
		},
		{
			name:   "valid local backend",
			mutate: func(c *Config) { c.AudioBackend = BackendLocal },
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.AudioBackend = "icecast" },
			wantErr: "unknown audio backend",
		},
		{
			name:    "volume too high",
			mutate:  func(c *Config) { c.DefaultVolume = 151 },
			wantErr: "out of range",
		},
		{
			name:    "negative volume",
			mutate:  func(c *Config) { c.DefaultVolume = -1 },
			wantErr: "out of range",
		},
		{
			name:    "zero vote ratio",
			mutate:  func(c *Config) { c.VoteSkipRatio = 0 },
			wantErr: "vote skip ratio",
		},
		{
			name:    "vote ratio above one",
			mutate:  func(c *Config) { c.VoteSkipRatio = 1.5 },
			wantErr: "vote skip ratio",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("LAVALINK_ADDRESS", "localhost:2333")
	t.Setenv("LAVALINK_PASSWORD", "secret")

	m := &Module{}
	if err := m.LoadConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.config.AudioBackend != BackendLavalink {
		t.Errorf("expected default backend %q, got %q", BackendLavalink, m.config.AudioBackend)
	}
	if m.config.DefaultVolume != 50 {
		t.Errorf("expected default volume 50, got %.0f", m.config.DefaultVolume)
	}
	if m.config.InactivityTimeout != time.Minute {
		t.Errorf("expected default timeout 1m, got %v", m.config.InactivityTimeout)
	}
}

func TestLoadConfig_MissingAddress(t *testing.T) {
	t.Setenv("LAVALINK_ADDRESS", "")
	t.Setenv("LAVALINK_PASSWORD", "secret")

	m := &Module{}
	if err := m.LoadConfig(); err == nil {
		t.Error("expected error for missing relay address, got nil")
	}
}
