package domain

import (
	"testing"
	"time"
)

func TestTrack_Elapsed(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		track  Track
		now    time.Time
		paused bool
		want   time.Duration
	}{
		{
			name:  "not started",
			track: Track{Duration: 3 * time.Minute},
			now:   base,
			want:  0,
		},
		{
			name:  "mid track",
			track: Track{Duration: 3 * time.Minute, StartedAt: base},
			now:   base.Add(90 * time.Second),
			want:  90 * time.Second,
		},
		{
			name:   "frozen while paused",
			track:  Track{Duration: 3 * time.Minute, StartedAt: base, LastPausedAt: base.Add(30 * time.Second)},
			now:    base.Add(2 * time.Minute),
			paused: true,
			want:   30 * time.Second,
		},
		{
			name:  "capped at duration",
			track: Track{Duration: 3 * time.Minute, StartedAt: base},
			now:   base.Add(10 * time.Minute),
			want:  3 * time.Minute,
		},
		{
			name:  "live stream is uncapped",
			track: Track{IsStream: true, StartedAt: base},
			now:   base.Add(2 * time.Hour),
			want:  2 * time.Hour,
		},
		{
			name:  "clock skew clamps to zero",
			track: Track{Duration: 3 * time.Minute, StartedAt: base},
			now:   base.Add(-time.Second),
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.Elapsed(tt.now, tt.paused); got != tt.want {
				t.Errorf("Elapsed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrack_FormattedDuration(t *testing.T) {
	tests := []struct {
		name  string
		track Track
		want  string
	}{
		{name: "short", track: Track{Duration: 3*time.Minute + 5*time.Second}, want: "03:05"},
		{name: "with hours", track: Track{Duration: time.Hour + 2*time.Minute + 3*time.Second}, want: "01:02:03"},
		{name: "zero", track: Track{}, want: "00:00"},
		{name: "live", track: Track{IsStream: true}, want: "LIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.FormattedDuration(); got != tt.want {
				t.Errorf("FormattedDuration() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrack_IsValid(t *testing.T) {
	valid := Track{Title: "song", StreamURL: "https://example.com/x"}
	if !valid.IsValid() {
		t.Error("expected track with title and stream URL to be valid")
	}

	encodedOnly := Track{Title: "song", Encoded: "abc"}
	if !encodedOnly.IsValid() {
		t.Error("expected track with encoded payload to be valid")
	}

	missingTitle := Track{StreamURL: "https://example.com/x"}
	if missingTitle.IsValid() {
		t.Error("expected track without title to be invalid")
	}

	missingSource := Track{Title: "song"}
	if missingSource.IsValid() {
		t.Error("expected track without any source to be invalid")
	}
}

func TestNewTrackID_Unique(t *testing.T) {
	a := NewTrackID()
	b := NewTrackID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty IDs, got %q and %q", a, b)
	}
}

func TestLoopMode_RoundTrip(t *testing.T) {
	for _, mode := range []LoopMode{LoopModeNone, LoopModeTrack, LoopModeQueue} {
		if got := ParseLoopMode(mode.String()); got != mode {
			t.Errorf("ParseLoopMode(%q) = %v, want %v", mode.String(), got, mode)
		}
	}
	if got := ParseLoopMode("garbage"); got != LoopModeNone {
		t.Errorf("expected unknown mode to parse as none, got %v", got)
	}
}

func TestTrackEndReason_ShouldAdvanceQueue(t *testing.T) {
	advancing := []TrackEndReason{TrackEndFinished, TrackEndLoadFailed, TrackEndStopped}
	for _, reason := range advancing {
		if !reason.ShouldAdvanceQueue() {
			t.Errorf("expected %s to advance the queue", reason)
		}
	}

	holding := []TrackEndReason{TrackEndReplaced, TrackEndCleanup}
	for _, reason := range holding {
		if reason.ShouldAdvanceQueue() {
			t.Errorf("expected %s not to advance the queue", reason)
		}
	}
}
