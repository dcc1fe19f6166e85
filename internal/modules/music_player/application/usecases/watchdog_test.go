package usecases

import (
	"context"
	"testing"

	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

func drainInactivityDisconnects(env *testEnv) int {
	count := 0
	for {
		select {
		case <-env.bus.InactivityDisconnect():
			count++
		default:
			return count
		}
	}
}

func TestWatchdog_ArmedAtTrackStartPauseAndQueueEnd(t *testing.T) {
	env := newTestEnv(t)
	env.startPlayback(t, testTracks(1)...)
	if len(env.timers) != 1 {
		t.Fatalf("expected 1 timer armed at track start, got %d", len(env.timers))
	}

	if err := env.engine.Pause(context.Background(), testGuild); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if len(env.timers) != 2 {
		t.Fatalf("expected another timer armed at pause, got %d", len(env.timers))
	}
	if err := env.engine.Resume(context.Background(), testGuild); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}

	env.completeTrack(domain.TrackEndFinished)
	if len(env.timers) != 3 {
		t.Fatalf("expected a timer armed at queue end, got %d", len(env.timers))
	}
}

func TestWatchdog_StaleTimerIsNoop(t *testing.T) {
	env := newTestEnv(t)
	env.startPlayback(t, testTracks(1)...)

	// The track-start timer fires while playback is still active.
	env.fireTimers()

	if len(env.transport.disconnected) != 0 {
		t.Error("expected no disconnect while playing")
	}
	if env.engine.getSession(testGuild) == nil {
		t.Error("expected the session to survive a stale timer")
	}
}

func TestWatchdog_IdleSessionIsDisconnected(t *testing.T) {
	env := newTestEnv(t)
	env.startPlayback(t, testTracks(1)...)
	env.completeTrack(domain.TrackEndFinished)

	env.fireTimers()

	if len(env.transport.disconnected) != 1 {
		t.Fatalf("expected 1 disconnect, got %d", len(env.transport.disconnected))
	}
	if env.engine.getSession(testGuild) != nil {
		t.Error("expected the session removed")
	}
	if drainInactivityDisconnects(env) != 1 {
		t.Error("expected an InactivityDisconnect event")
	}
}

func TestWatchdog_PausedSessionCountsAsIdle(t *testing.T) {
	env := newTestEnv(t)
	env.startPlayback(t, testTracks(1)...)

	if err := env.engine.Pause(context.Background(), testGuild); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	env.fireTimers()

	if len(env.transport.disconnected) != 1 {
		t.Fatal("expected a paused session to be disconnected on timeout")
	}
}

func TestWatchdog_OccupancyDropArmsGraceTimer(t *testing.T) {
	env := newTestEnv(t)
	env.startPlayback(t, testTracks(1)...)
	armed := len(env.timers)

	env.voiceState.listeners = 0
	env.engine.CheckOccupancy(testGuild)
	if len(env.timers) != armed+1 {
		t.Fatalf("expected a grace timer armed, got %d new", len(env.timers)-armed)
	}

	// Still deserted when the timer fires: disconnect even mid-playback.
	env.fireTimers()
	if len(env.transport.disconnected) != 1 {
		t.Fatal("expected disconnect from a deserted channel")
	}
}

func TestWatchdog_OccupancyRecoveryCancelsTeardown(t *testing.T) {
	env := newTestEnv(t)
	env.startPlayback(t, testTracks(1)...)

	env.voiceState.listeners = 0
	env.engine.CheckOccupancy(testGuild)

	// A listener returns before the grace timer fires.
	env.voiceState.listeners = 2
	env.fireTimers()

	if len(env.transport.disconnected) != 0 {
		t.Error("expected no disconnect after occupancy recovered")
	}
	if env.engine.getSession(testGuild) == nil {
		t.Error("expected the session to survive")
	}
}

func TestWatchdog_OccupancyAboveMinimumArmsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.startPlayback(t, testTracks(1)...)
	armed := len(env.timers)

	env.engine.CheckOccupancy(testGuild)
	if len(env.timers) != armed {
		t.Errorf("expected no timer for a healthy channel, got %d new", len(env.timers)-armed)
	}
}

func TestWatchdog_CheckOccupancyWithoutSession(t *testing.T) {
	env := newTestEnv(t)
	env.engine.CheckOccupancy(snowflake.ID(9999))
	if len(env.timers) != 0 {
		t.Error("expected no timer without a session")
	}
}

func TestWatchdog_ForceDisconnectAtMostOnce(t *testing.T) {
	env := newTestEnv(t)
	env.startPlayback(t, testTracks(1)...)
	env.completeTrack(domain.TrackEndFinished)

	env.voiceState.listeners = 0
	env.engine.CheckOccupancy(testGuild)

	// Both the idle timer and the occupancy timer are pending; only the
	// first to fire tears the session down.
	env.fireTimers()

	if len(env.transport.disconnected) != 1 {
		t.Fatalf("expected exactly 1 disconnect, got %d", len(env.transport.disconnected))
	}
	if drainInactivityDisconnects(env) != 1 {
		t.Error("expected exactly 1 InactivityDisconnect event")
	}
}

func TestWatchdog_DisabledTimeoutArmsNothing(t *testing.T) {
	env := newTestEnv(t)
	env.engine.cfg.InactivityTimeout = 0
	env.startPlayback(t, testTracks(1)...)

	if len(env.timers) != 0 {
		t.Errorf("expected no timers with the watchdog disabled, got %d", len(env.timers))
	}
}
