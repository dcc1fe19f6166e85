package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/application/events"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// opusSendTimeout bounds a single frame write to the voice connection. A
// stuck gateway send means the connection is gone.
const opusSendTimeout = 5 * time.Second

// localPlayer is the per-guild playback state of the local transport.
type localPlayer struct {
	vc *discordgo.VoiceConnection

	mu      sync.Mutex
	cond    *sync.Cond
	playing bool
	paused  bool
	stopped bool
	reason  domain.TrackEndReason
	cmd     *exec.Cmd
	done    chan struct{}
}

func newLocalPlayer(vc *discordgo.VoiceConnection) *localPlayer {
	p := &localPlayer{vc: vc}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// interrupt asks the streaming goroutine to exit with the given end reason
// and returns its done channel, or nil when nothing is streaming.
func (p *localPlayer) interrupt(reason domain.TrackEndReason) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return nil
	}
	p.stopped = true
	p.reason = reason
	p.cond.Broadcast()
	return p.done
}

// LocalTransport plays audio over the Discord voice gateway directly,
// transcoding the track's stream URL to Ogg/Opus with an ffmpeg child
// process. It carries no seek or equalizer capability.
type LocalTransport struct {
	session *discordgo.Session
	bus     *events.Bus

	ffmpegPath string

	mu      sync.Mutex
	players map[snowflake.ID]*localPlayer
}

// LocalConfig contains the local transcode settings.
type LocalConfig struct {
	FFmpegPath string
}

func NewLocalTransport(session *discordgo.Session, config LocalConfig, bus *events.Bus) *LocalTransport {
	path := config.FFmpegPath
	if path == "" {
		path = "ffmpeg"
	}
	return &LocalTransport{
		session:    session,
		bus:        bus,
		ffmpegPath: path,
		players:    make(map[snowflake.ID]*localPlayer),
	}
}

func (t *LocalTransport) Connect(_ context.Context, guildID, channelID snowflake.ID) error {
	vc, err := t.session.ChannelVoiceJoin(guildID.String(), channelID.String(), false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	t.mu.Lock()
	t.players[guildID] = newLocalPlayer(vc)
	t.mu.Unlock()

	return nil
}

func (t *LocalTransport) Disconnect(_ context.Context, guildID snowflake.ID) error {
	t.mu.Lock()
	player := t.players[guildID]
	delete(t.players, guildID)
	t.mu.Unlock()

	if player == nil {
		return nil
	}

	if done := player.interrupt(domain.TrackEndCleanup); done != nil {
		<-done
	}

	if err := player.vc.Disconnect(); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play transcodes the track's stream URL and feeds Opus frames to the
// voice connection until the stream ends or is interrupted. The volume is
// baked into the ffmpeg filter graph, so it applies from the start of a
// track only.
func (t *LocalTransport) Play(_ context.Context, guildID snowflake.ID, track *domain.Track, volume float64) error {
	player := t.getPlayer(guildID)
	if player == nil {
		return fmt.Errorf("no voice connection for guild %s", guildID)
	}

	if track.StreamURL == "" {
		return fmt.Errorf("track %q has no stream URL", track.Title)
	}

	// Replacing a running track must not advance the queue.
	if done := player.interrupt(domain.TrackEndReplaced); done != nil {
		<-done
	}

	cmd := exec.Command(t.ffmpegPath,
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-i", track.StreamURL,
		"-vn",
		"-af", "volume="+strconv.FormatFloat(volume/100, 'f', 2, 64),
		"-ar", "48000",
		"-ac", "2",
		"-c:a", "libopus",
		"-b:a", "128k",
		"-frame_duration", "20",
		"-f", "ogg",
		"pipe:1",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open ffmpeg pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	player.mu.Lock()
	player.playing = true
	player.paused = false
	player.stopped = false
	player.reason = ""
	player.cmd = cmd
	player.done = make(chan struct{})
	player.mu.Unlock()

	track.AssignedSource = cmd

	go t.stream(player, guildID, track, stdout)

	return nil
}

// stream is the per-track send loop. It owns the ffmpeg process and always
// publishes exactly one track-end event on exit.
func (t *LocalTransport) stream(player *localPlayer, guildID snowflake.ID, track *domain.Track, stdout io.Reader) {
	reason := domain.TrackEndFinished
	reader := newOggPacketReader(stdout)

	if err := player.vc.Speaking(true); err != nil {
		slog.Warn("failed to set speaking state", "guild_id", guildID, "error", err)
	}

	sent := 0
loop:
	for {
		player.mu.Lock()
		for player.paused && !player.stopped {
			player.cond.Wait()
		}
		if player.stopped {
			reason = player.reason
			player.mu.Unlock()
			break loop
		}
		player.mu.Unlock()

		packet, err := reader.NextPacket()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("transcode stream failed", "guild_id", guildID, "track", track.Title, "error", err)
				reason = domain.TrackEndLoadFailed
			} else if sent == 0 {
				// ffmpeg produced nothing; the source is unplayable.
				reason = domain.TrackEndLoadFailed
			}
			break loop
		}
		if isOpusHeaderPacket(packet) {
			continue
		}

		select {
		case player.vc.OpusSend <- packet:
			sent++
		case <-time.After(opusSendTimeout):
			slog.Warn("voice send timed out", "guild_id", guildID)
			reason = domain.TrackEndLoadFailed
			break loop
		}
	}

	if err := player.vc.Speaking(false); err != nil {
		slog.Debug("failed to clear speaking state", "guild_id", guildID, "error", err)
	}

	player.mu.Lock()
	player.playing = false
	player.paused = false
	player.stopped = false
	if player.cmd != nil && player.cmd.Process != nil {
		_ = player.cmd.Process.Kill()
	}
	_ = player.cmd.Wait()
	player.cmd = nil
	done := player.done
	player.mu.Unlock()

	track.AssignedSource = nil
	close(done)

	slog.Debug("track ended", "guild_id", guildID, "track", track.Title, "reason", reason)

	t.bus.PublishTrackEnded(events.TrackEndedEvent{GuildID: guildID, Reason: reason})
}

// Stop interrupts the current track; the send loop publishes the
// completion event.
func (t *LocalTransport) Stop(_ context.Context, guildID snowflake.ID) error {
	player := t.getPlayer(guildID)
	if player == nil {
		return fmt.Errorf("no voice connection for guild %s", guildID)
	}

	player.interrupt(domain.TrackEndStopped)
	return nil
}

func (t *LocalTransport) Pause(_ context.Context, guildID snowflake.ID) error {
	player := t.getPlayer(guildID)
	if player == nil {
		return fmt.Errorf("no voice connection for guild %s", guildID)
	}

	player.mu.Lock()
	player.paused = true
	player.mu.Unlock()

	return nil
}

func (t *LocalTransport) Resume(_ context.Context, guildID snowflake.ID) error {
	player := t.getPlayer(guildID)
	if player == nil {
		return fmt.Errorf("no voice connection for guild %s", guildID)
	}

	player.mu.Lock()
	player.paused = false
	player.cond.Broadcast()
	player.mu.Unlock()

	return nil
}

func (t *LocalTransport) IsPlaying(guildID snowflake.ID) bool {
	player := t.getPlayer(guildID)
	if player == nil {
		return false
	}

	player.mu.Lock()
	defer player.mu.Unlock()
	return player.playing && !player.paused
}

func (t *LocalTransport) IsPaused(guildID snowflake.ID) bool {
	player := t.getPlayer(guildID)
	if player == nil {
		return false
	}

	player.mu.Lock()
	defer player.mu.Unlock()
	return player.playing && player.paused
}

// SetVolume records nothing: the transcode filter graph is fixed once a
// track starts, so the session volume applies from the next track.
func (t *LocalTransport) SetVolume(_ context.Context, _ snowflake.ID, _ float64) error {
	return nil
}

func (t *LocalTransport) getPlayer(guildID snowflake.ID) *localPlayer {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.players[guildID]
}

var _ ports.AudioTransport = (*LocalTransport)(nil)
