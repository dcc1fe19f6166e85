package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/application/events"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// voiceConnectTimeout bounds the wait for the gateway voice handshake.
const voiceConnectTimeout = 10 * time.Second

// pendingVoiceConnection tracks a connect waiting for its pair of gateway
// events.
type pendingVoiceConnection struct {
	mu             sync.Mutex
	hasVoiceState  bool
	hasVoiceServer bool
	ready          chan struct{}
}

func (p *pendingVoiceConnection) onEvent(isVoiceState bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isVoiceState {
		p.hasVoiceState = true
	} else {
		p.hasVoiceServer = true
	}

	if p.hasVoiceState && p.hasVoiceServer {
		select {
		case <-p.ready:
		default:
			close(p.ready)
		}
	}
}

// voiceEventBuffer holds the two gateway voice events until both have
// arrived. Forwarding a lone event produces a partial voice state on the
// relay node, so ordering is enforced here.
type voiceEventBuffer struct {
	mu sync.Mutex

	hasVoiceState bool
	channelID     *snowflake.ID
	sessionID     string

	hasVoiceServer bool
	token          string
	endpoint       string
}

func (b *voiceEventBuffer) setVoiceState(channelID *snowflake.ID, sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceState = true
	b.channelID = channelID
	b.sessionID = sessionID

	return b.hasVoiceState && b.hasVoiceServer
}

func (b *voiceEventBuffer) setVoiceServer(token, endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceServer = true
	b.token = token
	b.endpoint = endpoint

	return b.hasVoiceState && b.hasVoiceServer
}

// take returns the buffered data and resets the buffer.
func (b *voiceEventBuffer) take() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channelID = b.channelID
	sessionID = b.sessionID
	token = b.token
	endpoint = b.endpoint

	*b = voiceEventBuffer{}

	return
}

// LavalinkTransport plays audio through a Lavalink relay node via
// DisGoLink. The Discord connection only carries the voice handshake; all
// audio flows from the node.
type LavalinkTransport struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID

	pendingMu sync.Mutex
	pending   map[snowflake.ID]*pendingVoiceConnection

	voiceBufferMu sync.Mutex
	voiceBuffers  map[snowflake.ID]*voiceEventBuffer

	bus *events.Bus
}

// LavalinkConfig contains the relay node connection settings.
type LavalinkConfig struct {
	Address  string
	Password string
}

// NewLavalinkTransport connects to the configured Lavalink node.
func NewLavalinkTransport(
	session *discordgo.Session,
	config LavalinkConfig,
	bus *events.Bus,
) (*LavalinkTransport, error) {
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	transport := &LavalinkTransport{
		session:      session,
		botID:        botID,
		pending:      make(map[snowflake.ID]*pendingVoiceConnection),
		voiceBuffers: make(map[snowflake.ID]*voiceEventBuffer),
		bus:          bus,
	}

	link := disgolink.New(botID,
		disgolink.WithListenerFunc(transport.onTrackStart),
		disgolink.WithListenerFunc(transport.onTrackEnd),
		disgolink.WithListenerFunc(transport.onTrackException),
		disgolink.WithListenerFunc(transport.onTrackStuck),
	)
	transport.link = link

	node, err := link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return transport, nil
}

// Link returns the underlying DisGoLink client, used by the resolvers.
func (t *LavalinkTransport) Link() disgolink.Client {
	return t.link
}

// Connect joins a voice channel and waits until both gateway voice events
// have been forwarded to the node.
func (t *LavalinkTransport) Connect(ctx context.Context, guildID, channelID snowflake.ID) error {
	pending := &pendingVoiceConnection{ready: make(chan struct{})}

	t.pendingMu.Lock()
	t.pending[guildID] = pending
	t.pendingMu.Unlock()

	defer func() {
		t.pendingMu.Lock()
		delete(t.pending, guildID)
		t.pendingMu.Unlock()
	}()

	if err := t.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, false); err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-pending.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectTimeout):
		return fmt.Errorf("timeout waiting for voice connection")
	}
}

// Disconnect destroys the node player and leaves the voice channel.
func (t *LavalinkTransport) Disconnect(ctx context.Context, guildID snowflake.ID) error {
	if player := t.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild_id", guildID, "error", err)
		}
	}

	if err := t.session.ChannelVoiceJoinManual(guildID.String(), "", false, false); err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Play starts the track at the given volume percentage.
func (t *LavalinkTransport) Play(ctx context.Context, guildID snowflake.ID, track *domain.Track, volume float64) error {
	player := t.link.Player(guildID)

	if err := player.Update(ctx,
		lavalink.WithEncodedTrack(track.Encoded),
		lavalink.WithVolume(int(volume)),
		lavalink.WithPaused(false),
	); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	return nil
}

// Stop clears the node player's track, which fires a "stopped" end event.
func (t *LavalinkTransport) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := t.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	return nil
}

func (t *LavalinkTransport) Pause(ctx context.Context, guildID snowflake.ID) error {
	player := t.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}

	return nil
}

func (t *LavalinkTransport) Resume(ctx context.Context, guildID snowflake.ID) error {
	player := t.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}

	return nil
}

func (t *LavalinkTransport) IsPlaying(guildID snowflake.ID) bool {
	player := t.link.ExistingPlayer(guildID)
	return player != nil && player.Track() != nil && !player.Paused()
}

func (t *LavalinkTransport) IsPaused(guildID snowflake.ID) bool {
	player := t.link.ExistingPlayer(guildID)
	return player != nil && player.Track() != nil && player.Paused()
}

// SetVolume adjusts the live player volume, in percent.
func (t *LavalinkTransport) SetVolume(ctx context.Context, guildID snowflake.ID, volume float64) error {
	player := t.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithVolume(int(volume))); err != nil {
		return fmt.Errorf("failed to set volume: %w", err)
	}

	return nil
}

// Seek moves playback of the current track to the given position.
func (t *LavalinkTransport) Seek(ctx context.Context, guildID snowflake.ID, position time.Duration) error {
	player := t.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPosition(lavalink.Duration(position.Milliseconds()))); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}

	return nil
}

// SetEqualizer applies the given band gains through the node's filters.
func (t *LavalinkTransport) SetEqualizer(ctx context.Context, guildID snowflake.ID, bands ports.EqualizerBands) error {
	player := t.link.Player(guildID)

	var eq lavalink.Equalizer
	for i, gain := range bands {
		eq[i] = float32(gain)
	}

	filters := player.Filters()
	filters.Equalizer = &eq

	if err := player.Update(ctx, lavalink.WithFilters(filters)); err != nil {
		return fmt.Errorf("failed to set equalizer: %w", err)
	}

	return nil
}

// OnVoiceServerUpdate forwards gateway voice server updates. Must be wired
// to the Discord session's handler.
func (t *LavalinkTransport) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	buffer := t.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceServer(event.Token, event.Endpoint) {
		t.forwardBufferedVoiceEvents(guildID, buffer)
	}

	t.pendingMu.Lock()
	pending := t.pending[guildID]
	t.pendingMu.Unlock()

	if pending != nil {
		pending.onEvent(false)
	}
}

// OnVoiceStateUpdate forwards gateway voice state updates for the bot
// itself. Must be wired to the Discord session's handler.
func (t *LavalinkTransport) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != t.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, perr := snowflake.Parse(event.ChannelID)
		if perr != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", perr)
			return
		}
		channelID = &id
	}

	// A nil channel means the bot is disconnecting; no server update will
	// follow, so forward immediately.
	if channelID == nil {
		t.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		t.clearVoiceBuffer(guildID)
		return
	}

	buffer := t.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceState(channelID, event.SessionID) {
		t.forwardBufferedVoiceEvents(guildID, buffer)
	}

	t.pendingMu.Lock()
	pending := t.pending[guildID]
	t.pendingMu.Unlock()

	if pending != nil {
		pending.onEvent(true)
	}
}

func (t *LavalinkTransport) getOrCreateVoiceBuffer(guildID snowflake.ID) *voiceEventBuffer {
	t.voiceBufferMu.Lock()
	defer t.voiceBufferMu.Unlock()

	buffer, exists := t.voiceBuffers[guildID]
	if !exists {
		buffer = &voiceEventBuffer{}
		t.voiceBuffers[guildID] = buffer
	}
	return buffer
}

func (t *LavalinkTransport) clearVoiceBuffer(guildID snowflake.ID) {
	t.voiceBufferMu.Lock()
	defer t.voiceBufferMu.Unlock()
	delete(t.voiceBuffers, guildID)
}

func (t *LavalinkTransport) forwardBufferedVoiceEvents(guildID snowflake.ID, buffer *voiceEventBuffer) {
	channelID, sessionID, token, endpoint := buffer.take()

	slog.Debug("forwarding buffered voice events to Lavalink",
		"guild_id", guildID,
		"channel_id", channelID,
	)

	t.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, sessionID)
	t.link.OnVoiceServerUpdate(context.Background(), guildID, token, endpoint)
}

func (t *LavalinkTransport) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild_id", player.GuildID(), "track", event.Track.Info.Title)
}

func (t *LavalinkTransport) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild_id", player.GuildID(), "reason", event.Reason)

	t.bus.PublishTrackEnded(events.TrackEndedEvent{
		GuildID: player.GuildID(),
		Reason:  convertEndReason(event.Reason),
	})
}

func (t *LavalinkTransport) onTrackException(player disgolink.Player, event lavalink.TrackExceptionEvent) {
	slog.Warn("track exception", "guild_id", player.GuildID(), "error", event.Exception.Message)

	t.bus.PublishMusicError(events.MusicErrorEvent{
		GuildID: player.GuildID(),
		Err:     fmt.Errorf("track playback failed: %s", event.Exception.Message),
	})
}

func (t *LavalinkTransport) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild_id", player.GuildID(), "threshold", event.Threshold)
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

// Ensure LavalinkTransport implements the transport capabilities.
var (
	_ ports.AudioTransport  = (*LavalinkTransport)(nil)
	_ ports.Seeker          = (*LavalinkTransport)(nil)
	_ ports.EqualizerSetter = (*LavalinkTransport)(nil)
)
