package music_player

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/bot"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/events"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/usecases"
	"github.com/quaverbot/quaver/internal/modules/music_player/infrastructure"
	"github.com/quaverbot/quaver/internal/modules/music_player/presentation"
)

func init() {
	bot.Register(&Module{})
}

// Compile-time interface checks.
var (
	_ bot.Module             = (*Module)(nil)
	_ bot.ConfigurableModule = (*Module)(nil)
)

// Module provides per-guild music playback.
type Module struct {
	config *Config

	bus        *events.Bus
	dispatcher *events.Dispatcher
	engine     *usecases.Engine

	lavalink *infrastructure.LavalinkTransport

	handlers      *presentation.Handlers
	notifications *presentation.Notifications

	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *Module) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *Module) Commands() []*discordgo.ApplicationCommand {
	return presentation.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *Module) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"join":       m.handlers.HandleJoin,
		"leave":      m.handlers.HandleLeave,
		"play":       m.handlers.HandlePlay,
		"pause":      m.handlers.HandlePause,
		"resume":     m.handlers.HandleResume,
		"skip":       m.handlers.HandleSkip,
		"previous":   m.handlers.HandlePrevious,
		"voteskip":   m.handlers.HandleVoteSkip,
		"volume":     m.handlers.HandleVolume,
		"loop":       m.handlers.HandleLoop,
		"queueloop":  m.handlers.HandleQueueLoop,
		"shuffle":    m.handlers.HandleShuffle,
		"autoplay":   m.handlers.HandleAutoplay,
		"nowplaying": m.handlers.HandleNowPlaying,
		"seek":       m.handlers.HandleSeek,
		"equalizer":  m.handlers.HandleEqualizer,
		"queue":      m.handlers.HandleQueue,
	}
}

// EventHandlers returns the Discord event handlers for this module.
func (m *Module) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(_ *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.lavalink.OnVoiceServerUpdate(event)
		},
		func(_ *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.lavalink.OnVoiceStateUpdate(event)
			m.handleOccupancyChange(event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *Module) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init wires the module: bus, transports, resolvers, engine, presentation.
func (m *Module) Init(deps bot.ModuleDependencies) error {
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.bus = events.NewBus(events.DefaultEventBufferSize)
	m.dispatcher = events.NewDispatcher(m.bus)

	// The Lavalink connection is created for both backends; in local mode
	// it only serves track resolution.
	lavalink, err := infrastructure.NewLavalinkTransport(deps.Session, infrastructure.LavalinkConfig{
		Address:  m.config.LavalinkAddress,
		Password: m.config.LavalinkPassword,
	}, m.bus)
	if err != nil {
		return err
	}
	m.lavalink = lavalink

	var transport ports.AudioTransport = lavalink
	if m.config.AudioBackend == BackendLocal {
		transport = infrastructure.NewLocalTransport(deps.Session, infrastructure.LocalConfig{
			FFmpegPath: m.config.FFmpegPath,
		}, m.bus)
	}

	resolver := infrastructure.NewQueryResolver(
		infrastructure.NewSearchResolver(lavalink.Link()),
		infrastructure.NewPlaylistResolver(lavalink.Link()),
	)
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)

	m.engine = usecases.NewEngine(transport, resolver, voiceState, m.bus, usecases.Config{
		DefaultVolume:     m.config.DefaultVolume,
		InactivityTimeout: m.config.InactivityTimeout,
		MinimumListeners:  m.config.MinimumListeners,
		VoteSkipRatio:     m.config.VoteSkipRatio,
	})

	m.notifications = presentation.NewNotifications(deps.Session)
	m.handlers = presentation.NewHandlers(m.engine, m.notifications)

	// Subscriptions before Start so no early event is missed.
	m.engine.Register(m.dispatcher)
	m.notifications.Register(m.dispatcher)
	m.dispatcher.Start(m.ctx)

	slog.Info("music_player module initialized", "backend", m.config.AudioBackend)

	return nil
}

// Shutdown cleans up module resources.
func (m *Module) Shutdown() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.dispatcher != nil {
		m.dispatcher.Stop()
	}
	if m.bus != nil {
		m.bus.Close()
	}
	if m.lavalink != nil {
		m.lavalink.Link().Close()
	}
	return nil
}

// handleOccupancyChange re-checks channel occupancy whenever someone's
// voice state changes in a guild.
func (m *Module) handleOccupancyChange(event *discordgo.VoiceStateUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		return
	}
	m.engine.CheckOccupancy(guildID)
}
