package presentation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/application/events"
)

// Notifications forwards playback events to each guild's notification
// channel: the text channel the last playback command came from.
type Notifications struct {
	session *discordgo.Session

	mu       sync.RWMutex
	channels map[snowflake.ID]snowflake.ID
}

func NewNotifications(session *discordgo.Session) *Notifications {
	return &Notifications{
		session:  session,
		channels: make(map[snowflake.ID]snowflake.ID),
	}
}

// SetChannel binds a guild's notification channel.
func (n *Notifications) SetChannel(guildID, channelID snowflake.ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.channels[guildID] = channelID
}

func (n *Notifications) channel(guildID snowflake.ID) (snowflake.ID, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	channelID, ok := n.channels[guildID]
	return channelID, ok
}

// Register subscribes the notification handlers to the dispatcher.
func (n *Notifications) Register(dispatcher *events.Dispatcher) {
	dispatcher.On(events.EventPlay, func(_ context.Context, event events.Event) {
		started, ok := event.(events.TrackStartedEvent)
		if !ok {
			return
		}
		n.send(started.GuildID, &discordgo.MessageEmbed{
			Author:      &discordgo.MessageEmbedAuthor{Name: "Now Playing"},
			Title:       started.Track.Title,
			URL:         started.Track.SourceURL,
			Description: started.Track.Artist,
		})
	})

	dispatcher.On(events.EventQueueEnd, func(_ context.Context, event events.Event) {
		ended, ok := event.(events.QueueEndedEvent)
		if !ok {
			return
		}
		n.send(ended.GuildID, &discordgo.MessageEmbed{
			Description: "Queue finished.",
		})
	})

	dispatcher.On(events.EventInactivityDisconnect, func(_ context.Context, event events.Event) {
		disconnected, ok := event.(events.InactivityDisconnectEvent)
		if !ok {
			return
		}
		n.send(disconnected.GuildID, &discordgo.MessageEmbed{
			Description: "Left the voice channel due to inactivity.",
		})
	})

	dispatcher.On(events.EventMusicError, func(_ context.Context, event events.Event) {
		failure, ok := event.(events.MusicErrorEvent)
		if !ok {
			return
		}
		n.send(failure.GuildID, &discordgo.MessageEmbed{
			Description: userMessage(failure.Err),
			Color:       colorError,
		})
	})
}

func (n *Notifications) send(guildID snowflake.ID, embed *discordgo.MessageEmbed) {
	channelID, ok := n.channel(guildID)
	if !ok {
		slog.Debug("no notification channel bound", "guild_id", guildID)
		return
	}

	if _, err := n.session.ChannelMessageSendEmbed(channelID.String(), embed); err != nil {
		slog.Warn("failed to send notification",
			"guild_id", guildID,
			"channel_id", channelID,
			"error", err,
		)
	}
}
