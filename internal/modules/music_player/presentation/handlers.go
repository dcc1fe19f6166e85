package presentation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"

	"github.com/quaverbot/quaver/internal/bot"
	"github.com/quaverbot/quaver/internal/modules/music_player/application/usecases"
	"github.com/quaverbot/quaver/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorError   = 0xE74C3C
)

const queuePageSize = 10

// Handlers holds all the command handlers.
type Handlers struct {
	engine        *usecases.Engine
	notifications *Notifications
}

// NewHandlers creates new Handlers.
func NewHandlers(engine *usecases.Engine, notifications *Notifications) *Handlers {
	return &Handlers{
		engine:        engine,
		notifications: notifications,
	}
}

// interactionIDs extracts the guild and invoking user from an interaction.
func interactionIDs(i *discordgo.InteractionCreate) (guildID, userID snowflake.ID, err error) {
	guildID, err = snowflake.Parse(i.GuildID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid guild ID: %w", err)
	}
	if i.Member == nil || i.Member.User == nil {
		return 0, 0, fmt.Errorf("interaction has no member")
	}
	userID, err = snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid user ID: %w", err)
	}
	return guildID, userID, nil
}

// bindNotificationChannel remembers the interaction's text channel as the
// guild's notification target.
func (h *Handlers) bindNotificationChannel(i *discordgo.InteractionCreate, guildID snowflake.ID) {
	if channelID, err := snowflake.Parse(i.ChannelID); err == nil {
		h.notifications.SetChannel(guildID, channelID)
	}
}

// HandleJoin handles the /join command.
func (h *Handlers) HandleJoin(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, userID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	channelID, err := h.engine.Join(context.Background(), guildID, userID)
	if err != nil {
		return respondError(r, userMessage(err))
	}
	h.bindNotificationChannel(i, guildID)

	return respondSuccess(r, fmt.Sprintf("Joined <#%s>.", channelID))
}

// HandleLeave handles the /leave command.
func (h *Handlers) HandleLeave(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	if err := h.engine.Leave(context.Background(), guildID); err != nil {
		return respondError(r, userMessage(err))
	}

	return respondSuccess(r, "Disconnected.")
}

// HandlePlay handles the /play command: join if needed, enqueue, and start
// playback when the session is idle.
func (h *Handlers) HandlePlay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, userID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	query := stringOption(i, "query")
	if query == "" {
		return respondError(r, "A query is required")
	}

	if _, err := h.engine.Join(ctx, guildID, userID); err != nil &&
		err != usecases.ErrAlreadyConnected {
		return respondError(r, userMessage(err))
	}
	h.bindNotificationChannel(i, guildID)

	tracks, position, err := h.engine.Enqueue(ctx, guildID, userID, query)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	if err := h.engine.Play(ctx, guildID); err != nil {
		return respondError(r, userMessage(err))
	}

	if len(tracks) == 1 {
		return respondSuccess(r, fmt.Sprintf("Added **%s** to the queue (position %d).",
			tracks[0].Title, position+1))
	}
	return respondSuccess(r, fmt.Sprintf("Added **%d tracks** to the queue.", len(tracks)))
}

// HandlePause handles the /pause command.
func (h *Handlers) HandlePause(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	if err := h.engine.Pause(context.Background(), guildID); err != nil {
		return respondError(r, userMessage(err))
	}
	return respondSuccess(r, "Paused.")
}

// HandleResume handles the /resume command.
func (h *Handlers) HandleResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	if err := h.engine.Resume(context.Background(), guildID); err != nil {
		return respondError(r, userMessage(err))
	}
	return respondSuccess(r, "Resumed.")
}

// HandleSkip handles the /skip command.
func (h *Handlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	count := int(integerOption(i, "count"))

	if err := h.engine.Skip(context.Background(), guildID, count); err != nil {
		return respondError(r, userMessage(err))
	}
	return respondSuccess(r, "Skipped.")
}

// HandlePrevious handles the /previous command.
func (h *Handlers) HandlePrevious(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	count := int(integerOption(i, "count"))
	excludeAutoplay := !booleanOption(i, "keep-autoplay")

	reexposed, err := h.engine.Previous(context.Background(), guildID, count, excludeAutoplay)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	if len(reexposed) == 0 {
		return respondSuccess(r, "Going back.")
	}
	titles := lo.Map(reexposed, func(t *domain.Track, _ int) string {
		return "**" + t.Title + "**"
	})
	return respondSuccess(r, "Going back. Requeued: "+strings.Join(titles, ", "))
}

// HandleVoteSkip handles the /voteskip command.
func (h *Handlers) HandleVoteSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, userID, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	votes, needed, skipped, err := h.engine.VoteSkip(context.Background(), guildID, userID)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	if skipped {
		return respondSuccess(r, "Vote passed, skipping.")
	}
	return respondSuccess(r, fmt.Sprintf("Vote recorded (%d/%d).", votes, needed))
}

// HandleVolume handles the /volume command.
func (h *Handlers) HandleVolume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	var level *float64
	if opt := findOption(i, "level"); opt != nil {
		v := float64(opt.IntValue())
		level = &v
	}

	volume, err := h.engine.Volume(context.Background(), guildID, level)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	if level == nil {
		return respondSuccess(r, fmt.Sprintf("Volume is %.0f%%.", volume))
	}
	return respondSuccess(r, fmt.Sprintf("Volume set to %.0f%%.", volume))
}

// HandleLoop handles the /loop command.
func (h *Handlers) HandleLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleToggle(i, r, h.engine.ToggleLoop, "Track loop")
}

// HandleQueueLoop handles the /queueloop command.
func (h *Handlers) HandleQueueLoop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleToggle(i, r, h.engine.ToggleQueueLoop, "Queue loop")
}

// HandleShuffle handles the /shuffle command.
func (h *Handlers) HandleShuffle(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleToggle(i, r, h.engine.ToggleShuffle, "Shuffle")
}

// HandleAutoplay handles the /autoplay command.
func (h *Handlers) HandleAutoplay(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	return h.handleToggle(i, r, h.engine.ToggleAutoplay, "Autoplay")
}

func (h *Handlers) handleToggle(
	i *discordgo.InteractionCreate,
	r bot.Responder,
	toggle func(snowflake.ID) (bool, error),
	label string,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	enabled, err := toggle(guildID)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return respondSuccess(r, fmt.Sprintf("%s %s.", label, state))
}

// HandleNowPlaying handles the /nowplaying command.
func (h *Handlers) HandleNowPlaying(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	track, err := h.engine.NowPlaying(guildID)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	elapsed, err := h.engine.PlayedDuration(guildID)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{nowPlayingEmbed(track, elapsed)},
		},
	})
}

// HandleSeek handles the /seek command.
func (h *Handlers) HandleSeek(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	seconds := integerOption(i, "seconds")
	position := time.Duration(seconds) * time.Second

	if err := h.engine.Seek(context.Background(), guildID, position); err != nil {
		return respondError(r, userMessage(err))
	}
	return respondSuccess(r, fmt.Sprintf("Jumped to %s.", formatDuration(position)))
}

// HandleEqualizer handles the /equalizer command.
func (h *Handlers) HandleEqualizer(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	preset := stringOption(i, "preset")

	if err := h.engine.SetEqualizer(context.Background(), guildID, preset); err != nil {
		return respondError(r, userMessage(err))
	}
	return respondSuccess(r, fmt.Sprintf("Equalizer set to %s.", preset))
}

// HandleQueue handles the /queue command group.
func (h *Handlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, _, err := interactionIDs(i)
	if err != nil {
		return respondError(r, "Invalid interaction")
	}

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return respondError(r, "Missing subcommand")
	}

	sub := options[0]
	switch sub.Name {
	case "list":
		page := 1
		for _, opt := range sub.Options {
			if opt.Name == "page" {
				page = int(opt.IntValue())
			}
		}
		return h.respondQueueList(r, guildID, page)

	case "remove":
		position := 0
		for _, opt := range sub.Options {
			if opt.Name == "position" {
				position = int(opt.IntValue())
			}
		}
		track, err := h.engine.RemoveTrack(guildID, position)
		if err != nil {
			return respondError(r, userMessage(err))
		}
		return respondSuccess(r, fmt.Sprintf("Removed **%s** from the queue.", track.Title))

	case "clear":
		removed, err := h.engine.ClearQueue(guildID)
		if err != nil {
			return respondError(r, userMessage(err))
		}
		return respondSuccess(r, fmt.Sprintf("Cleared %d tracks from the queue.", removed))

	default:
		return respondError(r, "Unknown subcommand")
	}
}

func (h *Handlers) respondQueueList(r bot.Responder, guildID snowflake.ID, page int) error {
	snapshot, err := h.engine.GetQueue(guildID)
	if err != nil {
		return respondError(r, userMessage(err))
	}

	var sb strings.Builder

	if snapshot.NowPlaying != nil {
		fmt.Fprintf(&sb, "**Now playing:** %s (%s)\n\n",
			snapshot.NowPlaying.Title, snapshot.NowPlaying.FormattedDuration())
	}

	upcoming := snapshot.Upcoming
	totalPages := (len(upcoming) + queuePageSize - 1) / queuePageSize
	if totalPages == 0 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * queuePageSize
	end := min(start+queuePageSize, len(upcoming))

	if len(upcoming) == 0 {
		sb.WriteString("The queue is empty.")
	} else {
		for idx, track := range upcoming[start:end] {
			fmt.Fprintf(&sb, "%d. %s (%s)\n", start+idx+1, track.Title, track.FormattedDuration())
		}
	}

	footer := fmt.Sprintf("Page %d/%d • %d upcoming • loop: %s",
		page, totalPages, len(upcoming), snapshot.LoopMode)

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Queue",
					Description: sb.String(),
					Footer:      &discordgo.MessageEmbedFooter{Text: footer},
				},
			},
		},
	})
}

// Option helpers.

func findOption(i *discordgo.InteractionCreate, name string) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == name {
			return opt
		}
	}
	return nil
}

func stringOption(i *discordgo.InteractionCreate, name string) string {
	if opt := findOption(i, name); opt != nil {
		return opt.StringValue()
	}
	return ""
}

func integerOption(i *discordgo.InteractionCreate, name string) int64 {
	if opt := findOption(i, name); opt != nil {
		return opt.IntValue()
	}
	return 0
}

func booleanOption(i *discordgo.InteractionCreate, name string) bool {
	if opt := findOption(i, name); opt != nil {
		return opt.BoolValue()
	}
	return false
}

// Response helpers.

func respondSuccess(r bot.Responder, description string) error {
	return respondEmbed(r, description, colorSuccess)
}

func respondError(r bot.Responder, description string) error {
	return respondEmbed(r, description, colorError)
}

func respondEmbed(r bot.Responder, description string, color int) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: description,
					Color:       color,
				},
			},
		},
	})
}

// userMessage maps an error to something worth showing in a response.
func userMessage(err error) string {
	msg := err.Error()
	if msg == "" {
		return "Something went wrong."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func nowPlayingEmbed(track *domain.Track, elapsed time.Duration) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{Name: "Now Playing"},
		Title:  track.Title,
		URL:    track.SourceURL,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Artist", Value: track.Artist, Inline: true},
		},
	}

	if track.IsStream {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Elapsed", Value: formatDuration(elapsed), Inline: true,
		})
	} else {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Position",
			Value:  formatDuration(elapsed) + " / " + track.FormattedDuration(),
			Inline: true,
		})
	}

	if track.Autoplayed {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Added by autoplay"}
	} else if track.RequesterID != 0 {
		embed.Footer = &discordgo.MessageEmbedFooter{
			Text: "Requested by <@" + track.RequesterID.String() + ">",
		}
	}

	return embed
}

func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
