package presentation

import "github.com/bwmarrin/discordgo"

// Commands returns all slash commands for the music player module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "join",
			Description: "Join your voice channel",
		},
		{
			Name:        "leave",
			Description: "Leave the voice channel",
		},
		{
			Name:        "play",
			Description: "Play a track from URL or search",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "URL, playlist URL or search term",
					Required:    true,
				},
			},
		},
		{
			Name:        "pause",
			Description: "Pause playback",
		},
		{
			Name:        "resume",
			Description: "Resume playback",
		},
		{
			Name:        "skip",
			Description: "Skip ahead in the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "How many tracks to skip (defaults to 1)",
					Required:    false,
					MinValue:    floatPtr(1),
				},
			},
		},
		{
			Name:        "previous",
			Description: "Play a previously played track again",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "How many tracks to go back (defaults to 1)",
					Required:    false,
					MinValue:    floatPtr(1),
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "keep-autoplay",
					Description: "Also replay autoplay-inserted tracks",
					Required:    false,
				},
			},
		},
		{
			Name:        "voteskip",
			Description: "Vote to skip the current track",
		},
		{
			Name:        "volume",
			Description: "Show or set the playback volume",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "level",
					Description: "Volume in percent (0-150, omit to show)",
					Required:    false,
					MinValue:    floatPtr(0),
					MaxValue:    150,
				},
			},
		},
		{
			Name:        "loop",
			Description: "Toggle looping of the current track",
		},
		{
			Name:        "queueloop",
			Description: "Toggle looping of the whole queue",
		},
		{
			Name:        "shuffle",
			Description: "Toggle shuffled playback",
		},
		{
			Name:        "autoplay",
			Description: "Toggle autoplay continuation when the queue runs out",
		},
		{
			Name:        "nowplaying",
			Description: "Show the current track",
		},
		{
			Name:        "seek",
			Description: "Jump to a position in the current track",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "seconds",
					Description: "Position in seconds",
					Required:    true,
					MinValue:    floatPtr(0),
				},
			},
		},
		{
			Name:        "equalizer",
			Description: "Apply an equalizer preset",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "preset",
					Description: "Preset to apply",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Flat", Value: "flat"},
						{Name: "Boost", Value: "boost"},
						{Name: "Metal", Value: "metal"},
						{Name: "Piano", Value: "piano"},
					},
				},
			},
		},
		{
			Name:        "queue",
			Description: "Manage the queue",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "list",
					Description: "Show the current queue",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "page",
							Description: "Page number",
							Required:    false,
							MinValue:    floatPtr(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove an upcoming track",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "position",
							Description: "Position of the track to remove (as shown in queue list)",
							Required:    true,
							MinValue:    floatPtr(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "clear",
					Description: "Clear all upcoming tracks",
				},
			},
		},
	}
}

func floatPtr(f float64) *float64 {
	return &f
}
