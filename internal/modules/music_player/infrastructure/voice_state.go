package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/quaverbot/quaver/internal/modules/music_player/application/ports"
)

// VoiceStateProvider answers voice occupancy questions from the Discord
// session state cache.
type VoiceStateProvider struct {
	session *discordgo.Session
}

func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{session: session}
}

// GetUserVoiceChannel returns the voice channel the user is currently in,
// or 0 when they are not in one.
func (v *VoiceStateProvider) GetUserVoiceChannel(guildID, userID snowflake.ID) (snowflake.ID, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, err
	}

	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID.String() && vs.ChannelID != "" {
			channelID, err := snowflake.Parse(vs.ChannelID)
			if err != nil {
				return 0, err
			}
			return channelID, nil
		}
	}

	return 0, nil
}

// CountListeners returns the number of non-bot users in the given voice
// channel. Members missing from the state cache are fetched through the
// API.
func (v *VoiceStateProvider) CountListeners(guildID, channelID snowflake.ID) (int, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, err
	}

	count := 0
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID != channelID.String() {
			continue
		}
		if v.isBot(guildID.String(), vs.UserID) {
			continue
		}
		count++
	}

	return count, nil
}

func (v *VoiceStateProvider) isBot(guildID, userID string) bool {
	member, err := v.session.State.Member(guildID, userID)
	if err != nil {
		member, err = v.session.GuildMember(guildID, userID)
		if err != nil {
			return false
		}
	}
	return member.User != nil && member.User.Bot
}

// Ensure VoiceStateProvider implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)
