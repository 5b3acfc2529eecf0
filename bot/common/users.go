package common

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ParseUserID converts a Discord user ID string to int64
func ParseUserID(userID string) (int64, error) {
	return strconv.ParseInt(userID, 10, 64)
}

// FormatUserID converts an int64 user ID to string
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// GetUserMention returns a Discord mention string for a user
func GetUserMention(userID int64) string {
	return "<@" + FormatUserID(userID) + ">"
}

// InteractionIDs are the numeric guild, channel and user of an interaction
type InteractionIDs struct {
	GuildID   int64
	ChannelID int64
	UserID    int64
}

// ParseInteractionIDs extracts numeric IDs from a guild interaction. Direct
// messages have no guild and are rejected.
func ParseInteractionIDs(i *discordgo.InteractionCreate) (InteractionIDs, error) {
	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		return InteractionIDs{}, fmt.Errorf("interaction is not from a guild member")
	}

	guildID, err := strconv.ParseInt(i.GuildID, 10, 64)
	if err != nil {
		return InteractionIDs{}, fmt.Errorf("invalid guild ID %q: %w", i.GuildID, err)
	}
	channelID, err := strconv.ParseInt(i.ChannelID, 10, 64)
	if err != nil {
		return InteractionIDs{}, fmt.Errorf("invalid channel ID %q: %w", i.ChannelID, err)
	}
	userID, err := ParseUserID(i.Member.User.ID)
	if err != nil {
		return InteractionIDs{}, fmt.Errorf("invalid user ID %q: %w", i.Member.User.ID, err)
	}

	return InteractionIDs{GuildID: guildID, ChannelID: channelID, UserID: userID}, nil
}
