package common

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// GenericErrorMessage is shown for failures the user cannot act on
const GenericErrorMessage = "Something went wrong. Please try again later."

// RespondWithError sends an ephemeral error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// RespondWithSystemError logs an unexpected failure and shows a generic message
func RespondWithSystemError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, logMessage string) {
	fields := log.Fields{
		"guildID":   i.GuildID,
		"channelID": i.ChannelID,
		"error":     err,
	}
	if i.Member != nil && i.Member.User != nil {
		fields["userID"] = i.Member.User.ID
	}
	log.WithFields(fields).Error(logMessage)
	RespondWithError(s, i, GenericErrorMessage)
}
