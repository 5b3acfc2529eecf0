package blackjack

import (
	"casinobot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

type buttonSpec struct {
	kind  entities.ActionKind
	label string
	style discordgo.ButtonStyle
}

var lobbyButtons = []buttonSpec{
	{entities.ActionJoin, "Join", discordgo.SuccessButton},
	{entities.ActionPay, "Pay In", discordgo.PrimaryButton},
	{entities.ActionLeave, "Leave", discordgo.SecondaryButton},
	{entities.ActionStart, "Deal", discordgo.PrimaryButton},
	{entities.ActionEnd, "Close", discordgo.DangerButton},
}

var playButtons = []buttonSpec{
	{entities.ActionHit, "Hit", discordgo.PrimaryButton},
	{entities.ActionStand, "Stand", discordgo.SecondaryButton},
	{entities.ActionDouble, "Double", discordgo.SuccessButton},
	{entities.ActionSplit, "Split", discordgo.SuccessButton},
	{entities.ActionEnd, "End Round", discordgo.DangerButton},
}

// TableComponents creates the buttons for a table message. Ended tables get none.
func TableComponents(snap *entities.SessionSnapshot) []discordgo.MessageComponent {
	var specs []buttonSpec
	switch snap.State {
	case entities.SessionStateLobby:
		specs = lobbyButtons
	case entities.SessionStatePlaying:
		specs = playButtons
	default:
		return nil
	}

	buttons := make([]discordgo.MessageComponent, 0, len(specs))
	for _, spec := range specs {
		buttons = append(buttons, discordgo.Button{
			Label:    spec.label,
			Style:    spec.style,
			CustomID: EncodeCustomID(snap.SessionID, spec.kind),
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}
