package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func amountOption(required bool, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "amount",
		Description: description,
		Required:    required,
		MinValue:    &minAmount,
	}
}

var minAmount = 1.0

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Check your bits, the house bank and your security tier",
		},
		{
			Name:        "history",
			Description: "Show your most recent transactions",
		},
		{
			Name:        "blackjack",
			Description: "Play multiplayer blackjack against the house",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("create", "Open a table in this channel", amountOption(false, "Your bet (defaults to the table minimum)")),
				subcommand("join", "Take a seat at the table"),
				subcommand("bet", "Change your bet before the deal", amountOption(true, "New bet")),
				subcommand("pay", "Pay in your bet"),
				subcommand("start", "Deal the round (host only)"),
				subcommand("leave", "Leave the table and get your stake back"),
				subcommand("end", "Close the table (host only)"),
				subcommand("table", "Show the table in this channel"),
			},
		},
	}

	for _, cmd := range commands {
		created, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create command %s: %w", cmd.Name, err)
		}
		b.commands = append(b.commands, created)
	}

	log.Infof("Registered %d slash commands", len(b.commands))
	return nil
}

func (b *Bot) unregisterCommands() {
	for _, cmd := range b.commands {
		if err := b.session.ApplicationCommandDelete(b.session.State.User.ID, b.config.GuildID, cmd.ID); err != nil {
			log.Warnf("Cannot delete command %s: %v", cmd.Name, err)
		}
	}
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "balance", "history":
		b.balanceFeature.HandleCommand(s, i)
	case "blackjack":
		b.blackjackFeature.HandleCommand(s, i)
	}
}
