package bot

import (
	"fmt"
	"strings"
	"time"

	"casinobot/bot/features/balance"
	"casinobot/bot/features/blackjack"
	"casinobot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token string
	// GuildID registers commands to one guild for fast iteration. Empty registers them globally.
	GuildID string
	// SecurityWindow is shown next to a player's net casino profit
	SecurityWindow time.Duration
}

type Bot struct {
	config  Config
	session *discordgo.Session

	balanceFeature   *balance.Feature
	blackjackFeature *blackjack.Feature

	commands []*discordgo.ApplicationCommand
}

func New(config Config, ledger interfaces.LedgerService, security interfaces.SecurityTierService, engine interfaces.BlackjackService) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	bot := &Bot{
		config:           config,
		session:          dg,
		balanceFeature:   balance.New(ledger, security, config.SecurityWindow),
		blackjackFeature: blackjack.NewFeature(dg, engine),
	}

	dg.AddHandler(bot.handleCommands)
	dg.AddHandler(bot.handleInteractions)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("guildID", config.GuildID).Info("Discord bot connected")
	return bot, nil
}

// Close unregisters guild commands and closes the gateway connection
func (b *Bot) Close() error {
	if b.config.GuildID != "" {
		b.unregisterCommands()
	}
	return b.session.Close()
}

// handleInteractions routes component clicks to the feature that owns the custom ID
func (b *Bot) handleInteractions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	customID := i.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, blackjack.CustomIDPrefix+":"):
		b.blackjackFeature.HandleInteraction(s, i)
	default:
		log.WithField("customID", customID).Debug("Ignoring unknown component interaction")
	}
}
