package cmd

import (
	"context"
	"fmt"
	"time"

	"casinobot/bot"
	"casinobot/config"
	"casinobot/database"
	"casinobot/domain/services"
	"casinobot/events"
	"casinobot/infrastructure"
	"casinobot/repository"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the bot, blocking until ctx is cancelled
func Run(ctx context.Context) error {
	log.Info("Starting casino bot...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// The bus always carries in-process subscribers. With NATS configured,
	// events go to NATS and are forwarded locally to the bus.
	eventBus := events.NewBus()
	var publisher events.Publisher = eventBus

	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer func() {
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS client")
			}
		}()

		natsPublisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
		if err := natsPublisher.EnsureDomainEventStream(natsClient); err != nil {
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
		for _, eventType := range events.AllEventTypes {
			natsPublisher.RegisterLocalHandler(eventType, func(ctx context.Context, event events.Event) error {
				eventBus.Emit(ctx, event)
				return nil
			})
		}
		publisher = natsPublisher
		log.Info("NATS event publishing enabled")
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, publisher)

	ledger := services.NewLedgerService(uowFactory)
	security := services.NewSecurityTierService(uowFactory, cfg.Security, time.Now)
	fees := services.NewFeeCalculator(decimal.NewFromFloat(cfg.Security.MaxFeePct).Div(decimal.NewFromInt(100)))

	registry := services.NewBlackjackRegistry()
	defer registry.Shutdown()
	engine := services.NewBlackjackEngine(ledger, security, fees, publisher, registry, cfg.Blackjack)

	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:          cfg.DiscordToken,
		GuildID:        cfg.GuildID,
		SecurityWindow: time.Duration(cfg.Security.WindowHours) * time.Hour,
	}, ledger, security, engine)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	bot.RegisterBotSubscriptions(eventBus, discordBot)
	log.Info("Discord bot initialized successfully")

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord bot")
	}
	log.WithFields(log.Fields{
		"liveTables": registry.LiveCount(),
		"tableSlots": registry.SlotCount(),
	}).Info("Stopping table timers")

	return nil
}
