package bot

import (
	"context"

	"casinobot/events"

	log "github.com/sirupsen/logrus"
)

// RegisterBotSubscriptions wires domain events to their Discord side effects
func RegisterBotSubscriptions(bus *events.Bus, bot *Bot) {
	bus.Subscribe(events.EventTypeBlackjackRoundEnded, bot.blackjackFeature.OnRoundEnded)
	bus.Subscribe(events.EventTypeBlackjackSessionCancelled, bot.blackjackFeature.OnSessionCancelled)
	bus.Subscribe(events.EventTypePayoutShortfall, bot.blackjackFeature.OnPayoutShortfall)
	bus.Subscribe(events.EventTypeBalanceChange, logBalanceChange)

	log.Info("Bot event subscriptions registered successfully")
}

func logBalanceChange(ctx context.Context, event events.Event) {
	change, ok := event.(events.BalanceChangeEvent)
	if !ok {
		log.Warnf("Balance change handler received %T", event)
		return
	}

	log.WithFields(log.Fields{
		"userID":          change.UserID,
		"guildID":         change.GuildID,
		"oldBalance":      change.OldBalance,
		"newBalance":      change.NewBalance,
		"transactionType": change.TransactionType,
		"changeAmount":    change.ChangeAmount,
	}).Debug("Balance changed")
}
