package utils

import (
	"context"
	"fmt"

	"casinobot/domain/entities"
	"casinobot/domain/interfaces"
	"casinobot/events"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange appends a ledger record and queues the matching
// balance change event. Every balance mutation goes through here.
func RecordBalanceChange(ctx context.Context, transactionRepo interfaces.TransactionRepository, eventPublisher events.Publisher, record *entities.TransactionRecord) error {
	if err := transactionRepo.Record(ctx, record); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	event := events.BalanceChangeEvent{
		GuildID:         record.GuildID,
		OldBalance:      record.BalanceBefore,
		NewBalance:      record.BalanceAfter,
		TransactionType: record.TransactionType,
		ChangeAmount:    record.ChangeAmount,
	}
	if record.DiscordID != nil {
		event.UserID = *record.DiscordID
	}

	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"guildID":         event.GuildID,
		"oldBalance":      event.OldBalance,
		"newBalance":      event.NewBalance,
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount,
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	return nil
}
