package testutil

import (
	"casinobot/domain/entities"
)

// TestGuildID is the guild used by repository tests
const TestGuildID int64 = 900000000000000001

// CreateTestUserRecord creates a user ledger record with default metadata
func CreateTestUserRecord(discordID int64, before, change int64, txType entities.TransactionType) *entities.TransactionRecord {
	return entities.NewUserRecord(TestGuildID, discordID, before, change, txType, map[string]any{
		"test": true,
	})
}

// CreateTestBankRecord creates a bank ledger record with default metadata
func CreateTestBankRecord(before, change int64, txType entities.TransactionType) *entities.TransactionRecord {
	return entities.NewBankRecord(TestGuildID, before, change, txType, map[string]any{
		"test": true,
	})
}
