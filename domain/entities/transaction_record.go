package entities

import (
	"errors"
	"time"
)

// TransactionRecord is one immutable ledger entry. A nil DiscordID marks an
// entry against the guild bank rather than a user account.
type TransactionRecord struct {
	ID                  int64           `db:"id"`
	GuildID             int64           `db:"guild_id"`
	DiscordID           *int64          `db:"discord_id"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}

// IsBankEntry returns true if the record belongs to the guild bank
func (tr *TransactionRecord) IsBankEntry() bool {
	return tr.DiscordID == nil
}

// IsPositiveChange returns true if the change amount is positive
func (tr *TransactionRecord) IsPositiveChange() bool {
	return tr.ChangeAmount > 0
}

// Validate performs basic validation on the record before it is written
func (tr *TransactionRecord) Validate() error {
	if tr.ChangeAmount == 0 {
		return errors.New("change amount cannot be zero")
	}
	if tr.BalanceAfter != tr.BalanceBefore+tr.ChangeAmount {
		return errors.New("balance calculation is inconsistent")
	}
	if tr.BalanceAfter < 0 {
		return errors.New("balance cannot go negative")
	}
	if tr.TransactionType == "" {
		return errors.New("transaction type is required")
	}
	return nil
}

// NewUserRecord builds a record for a user account balance change
func NewUserRecord(guildID, discordID, before, change int64, txType TransactionType, metadata map[string]any) *TransactionRecord {
	id := discordID
	return &TransactionRecord{
		GuildID:             guildID,
		DiscordID:           &id,
		BalanceBefore:       before,
		BalanceAfter:        before + change,
		ChangeAmount:        change,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	}
}

// NewBankRecord builds a record for a guild bank balance change
func NewBankRecord(guildID, before, change int64, txType TransactionType, metadata map[string]any) *TransactionRecord {
	return &TransactionRecord{
		GuildID:             guildID,
		BalanceBefore:       before,
		BalanceAfter:        before + change,
		ChangeAmount:        change,
		TransactionType:     txType,
		TransactionMetadata: metadata,
	}
}
