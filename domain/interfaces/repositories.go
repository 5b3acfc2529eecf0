package interfaces

import (
	"context"
	"time"

	"casinobot/domain/entities"
	"casinobot/events"
)

// AccountRepository manages user balances within one guild
type AccountRepository interface {
	// Ensure creates the account with a zero balance if missing and returns it
	Ensure(ctx context.Context, discordID int64) (*entities.UserGuildAccount, error)

	// Get returns the account or nil if it has never been created
	Get(ctx context.Context, discordID int64) (*entities.UserGuildAccount, error)

	// AddBalance increases the balance unconditionally, creating the account if needed
	AddBalance(ctx context.Context, discordID int64, amount int64) (before, after int64, err error)

	// DeductIfSufficient decreases the balance in a single conditional update.
	// ok is false, and nothing changes, when the balance cannot cover amount.
	DeductIfSufficient(ctx context.Context, discordID int64, amount int64) (before, after int64, ok bool, err error)

	// SumBalances totals every account balance in the guild
	SumBalances(ctx context.Context) (int64, error)
}

// BankRepository manages the guild's shared house reserve
type BankRepository interface {
	// Ensure creates the bank with a zero balance if missing and returns it
	Ensure(ctx context.Context) (*entities.GuildBank, error)

	// Get returns the bank or nil if it has never been created
	Get(ctx context.Context) (*entities.GuildBank, error)

	// Add increases the bank balance unconditionally
	Add(ctx context.Context, amount int64) (before, after int64, err error)

	// DeductIfSufficient decreases the bank balance only if it covers amount
	DeductIfSufficient(ctx context.Context, amount int64) (before, after int64, ok bool, err error)
}

// TransactionRepository is the append-only ledger log
type TransactionRepository interface {
	// Record appends a record and fills its ID and CreatedAt
	Record(ctx context.Context, record *entities.TransactionRecord) error

	// GetByUser returns the newest records for a user first
	GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.TransactionRecord, error)

	// SumByUserTypesSince sums signed change amounts of the given types for a user
	SumByUserTypesSince(ctx context.Context, discordID int64, types []entities.TransactionType, since time.Time) (int64, error)

	// SumByGuild sums every change amount recorded in the guild
	SumByGuild(ctx context.Context) (int64, error)
}

// UnitOfWork wraps one database transaction and the guild-scoped repositories bound to it
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	BankRepository() BankRepository
	TransactionRepository() TransactionRepository

	// EventPublisher queues events until Commit and drops them on Rollback
	EventPublisher() events.Publisher
}

// UnitOfWorkFactory creates guild-scoped units of work
type UnitOfWorkFactory interface {
	CreateForGuild(guildID int64) UnitOfWork
}
