package repository

import (
	"context"
	"errors"
	"fmt"

	"casinobot/database"
	"casinobot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// BankRepository implements interfaces.BankRepository
type BankRepository struct {
	q       queryable
	guildID int64
}

// NewBankRepository creates a bank repository outside a transaction
func NewBankRepository(db *database.DB, guildID int64) *BankRepository {
	return &BankRepository{q: db.Pool, guildID: guildID}
}

func newBankRepository(tx queryable, guildID int64) *BankRepository {
	return &BankRepository{q: tx, guildID: guildID}
}

// Ensure creates the guild bank with a zero balance if it does not exist
func (r *BankRepository) Ensure(ctx context.Context) (*entities.GuildBank, error) {
	query := `
		INSERT INTO guild_banks (guild_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (guild_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, r.guildID); err != nil {
		return nil, fmt.Errorf("failed to ensure bank for guild %d: %w", r.guildID, err)
	}

	bank, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	if bank == nil {
		return nil, fmt.Errorf("bank for guild %d missing after ensure", r.guildID)
	}
	return bank, nil
}

// Get returns the guild bank or nil if it does not exist
func (r *BankRepository) Get(ctx context.Context) (*entities.GuildBank, error) {
	query := `
		SELECT guild_id, balance, created_at, updated_at
		FROM guild_banks
		WHERE guild_id = $1
	`

	var bank entities.GuildBank
	err := r.q.QueryRow(ctx, query, r.guildID).Scan(
		&bank.GuildID,
		&bank.Balance,
		&bank.CreatedAt,
		&bank.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank for guild %d: %w", r.guildID, err)
	}
	return &bank, nil
}

// Add increases the bank balance, creating the bank on first use
func (r *BankRepository) Add(ctx context.Context, amount int64) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, fmt.Errorf("amount must be positive, got %d", amount)
	}

	query := `
		INSERT INTO guild_banks (guild_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (guild_id)
		DO UPDATE SET balance = guild_banks.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance
	`

	var after int64
	if err := r.q.QueryRow(ctx, query, r.guildID, amount).Scan(&after); err != nil {
		return 0, 0, fmt.Errorf("failed to add to bank for guild %d: %w", r.guildID, err)
	}
	return after - amount, after, nil
}

// DeductIfSufficient decreases the bank only when it covers amount
func (r *BankRepository) DeductIfSufficient(ctx context.Context, amount int64) (int64, int64, bool, error) {
	if amount <= 0 {
		return 0, 0, false, fmt.Errorf("amount must be positive, got %d", amount)
	}

	query := `
		UPDATE guild_banks
		SET balance = balance - $2, updated_at = NOW()
		WHERE guild_id = $1 AND balance >= $2
		RETURNING balance
	`

	var after int64
	err := r.q.QueryRow(ctx, query, r.guildID, amount).Scan(&after)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to deduct from bank for guild %d: %w", r.guildID, err)
	}
	return after + amount, after, true, nil
}
