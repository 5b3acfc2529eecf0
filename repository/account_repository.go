package repository

import (
	"context"
	"errors"
	"fmt"

	"casinobot/database"
	"casinobot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements interfaces.AccountRepository
type AccountRepository struct {
	q       queryable
	guildID int64
}

// NewAccountRepository creates an account repository outside a transaction
func NewAccountRepository(db *database.DB, guildID int64) *AccountRepository {
	return &AccountRepository{q: db.Pool, guildID: guildID}
}

// newAccountRepository creates an account repository bound to a transaction and guild
func newAccountRepository(tx queryable, guildID int64) *AccountRepository {
	return &AccountRepository{q: tx, guildID: guildID}
}

// Ensure creates the account with a zero balance if it does not exist
func (r *AccountRepository) Ensure(ctx context.Context, discordID int64) (*entities.UserGuildAccount, error) {
	query := `
		INSERT INTO user_guild_accounts (discord_id, guild_id, balance)
		VALUES ($1, $2, 0)
		ON CONFLICT (discord_id, guild_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, discordID, r.guildID); err != nil {
		return nil, fmt.Errorf("failed to ensure account for user %d: %w", discordID, err)
	}

	account, err := r.Get(ctx, discordID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("account for user %d missing after ensure", discordID)
	}
	return account, nil
}

// Get returns the account or nil if it does not exist
func (r *AccountRepository) Get(ctx context.Context, discordID int64) (*entities.UserGuildAccount, error) {
	query := `
		SELECT id, discord_id, guild_id, balance, created_at, updated_at
		FROM user_guild_accounts
		WHERE discord_id = $1 AND guild_id = $2
	`

	var account entities.UserGuildAccount
	err := r.q.QueryRow(ctx, query, discordID, r.guildID).Scan(
		&account.ID,
		&account.DiscordID,
		&account.GuildID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account for user %d: %w", discordID, err)
	}
	return &account, nil
}

// AddBalance increases a balance, creating the account on first use
func (r *AccountRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, int64, error) {
	if amount <= 0 {
		return 0, 0, fmt.Errorf("amount must be positive, got %d", amount)
	}

	query := `
		INSERT INTO user_guild_accounts (discord_id, guild_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (discord_id, guild_id)
		DO UPDATE SET balance = user_guild_accounts.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance
	`

	var after int64
	if err := r.q.QueryRow(ctx, query, discordID, r.guildID, amount).Scan(&after); err != nil {
		return 0, 0, fmt.Errorf("failed to add balance for user %d: %w", discordID, err)
	}
	return after - amount, after, nil
}

// DeductIfSufficient decreases a balance only when it covers amount.
// The check and the write are one statement so concurrent debits serialize on the row.
func (r *AccountRepository) DeductIfSufficient(ctx context.Context, discordID int64, amount int64) (int64, int64, bool, error) {
	if amount <= 0 {
		return 0, 0, false, fmt.Errorf("amount must be positive, got %d", amount)
	}

	query := `
		UPDATE user_guild_accounts
		SET balance = balance - $3, updated_at = NOW()
		WHERE discord_id = $1 AND guild_id = $2 AND balance >= $3
		RETURNING balance
	`

	var after int64
	err := r.q.QueryRow(ctx, query, discordID, r.guildID, amount).Scan(&after)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to deduct balance for user %d: %w", discordID, err)
	}
	return after + amount, after, true, nil
}

// SumBalances totals every account balance in the guild
func (r *AccountRepository) SumBalances(ctx context.Context) (int64, error) {
	query := `
		SELECT COALESCE(SUM(balance), 0)
		FROM user_guild_accounts
		WHERE guild_id = $1
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, r.guildID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum balances for guild %d: %w", r.guildID, err)
	}
	return total, nil
}
