package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casinobot/database"
	"casinobot/domain/entities"
)

// TransactionRepository implements interfaces.TransactionRepository
type TransactionRepository struct {
	q       queryable
	guildID int64
}

// NewTransactionRepository creates a transaction repository outside a transaction
func NewTransactionRepository(db *database.DB, guildID int64) *TransactionRepository {
	return &TransactionRepository{q: db.Pool, guildID: guildID}
}

func newTransactionRepository(tx queryable, guildID int64) *TransactionRepository {
	return &TransactionRepository{q: tx, guildID: guildID}
}

// Record appends a ledger entry
func (r *TransactionRepository) Record(ctx context.Context, record *entities.TransactionRecord) error {
	record.GuildID = r.guildID
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid transaction record: %w", err)
	}

	metadata := record.TransactionMetadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction metadata: %w", err)
	}

	query := `
		INSERT INTO transaction_records
		(guild_id, discord_id, balance_before, balance_after, change_amount, transaction_type, transaction_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		r.guildID,
		record.DiscordID,
		record.BalanceBefore,
		record.BalanceAfter,
		record.ChangeAmount,
		record.TransactionType,
		metadataJSON,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record %s transaction: %w", record.TransactionType, err)
	}
	return nil
}

// GetByUser returns a user's newest records first
func (r *TransactionRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.TransactionRecord, error) {
	query := `
		SELECT id, guild_id, discord_id, balance_before, balance_after, change_amount,
		       transaction_type, transaction_metadata, created_at
		FROM transaction_records
		WHERE discord_id = $1 AND guild_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, discordID, r.guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for user %d: %w", discordID, err)
	}
	defer rows.Close()

	var records []*entities.TransactionRecord
	for rows.Next() {
		var record entities.TransactionRecord
		var metadataJSON []byte
		if err := rows.Scan(
			&record.ID,
			&record.GuildID,
			&record.DiscordID,
			&record.BalanceBefore,
			&record.BalanceAfter,
			&record.ChangeAmount,
			&record.TransactionType,
			&metadataJSON,
			&record.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction record: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &record.TransactionMetadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal transaction metadata: %w", err)
			}
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction records: %w", err)
	}
	return records, nil
}

// SumByUserTypesSince sums signed changes of the given types since a point in time
func (r *TransactionRepository) SumByUserTypesSince(ctx context.Context, discordID int64, types []entities.TransactionType, since time.Time) (int64, error) {
	if len(types) == 0 {
		return 0, nil
	}

	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}

	query := `
		SELECT COALESCE(SUM(change_amount), 0)
		FROM transaction_records
		WHERE guild_id = $1
		  AND discord_id = $2
		  AND transaction_type = ANY($3)
		  AND created_at >= $4
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, r.guildID, discordID, names, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum transactions for user %d: %w", discordID, err)
	}
	return total, nil
}

// SumByGuild sums every change recorded in the guild, bank entries included
func (r *TransactionRepository) SumByGuild(ctx context.Context) (int64, error) {
	query := `
		SELECT COALESCE(SUM(change_amount), 0)
		FROM transaction_records
		WHERE guild_id = $1
	`

	var total int64
	if err := r.q.QueryRow(ctx, query, r.guildID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum transactions for guild %d: %w", r.guildID, err)
	}
	return total, nil
}
