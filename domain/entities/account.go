package entities

import (
	"time"
)

// UserGuildAccount represents a user's balance within a specific guild
type UserGuildAccount struct {
	ID        int64     `db:"id"`
	DiscordID int64     `db:"discord_id"`
	GuildID   int64     `db:"guild_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CanAfford checks if the account balance covers an amount
func (a *UserGuildAccount) CanAfford(amount int64) bool {
	return a.Balance >= amount
}

// GuildBank is the shared house reserve that funds every casino payout
type GuildBank struct {
	GuildID   int64     `db:"guild_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// CanCover checks if the bank can fund a payout
func (b *GuildBank) CanCover(amount int64) bool {
	return b.Balance >= amount
}
