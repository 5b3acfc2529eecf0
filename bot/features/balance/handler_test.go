package balance

import (
	"strings"
	"testing"
	"time"

	"casinobot/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceEmbed(t *testing.T) {
	t.Run("tier with fee", func(t *testing.T) {
		tier := entities.SecurityTier{Level: 2, Label: "Watched", FeePct: decimal.RequireFromString("0.04"), NetProfit: 160000}

		embed := BalanceEmbed(100, 12345, 500000, tier, 24*time.Hour)

		assert.Contains(t, embed.Description, "**12,345 bits**")
		require.Len(t, embed.Fields, 4)
		assert.Equal(t, "500,000", embed.Fields[0].Value)
		assert.Equal(t, "Watched", embed.Fields[1].Value)
		assert.Equal(t, "4%", embed.Fields[2].Value)
		assert.Equal(t, "Net casino profit (last 1d)", embed.Fields[3].Name)
		assert.Equal(t, "+160,000", embed.Fields[3].Value)
	})

	t.Run("no fee and unlabeled tier", func(t *testing.T) {
		embed := BalanceEmbed(100, 0, 0, entities.SecurityTier{}, 6*time.Hour)

		assert.Equal(t, "Tier 0", embed.Fields[1].Value)
		assert.Equal(t, "none", embed.Fields[2].Value)
		assert.Equal(t, "Net casino profit (last 6h)", embed.Fields[3].Name)
	})
}

func TestHistoryEmbed(t *testing.T) {
	assert.Contains(t, HistoryEmbed(100, nil).Description, "no transactions")

	at := time.Unix(1700000000, 0)
	records := []*entities.TransactionRecord{
		entities.NewUserRecord(1, 100, 1000, 1500, entities.TransactionTypeBlackjackPayout, nil),
		entities.NewUserRecord(1, 100, 1500, -500, entities.TransactionTypeBlackjackBet, nil),
	}
	for _, r := range records {
		r.CreatedAt = at
	}

	lines := strings.Split(HistoryEmbed(100, records).Description, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "<t:1700000000:R> `blackjack_payout` +1,500 → 2,500", lines[0])
	assert.Equal(t, "<t:1700000000:R> `blackjack_bet` -500 → 1,000", lines[1])
}
