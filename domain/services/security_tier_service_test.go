package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"casinobot/config"
	"casinobot/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testSecurityConfig() config.SecurityConfig {
	return config.SecurityConfig{
		WindowHours:    24,
		TierThresholds: []int64{0, 50000, 150000, 300000, 600000},
		TierFeePcts:    []float64{0, 2, 4, 6, 8},
		TierLabels:     []string{"Open", "Watched"},
		MaxFeePct:      10,
		CasinoTypes:    []string{"blackjack_bet", "blackjack_payout", "blackjack_push", "blackjack_refund"},
	}
}

func TestTierForProfit(t *testing.T) {
	t.Parallel()
	tiers := BuildTierTable(testSecurityConfig())

	tests := []struct {
		name      string
		net       int64
		wantLevel int
		wantFee   string
	}{
		{"losing player", -5000, 0, "0"},
		{"just below first threshold", 49999, 0, "0"},
		{"exactly at threshold", 50000, 1, "0.02"},
		{"mid table", 200000, 2, "0.04"},
		{"top tier", 600000, 4, "0.08"},
		{"beyond top tier", 5000000, 4, "0.08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tier := TierForProfit(tiers, tt.net)
			assert.Equal(t, tt.wantLevel, tier.Level)
			assert.True(t, tier.FeePct.Equal(decimal.RequireFromString(tt.wantFee)), "fee %s", tier.FeePct)
			assert.Equal(t, tt.net, tier.NetProfit)
		})
	}
}

func TestBuildTierTable_Labels(t *testing.T) {
	t.Parallel()
	tiers := BuildTierTable(testSecurityConfig())
	require.Len(t, tiers, 5)
	assert.Equal(t, "Open", tiers[0].Label)
	assert.Equal(t, "Watched", tiers[1].Label)
	assert.Equal(t, "Tier 2", tiers[2].Label)
}

func TestSecurityTierService_GetSecurityTier(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	casinoTypes := []entities.TransactionType{
		entities.TransactionTypeBlackjackBet,
		entities.TransactionTypeBlackjackPayout,
		entities.TransactionTypeBlackjackPush,
		entities.TransactionTypeBlackjackRefund,
	}

	t.Run("sums casino activity over the trailing window", func(t *testing.T) {
		t.Parallel()
		m := newLedgerMocks()
		m.transactions.On("SumByUserTypesSince", ctx, TestPlayerID, casinoTypes, now.Add(-24*time.Hour)).Return(int64(50000), nil)

		svc := NewSecurityTierService(m.factory, testSecurityConfig(), func() time.Time { return now })
		tier, err := svc.GetSecurityTier(ctx, TestGuildID, TestPlayerID)
		require.NoError(t, err)
		assert.Equal(t, 1, tier.Level)
		assert.Equal(t, "Watched", tier.Label)
		assert.True(t, tier.HasFee())
		m.uow.AssertNotCalled(t, "Commit")
		m.transactions.AssertExpectations(t)
	})

	t.Run("repository errors surface", func(t *testing.T) {
		t.Parallel()
		m := newLedgerMocks()
		m.transactions.On("SumByUserTypesSince", ctx, TestPlayerID, mock.Anything, mock.Anything).Return(int64(0), errors.New("timeout"))

		svc := NewSecurityTierService(m.factory, testSecurityConfig(), func() time.Time { return now })
		_, err := svc.GetSecurityTier(ctx, TestGuildID, TestPlayerID)
		assert.Error(t, err)
	})
}
