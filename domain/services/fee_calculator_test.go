package services

import (
	"testing"

	"casinobot/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeCharge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		stake   int64
		feePct  string
		wantFee int64
	}{
		{"five percent of 1000", 1000, "0.05", 50},
		{"no fee at tier zero", 1000, "0", 0},
		{"fractional fee rounds up", 999, "0.02", 20},
		{"tiny fee is at least one", 10, "0.02", 1},
		{"tiny stake at tiny fee", 1, "0.001", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			charge := ComputeCharge(tt.stake, decimal.RequireFromString(tt.feePct))
			assert.Equal(t, tt.stake, charge.Stake)
			assert.Equal(t, tt.wantFee, charge.FeeAmount)
			assert.Equal(t, tt.stake+tt.wantFee, charge.TotalCharge)
		})
	}
}

func TestFeeCalculator_ComputeEffectiveFeePct(t *testing.T) {
	t.Parallel()
	calc := NewFeeCalculator(decimal.RequireFromString("0.10"))

	tests := []struct {
		name   string
		player entities.SecurityTier
		host   entities.SecurityTier
		want   string
	}{
		{"host tier is stricter", feeTier(1, "0.02"), feeTier(3, "0.06"), "0.06"},
		{"player tier is stricter", feeTier(3, "0.06"), feeTier(0, "0"), "0.06"},
		{"clamped to the cap", feeTier(5, "0.12"), feeTier(0, "0"), "0.10"},
		{"negative is treated as zero", feeTier(0, "-0.01"), feeTier(0, "-0.02"), "0"},
		{"both zero", feeTier(0, "0"), feeTier(0, "0"), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := calc.ComputeEffectiveFeePct(tt.player, tt.host)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}
