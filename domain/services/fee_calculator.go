package services

import (
	"casinobot/domain/entities"

	"github.com/shopspring/decimal"
)

// FeeCalculator prices the casino security surcharge on wagers
type FeeCalculator struct {
	maxFeePct decimal.Decimal
}

// NewFeeCalculator creates a calculator capping fees at maxFeePct (a fraction)
func NewFeeCalculator(maxFeePct decimal.Decimal) *FeeCalculator {
	return &FeeCalculator{maxFeePct: maxFeePct}
}

// ComputeEffectiveFeePct applies the stricter of the player's own tier and
// the tier locked from the host at table creation, clamped to [0, max].
func (c *FeeCalculator) ComputeEffectiveFeePct(playerTier, hostLocked entities.SecurityTier) decimal.Decimal {
	pct := decimal.Max(playerTier.FeePct, hostLocked.FeePct)
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(c.maxFeePct) {
		return c.maxFeePct
	}
	return pct
}

// ComputeCharge prices a stake. The fee rounds up and is at least 1 whenever
// any fee applies.
func ComputeCharge(stake int64, feePct decimal.Decimal) entities.WagerCharge {
	var fee int64
	if stake > 0 && feePct.IsPositive() {
		fee = decimal.NewFromInt(stake).Mul(feePct).Ceil().IntPart()
		if fee < 1 {
			fee = 1
		}
	}
	return entities.WagerCharge{
		Stake:       stake,
		FeeAmount:   fee,
		TotalCharge: stake + fee,
	}
}
