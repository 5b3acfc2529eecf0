package entities

import (
	"github.com/shopspring/decimal"
)

// SecurityTier is a derived risk classification for a player's recent casino
// winnings. FeePct is a fraction: 0.02 means a 2% surcharge.
type SecurityTier struct {
	Level     int             `json:"level"`
	Label     string          `json:"label"`
	Threshold int64           `json:"threshold"`
	FeePct    decimal.Decimal `json:"fee_pct"`
	NetProfit int64           `json:"net_profit"`
}

// HasFee returns true if wagers at this tier carry a surcharge
func (t SecurityTier) HasFee() bool {
	return t.FeePct.IsPositive()
}

// FeePercentDisplay returns the fee as a percentage string, e.g. "2"
func (t SecurityTier) FeePercentDisplay() string {
	return t.FeePct.Mul(decimal.NewFromInt(100)).String()
}

// TierDefinition is one configured row of the tier table
type TierDefinition struct {
	Level     int
	Label     string
	Threshold int64
	FeePct    decimal.Decimal
}
