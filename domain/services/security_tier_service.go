package services

import (
	"context"
	"fmt"
	"time"

	"casinobot/config"
	"casinobot/domain/entities"
	"casinobot/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var hundred = decimal.NewFromInt(100)

// BuildTierTable turns configured thresholds, fees and labels into tiers.
// Fees are configured in percent and stored as fractions.
func BuildTierTable(cfg config.SecurityConfig) []entities.TierDefinition {
	tiers := make([]entities.TierDefinition, len(cfg.TierThresholds))
	for i, threshold := range cfg.TierThresholds {
		label := fmt.Sprintf("Tier %d", i)
		if i < len(cfg.TierLabels) {
			label = cfg.TierLabels[i]
		}
		var fee decimal.Decimal
		if i < len(cfg.TierFeePcts) {
			fee = decimal.NewFromFloat(cfg.TierFeePcts[i]).Div(hundred)
		}
		tiers[i] = entities.TierDefinition{
			Level:     i,
			Label:     label,
			Threshold: threshold,
			FeePct:    fee,
		}
	}
	return tiers
}

// TierForProfit picks the highest tier whose threshold is at or below net.
// Net profit below every threshold falls into the first tier.
func TierForProfit(tiers []entities.TierDefinition, net int64) entities.SecurityTier {
	if len(tiers) == 0 {
		return entities.SecurityTier{NetProfit: net}
	}
	chosen := tiers[0]
	for _, tier := range tiers[1:] {
		if tier.Threshold <= net {
			chosen = tier
		}
	}
	return entities.SecurityTier{
		Level:     chosen.Level,
		Label:     chosen.Label,
		Threshold: chosen.Threshold,
		FeePct:    chosen.FeePct,
		NetProfit: net,
	}
}

// securityTierService derives tiers from the ledger
type securityTierService struct {
	uowFactory  interfaces.UnitOfWorkFactory
	tiers       []entities.TierDefinition
	casinoTypes []entities.TransactionType
	window      time.Duration
	now         func() time.Time
}

// NewSecurityTierService creates a tier service. now is the clock used to
// anchor the trailing window.
func NewSecurityTierService(uowFactory interfaces.UnitOfWorkFactory, cfg config.SecurityConfig, now func() time.Time) interfaces.SecurityTierService {
	if now == nil {
		now = time.Now
	}
	window := time.Duration(cfg.WindowHours) * time.Hour
	if window <= 0 {
		window = 24 * time.Hour
	}
	return &securityTierService{
		uowFactory:  uowFactory,
		tiers:       BuildTierTable(cfg),
		casinoTypes: entities.ParseTransactionTypes(cfg.CasinoTypes),
		window:      window,
		now:         now,
	}
}

func (s *securityTierService) GetNetCasinoProfit(ctx context.Context, guildID, userID int64, window time.Duration) (int64, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	since := s.now().Add(-window)
	net, err := uow.TransactionRepository().SumByUserTypesSince(ctx, userID, s.casinoTypes, since)
	if err != nil {
		return 0, fmt.Errorf("failed to sum casino transactions: %w", err)
	}
	return net, nil
}

func (s *securityTierService) GetSecurityTier(ctx context.Context, guildID, userID int64) (entities.SecurityTier, error) {
	net, err := s.GetNetCasinoProfit(ctx, guildID, userID, s.window)
	if err != nil {
		return entities.SecurityTier{}, err
	}

	tier := TierForProfit(s.tiers, net)
	log.WithFields(log.Fields{
		"guildID":   guildID,
		"userID":    userID,
		"netProfit": net,
		"tier":      tier.Level,
	}).Debug("Resolved casino security tier")
	return tier, nil
}
