package testhelpers

import (
	"context"
	"time"

	"casinobot/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockLedgerService is a mock implementation of LedgerService
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) EnsureAccount(ctx context.Context, guildID, userID int64) error {
	args := m.Called(ctx, guildID, userID)
	return args.Error(0)
}

func (m *MockLedgerService) DebitIfSufficient(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (*entities.DebitResult, error) {
	args := m.Called(ctx, guildID, userID, amount, txType, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DebitResult), args.Error(1)
}

func (m *MockLedgerService) Credit(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
	args := m.Called(ctx, guildID, userID, amount, txType, metadata)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) BankDebitIfSufficientThenCreditUser(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (*entities.BankPayoutResult, error) {
	args := m.Called(ctx, guildID, userID, amount, txType, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BankPayoutResult), args.Error(1)
}

func (m *MockLedgerService) BankCredit(ctx context.Context, guildID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
	args := m.Called(ctx, guildID, amount, txType, metadata)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) ChargeWager(ctx context.Context, guildID, userID int64, charge entities.WagerCharge, metadata map[string]any) (*entities.ChargeResult, error) {
	args := m.Called(ctx, guildID, userID, charge, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ChargeResult), args.Error(1)
}

func (m *MockLedgerService) GetBalance(ctx context.Context, guildID, userID int64) (int64, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) GetBankBalance(ctx context.Context, guildID int64) (int64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLedgerService) Audit(ctx context.Context, guildID int64) (*entities.LedgerAudit, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerAudit), args.Error(1)
}

func (m *MockLedgerService) GetHistory(ctx context.Context, guildID, userID int64, limit int) ([]*entities.TransactionRecord, error) {
	args := m.Called(ctx, guildID, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TransactionRecord), args.Error(1)
}

// MockSecurityTierService is a mock implementation of SecurityTierService
type MockSecurityTierService struct {
	mock.Mock
}

func (m *MockSecurityTierService) GetNetCasinoProfit(ctx context.Context, guildID, userID int64, window time.Duration) (int64, error) {
	args := m.Called(ctx, guildID, userID, window)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSecurityTierService) GetSecurityTier(ctx context.Context, guildID, userID int64) (entities.SecurityTier, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Get(0).(entities.SecurityTier), args.Error(1)
}
