package testhelpers

import (
	"context"
	"time"

	"casinobot/domain/entities"
	"casinobot/domain/interfaces"
	"casinobot/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Ensure(ctx context.Context, discordID int64) (*entities.UserGuildAccount, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserGuildAccount), args.Error(1)
}

func (m *MockAccountRepository) Get(ctx context.Context, discordID int64) (*entities.UserGuildAccount, error) {
	args := m.Called(ctx, discordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserGuildAccount), args.Error(1)
}

func (m *MockAccountRepository) AddBalance(ctx context.Context, discordID int64, amount int64) (int64, int64, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepository) DeductIfSufficient(ctx context.Context, discordID int64, amount int64) (int64, int64, bool, error) {
	args := m.Called(ctx, discordID, amount)
	return args.Get(0).(int64), args.Get(1).(int64), args.Bool(2), args.Error(3)
}

func (m *MockAccountRepository) SumBalances(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockBankRepository is a mock implementation of BankRepository
type MockBankRepository struct {
	mock.Mock
}

func (m *MockBankRepository) Ensure(ctx context.Context) (*entities.GuildBank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildBank), args.Error(1)
}

func (m *MockBankRepository) Get(ctx context.Context) (*entities.GuildBank, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.GuildBank), args.Error(1)
}

func (m *MockBankRepository) Add(ctx context.Context, amount int64) (int64, int64, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockBankRepository) DeductIfSufficient(ctx context.Context, amount int64) (int64, int64, bool, error) {
	args := m.Called(ctx, amount)
	return args.Get(0).(int64), args.Get(1).(int64), args.Bool(2), args.Error(3)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Record(ctx context.Context, record *entities.TransactionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByUser(ctx context.Context, discordID int64, limit int) ([]*entities.TransactionRecord, error) {
	args := m.Called(ctx, discordID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TransactionRecord), args.Error(1)
}

func (m *MockTransactionRepository) SumByUserTypesSince(ctx context.Context, discordID int64, types []entities.TransactionType, since time.Time) (int64, error) {
	args := m.Called(ctx, discordID, types, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) SumByGuild(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of events.Publisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return whatever SetRepositories installed.
type MockUnitOfWork struct {
	mock.Mock
	accountRepo     interfaces.AccountRepository
	bankRepo        interfaces.BankRepository
	transactionRepo interfaces.TransactionRepository
	publisher       events.Publisher
}

// SetRepositories installs the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(account interfaces.AccountRepository, bank interfaces.BankRepository, transactions interfaces.TransactionRepository, publisher events.Publisher) {
	m.accountRepo = account
	m.bankRepo = bank
	m.transactionRepo = transactions
	m.publisher = publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() interfaces.AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) BankRepository() interfaces.BankRepository {
	return m.bankRepo
}

func (m *MockUnitOfWork) TransactionRepository() interfaces.TransactionRepository {
	return m.transactionRepo
}

func (m *MockUnitOfWork) EventPublisher() events.Publisher {
	return m.publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) CreateForGuild(guildID int64) interfaces.UnitOfWork {
	args := m.Called(guildID)
	return args.Get(0).(interfaces.UnitOfWork)
}
