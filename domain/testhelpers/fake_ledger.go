package testhelpers

import (
	"context"
	"fmt"
	"sync"

	"casinobot/domain/entities"
)

// FakeLedger is an in-memory LedgerService for engine tests. It keeps the
// same one-record-per-mutation bookkeeping as the database ledger so tests
// can assert money conservation.
type FakeLedger struct {
	mu       sync.Mutex
	accounts map[int64]map[int64]int64
	banks    map[int64]int64
	records  []*entities.TransactionRecord

	// FailBankPayouts forces BankDebitIfSufficientThenCreditUser to report a
	// shortfall for amounts listed here, regardless of the bank balance
	FailBankPayouts map[int64]bool
}

// NewFakeLedger creates an empty ledger
func NewFakeLedger() *FakeLedger {
	return &FakeLedger{
		accounts:        make(map[int64]map[int64]int64),
		banks:           make(map[int64]int64),
		FailBankPayouts: make(map[int64]bool),
	}
}

func (l *FakeLedger) guild(guildID int64) map[int64]int64 {
	accounts, ok := l.accounts[guildID]
	if !ok {
		accounts = make(map[int64]int64)
		l.accounts[guildID] = accounts
	}
	return accounts
}

func (l *FakeLedger) record(r *entities.TransactionRecord) {
	r.ID = int64(len(l.records) + 1)
	l.records = append(l.records, r)
}

func (l *FakeLedger) EnsureAccount(ctx context.Context, guildID, userID int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts := l.guild(guildID)
	if _, ok := accounts[userID]; !ok {
		accounts[userID] = 0
	}
	return nil
}

func (l *FakeLedger) DebitIfSufficient(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (*entities.DebitResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts := l.guild(guildID)
	before := accounts[userID]
	if before < amount {
		return &entities.DebitResult{OK: false, NewBalance: before}, nil
	}
	accounts[userID] = before - amount
	l.record(entities.NewUserRecord(guildID, userID, before, -amount, txType, metadata))
	return &entities.DebitResult{OK: true, NewBalance: before - amount}, nil
}

func (l *FakeLedger) Credit(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts := l.guild(guildID)
	before := accounts[userID]
	accounts[userID] = before + amount
	l.record(entities.NewUserRecord(guildID, userID, before, amount, txType, metadata))
	return before + amount, nil
}

func (l *FakeLedger) BankDebitIfSufficientThenCreditUser(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (*entities.BankPayoutResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	bank := l.banks[guildID]
	accounts := l.guild(guildID)
	if bank < amount || l.FailBankPayouts[amount] {
		return &entities.BankPayoutResult{OK: false, BankBalance: bank, UserBalance: accounts[userID]}, nil
	}

	l.banks[guildID] = bank - amount
	l.record(entities.NewBankRecord(guildID, bank, -amount, txType, metadata))

	before := accounts[userID]
	accounts[userID] = before + amount
	l.record(entities.NewUserRecord(guildID, userID, before, amount, txType, metadata))

	return &entities.BankPayoutResult{OK: true, BankBalance: bank - amount, UserBalance: before + amount}, nil
}

func (l *FakeLedger) BankCredit(ctx context.Context, guildID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %d", amount)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	before := l.banks[guildID]
	l.banks[guildID] = before + amount
	l.record(entities.NewBankRecord(guildID, before, amount, txType, metadata))
	return before + amount, nil
}

func (l *FakeLedger) ChargeWager(ctx context.Context, guildID, userID int64, charge entities.WagerCharge, metadata map[string]any) (*entities.ChargeResult, error) {
	if charge.Stake <= 0 || charge.FeeAmount < 0 || charge.TotalCharge != charge.Stake+charge.FeeAmount {
		return nil, fmt.Errorf("invalid wager charge %+v", charge)
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	accounts := l.guild(guildID)
	before := accounts[userID]
	bank := l.banks[guildID]
	if before < charge.TotalCharge {
		return &entities.ChargeResult{OK: false, NewBalance: before, BankBalance: bank}, nil
	}

	accounts[userID] = before - charge.Stake
	l.record(entities.NewUserRecord(guildID, userID, before, -charge.Stake, entities.TransactionTypeBlackjackBet, metadata))
	l.banks[guildID] = bank + charge.Stake
	l.record(entities.NewBankRecord(guildID, bank, charge.Stake, entities.TransactionTypeBlackjackBet, metadata))

	if charge.FeeAmount > 0 {
		afterStake := accounts[userID]
		accounts[userID] = afterStake - charge.FeeAmount
		l.record(entities.NewUserRecord(guildID, userID, afterStake, -charge.FeeAmount, entities.TransactionTypeCasinoFee, metadata))
		bankAfterStake := l.banks[guildID]
		l.banks[guildID] = bankAfterStake + charge.FeeAmount
		l.record(entities.NewBankRecord(guildID, bankAfterStake, charge.FeeAmount, entities.TransactionTypeCasinoFee, metadata))
	}

	return &entities.ChargeResult{OK: true, NewBalance: accounts[userID], BankBalance: l.banks[guildID]}, nil
}

func (l *FakeLedger) GetBalance(ctx context.Context, guildID, userID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.guild(guildID)[userID], nil
}

func (l *FakeLedger) GetBankBalance(ctx context.Context, guildID int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.banks[guildID], nil
}

func (l *FakeLedger) GetHistory(ctx context.Context, guildID, userID int64, limit int) ([]*entities.TransactionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var history []*entities.TransactionRecord
	for i := len(l.records) - 1; i >= 0 && len(history) < limit; i-- {
		r := l.records[i]
		if r.GuildID == guildID && r.DiscordID != nil && *r.DiscordID == userID {
			history = append(history, r)
		}
	}
	return history, nil
}

// Records returns every record written so far, oldest first
func (l *FakeLedger) Records() []*entities.TransactionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*entities.TransactionRecord(nil), l.records...)
}

// RecordsOfType returns the records of one type, oldest first
func (l *FakeLedger) RecordsOfType(txType entities.TransactionType) []*entities.TransactionRecord {
	var out []*entities.TransactionRecord
	for _, r := range l.Records() {
		if r.TransactionType == txType {
			out = append(out, r)
		}
	}
	return out
}

func (l *FakeLedger) Audit(ctx context.Context, guildID int64) (*entities.LedgerAudit, error) {
	audit := &entities.LedgerAudit{GuildID: guildID, Recorded: l.RecordedTotal(guildID)}
	l.mu.Lock()
	defer l.mu.Unlock()
	audit.BankBalance = l.banks[guildID]
	for _, balance := range l.accounts[guildID] {
		audit.AccountTotal += balance
	}
	return audit, nil
}

// Total returns the bank plus every account balance in the guild
func (l *FakeLedger) Total(guildID int64) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := l.banks[guildID]
	for _, balance := range l.accounts[guildID] {
		total += balance
	}
	return total
}

// RecordedTotal sums the change amounts recorded for the guild
func (l *FakeLedger) RecordedTotal(guildID int64) int64 {
	var total int64
	for _, r := range l.Records() {
		if r.GuildID == guildID {
			total += r.ChangeAmount
		}
	}
	return total
}
