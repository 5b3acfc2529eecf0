package services

import (
	"context"
	"errors"
	"fmt"

	"casinobot/domain/entities"
	"casinobot/domain/interfaces"
	"casinobot/domain/utils"

	log "github.com/sirupsen/logrus"
)

// ledgerService runs every operation in its own guild-scoped unit of work
type ledgerService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory interfaces.UnitOfWorkFactory) interfaces.LedgerService {
	return &ledgerService{uowFactory: uowFactory}
}

// inTransaction commits only when fn succeeds. Sentinel errors from fn roll
// back and are returned unwrapped so callers can map them to results.
func (s *ledgerService) inTransaction(ctx context.Context, guildID int64, fn func(uow interfaces.UnitOfWork) error) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := fn(uow); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func validateAmount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}
	return nil
}

func (s *ledgerService) EnsureAccount(ctx context.Context, guildID, userID int64) error {
	return s.inTransaction(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		if _, err := uow.AccountRepository().Ensure(ctx, userID); err != nil {
			return fmt.Errorf("failed to ensure account: %w", err)
		}
		return nil
	})
}

func (s *ledgerService) DebitIfSufficient(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (*entities.DebitResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	result := &entities.DebitResult{}
	err := s.inTransaction(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		before, after, ok, err := uow.AccountRepository().DeductIfSufficient(ctx, userID, amount)
		if err != nil {
			return fmt.Errorf("failed to debit user: %w", err)
		}
		if !ok {
			return ErrInsufficientFunds
		}

		record := entities.NewUserRecord(guildID, userID, before, -amount, txType, metadata)
		if err := utils.RecordBalanceChange(ctx, uow.TransactionRepository(), uow.EventPublisher(), record); err != nil {
			return err
		}

		result.OK = true
		result.NewBalance = after
		return nil
	})
	if errors.Is(err, ErrInsufficientFunds) {
		balance, balanceErr := s.GetBalance(ctx, guildID, userID)
		if balanceErr != nil {
			return nil, balanceErr
		}
		log.WithFields(log.Fields{
			"guildID": guildID,
			"userID":  userID,
			"amount":  amount,
			"balance": balance,
		}).Debug("Debit rejected for insufficient funds")
		return &entities.DebitResult{OK: false, NewBalance: balance}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ledgerService) Credit(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
	if err := validateAmount(amount); err != nil {
		return 0, err
	}

	var newBalance int64
	err := s.inTransaction(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		before, after, err := uow.AccountRepository().AddBalance(ctx, userID, amount)
		if err != nil {
			return fmt.Errorf("failed to credit user: %w", err)
		}

		record := entities.NewUserRecord(guildID, userID, before, amount, txType, metadata)
		if err := utils.RecordBalanceChange(ctx, uow.TransactionRepository(), uow.EventPublisher(), record); err != nil {
			return err
		}
		newBalance = after
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"guildID":         guildID,
		"userID":          userID,
		"amount":          amount,
		"transactionType": txType,
	}).Info("Credited user account")
	return newBalance, nil
}

func (s *ledgerService) BankDebitIfSufficientThenCreditUser(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (*entities.BankPayoutResult, error) {
	if err := validateAmount(amount); err != nil {
		return nil, err
	}

	result := &entities.BankPayoutResult{}
	err := s.inTransaction(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		bankBefore, bankAfter, ok, err := uow.BankRepository().DeductIfSufficient(ctx, amount)
		if err != nil {
			return fmt.Errorf("failed to debit bank: %w", err)
		}
		if !ok {
			return ErrBankShortfall
		}

		bankRecord := entities.NewBankRecord(guildID, bankBefore, -amount, txType, metadata)
		if err := utils.RecordBalanceChange(ctx, uow.TransactionRepository(), uow.EventPublisher(), bankRecord); err != nil {
			return err
		}

		userBefore, userAfter, err := uow.AccountRepository().AddBalance(ctx, userID, amount)
		if err != nil {
			return fmt.Errorf("failed to credit user: %w", err)
		}

		userRecord := entities.NewUserRecord(guildID, userID, userBefore, amount, txType, metadata)
		if err := utils.RecordBalanceChange(ctx, uow.TransactionRepository(), uow.EventPublisher(), userRecord); err != nil {
			return err
		}

		result.OK = true
		result.BankBalance = bankAfter
		result.UserBalance = userAfter
		return nil
	})
	if errors.Is(err, ErrBankShortfall) {
		bankBalance, balanceErr := s.GetBankBalance(ctx, guildID)
		if balanceErr != nil {
			return nil, balanceErr
		}
		log.WithFields(log.Fields{
			"guildID":     guildID,
			"userID":      userID,
			"amount":      amount,
			"bankBalance": bankBalance,
		}).Warn("Bank could not cover payout")
		return &entities.BankPayoutResult{OK: false, BankBalance: bankBalance}, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ledgerService) BankCredit(ctx context.Context, guildID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error) {
	if err := validateAmount(amount); err != nil {
		return 0, err
	}

	var newBalance int64
	err := s.inTransaction(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		before, after, err := uow.BankRepository().Add(ctx, amount)
		if err != nil {
			return fmt.Errorf("failed to credit bank: %w", err)
		}

		record := entities.NewBankRecord(guildID, before, amount, txType, metadata)
		if err := utils.RecordBalanceChange(ctx, uow.TransactionRepository(), uow.EventPublisher(), record); err != nil {
			return err
		}
		newBalance = after
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (s *ledgerService) ChargeWager(ctx context.Context, guildID, userID int64, charge entities.WagerCharge, metadata map[string]any) (*entities.ChargeResult, error) {
	if err := validateAmount(charge.Stake); err != nil {
		return nil, err
	}
	if charge.FeeAmount < 0 || charge.TotalCharge != charge.Stake+charge.FeeAmount {
		return nil, fmt.Errorf("inconsistent wager charge: stake %d fee %d total %d", charge.Stake, charge.FeeAmount, charge.TotalCharge)
	}

	result := &entities.ChargeResult{}
	err := s.inTransaction(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		txRepo := uow.TransactionRepository()
		publisher := uow.EventPublisher()

		before, after, ok, err := uow.AccountRepository().DeductIfSufficient(ctx, userID, charge.TotalCharge)
		if err != nil {
			return fmt.Errorf("failed to debit user: %w", err)
		}
		if !ok {
			return ErrInsufficientFunds
		}

		// One debit, recorded as stake then fee so the fee stays distinguishable
		stakeRecord := entities.NewUserRecord(guildID, userID, before, -charge.Stake, entities.TransactionTypeBlackjackBet, metadata)
		if err := utils.RecordBalanceChange(ctx, txRepo, publisher, stakeRecord); err != nil {
			return err
		}
		if charge.FeeAmount > 0 {
			feeRecord := entities.NewUserRecord(guildID, userID, stakeRecord.BalanceAfter, -charge.FeeAmount, entities.TransactionTypeCasinoFee, metadata)
			if err := utils.RecordBalanceChange(ctx, txRepo, publisher, feeRecord); err != nil {
				return err
			}
		}

		bankBefore, bankAfter, err := uow.BankRepository().Add(ctx, charge.Stake)
		if err != nil {
			return fmt.Errorf("failed to deposit stake: %w", err)
		}
		if err := utils.RecordBalanceChange(ctx, txRepo, publisher,
			entities.NewBankRecord(guildID, bankBefore, charge.Stake, entities.TransactionTypeBlackjackBet, metadata)); err != nil {
			return err
		}

		if charge.FeeAmount > 0 {
			bankBefore, bankAfter, err = uow.BankRepository().Add(ctx, charge.FeeAmount)
			if err != nil {
				return fmt.Errorf("failed to deposit fee: %w", err)
			}
			if err := utils.RecordBalanceChange(ctx, txRepo, publisher,
				entities.NewBankRecord(guildID, bankBefore, charge.FeeAmount, entities.TransactionTypeCasinoFee, metadata)); err != nil {
				return err
			}
		}

		result.OK = true
		result.NewBalance = after
		result.BankBalance = bankAfter
		return nil
	})
	if errors.Is(err, ErrInsufficientFunds) {
		balance, balanceErr := s.GetBalance(ctx, guildID, userID)
		if balanceErr != nil {
			return nil, balanceErr
		}
		return &entities.ChargeResult{OK: false, NewBalance: balance}, nil
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guildID": guildID,
		"userID":  userID,
		"stake":   charge.Stake,
		"fee":     charge.FeeAmount,
	}).Debug("Charged wager")
	return result, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, guildID, userID int64) (int64, error) {
	var balance int64
	err := s.read(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		account, err := uow.AccountRepository().Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get account: %w", err)
		}
		if account != nil {
			balance = account.Balance
		}
		return nil
	})
	return balance, err
}

func (s *ledgerService) GetBankBalance(ctx context.Context, guildID int64) (int64, error) {
	var balance int64
	err := s.read(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		bank, err := uow.BankRepository().Get(ctx)
		if err != nil {
			return fmt.Errorf("failed to get bank: %w", err)
		}
		if bank != nil {
			balance = bank.Balance
		}
		return nil
	})
	return balance, err
}

func (s *ledgerService) GetHistory(ctx context.Context, guildID, userID int64, limit int) ([]*entities.TransactionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var history []*entities.TransactionRecord
	err := s.read(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		records, err := uow.TransactionRepository().GetByUser(ctx, userID, limit)
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}
		history = records
		return nil
	})
	return history, err
}

// Audit reads balances and the log inside one transaction so they describe the same moment
func (s *ledgerService) Audit(ctx context.Context, guildID int64) (*entities.LedgerAudit, error) {
	audit := &entities.LedgerAudit{GuildID: guildID}
	err := s.read(ctx, guildID, func(uow interfaces.UnitOfWork) error {
		accounts, err := uow.AccountRepository().SumBalances(ctx)
		if err != nil {
			return err
		}
		bank, err := uow.BankRepository().Get(ctx)
		if err != nil {
			return fmt.Errorf("failed to get bank: %w", err)
		}
		recorded, err := uow.TransactionRepository().SumByGuild(ctx)
		if err != nil {
			return err
		}
		audit.AccountTotal = accounts
		if bank != nil {
			audit.BankBalance = bank.Balance
		}
		audit.Recorded = recorded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return audit, nil
}

// read runs fn in a transaction that is always rolled back
func (s *ledgerService) read(ctx context.Context, guildID int64, fn func(uow interfaces.UnitOfWork) error) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()
	return fn(uow)
}
