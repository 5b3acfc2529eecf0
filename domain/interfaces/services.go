package interfaces

import (
	"context"
	"time"

	"casinobot/domain/entities"
)

// LedgerService moves money. Insufficient funds is reported through result
// structs with OK set to false; errors are reserved for infrastructure failures.
type LedgerService interface {
	// EnsureAccount creates the user's account with a zero balance if missing
	EnsureAccount(ctx context.Context, guildID, userID int64) error

	// DebitIfSufficient atomically removes amount from the user if they can cover it
	DebitIfSufficient(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (*entities.DebitResult, error)

	// Credit mints amount into the user's account. Never used for casino wins.
	Credit(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error)

	// BankDebitIfSufficientThenCreditUser moves amount from the guild bank to
	// the user in one transaction, or does nothing if the bank cannot cover it
	BankDebitIfSufficientThenCreditUser(ctx context.Context, guildID, userID, amount int64, txType entities.TransactionType, metadata map[string]any) (*entities.BankPayoutResult, error)

	// BankCredit adds amount to the guild bank
	BankCredit(ctx context.Context, guildID, amount int64, txType entities.TransactionType, metadata map[string]any) (int64, error)

	// ChargeWager debits stake plus fee from the user and deposits both into the bank
	ChargeWager(ctx context.Context, guildID, userID int64, charge entities.WagerCharge, metadata map[string]any) (*entities.ChargeResult, error)

	GetBalance(ctx context.Context, guildID, userID int64) (int64, error)
	GetBankBalance(ctx context.Context, guildID int64) (int64, error)
	GetHistory(ctx context.Context, guildID, userID int64, limit int) ([]*entities.TransactionRecord, error)

	// Audit checks that account and bank balances match the recorded log
	Audit(ctx context.Context, guildID int64) (*entities.LedgerAudit, error)
}

// SecurityTierService classifies players by recent casino winnings
type SecurityTierService interface {
	// GetNetCasinoProfit sums the user's casino transactions inside the trailing window
	GetNetCasinoProfit(ctx context.Context, guildID, userID int64, window time.Duration) (int64, error)

	// GetSecurityTier returns the highest tier whose threshold the user's net profit reaches
	GetSecurityTier(ctx context.Context, guildID, userID int64) (entities.SecurityTier, error)
}

// BlackjackService runs multiplayer blackjack tables. Every command returns
// a TableResult; a non-nil error means infrastructure failed.
type BlackjackService interface {
	// Create opens a lobby in an idle scope and seats the host with the given bet (0 means the table minimum)
	Create(ctx context.Context, scope entities.TableScope, hostUserID, bet int64) (*entities.TableResult, error)
	Join(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error)
	Leave(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error)
	SetBet(ctx context.Context, scope entities.TableScope, userID, amount int64) (*entities.TableResult, error)
	Pay(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error)
	Start(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error)
	Hit(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error)
	Stand(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error)
	DoubleDown(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error)
	Split(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error)
	End(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error)

	// Dispatch routes a decoded action request to the matching command
	Dispatch(ctx context.Context, req entities.ActionRequest) (*entities.TableResult, error)

	// Snapshot returns a copy of the scope's current session, if any
	Snapshot(scope entities.TableScope) (*entities.SessionSnapshot, bool)
}
