package entities

// TransactionType represents the type of balance change
type TransactionType string

// All transaction types supported by the ledger
const (
	// Casino transactions
	TransactionTypeBlackjackBet    TransactionType = "blackjack_bet"
	TransactionTypeBlackjackPayout TransactionType = "blackjack_payout"
	TransactionTypeBlackjackPush   TransactionType = "blackjack_push"
	TransactionTypeBlackjackRefund TransactionType = "blackjack_refund"
	TransactionTypeCasinoFee       TransactionType = "casino_fee"

	// Minting transactions, the only ones that create money
	TransactionTypeGrant       TransactionType = "grant"
	TransactionTypeBankDeposit TransactionType = "bank_deposit"
)

// IsCasinoStake returns true if money moved into the bank as a wager
func (tt TransactionType) IsCasinoStake() bool {
	return tt == TransactionTypeBlackjackBet
}

// IsCasinoReturn returns true if money moved out of the bank back to a player
func (tt TransactionType) IsCasinoReturn() bool {
	return tt == TransactionTypeBlackjackPayout ||
		tt == TransactionTypeBlackjackPush ||
		tt == TransactionTypeBlackjackRefund
}

// IsMint returns true if the transaction creates money rather than moving it
func (tt TransactionType) IsMint() bool {
	return tt == TransactionTypeGrant || tt == TransactionTypeBankDeposit
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}

// ParseTransactionTypes converts configured type names, dropping blanks
func ParseTransactionTypes(names []string) []TransactionType {
	types := make([]TransactionType, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		types = append(types, TransactionType(name))
	}
	return types
}
