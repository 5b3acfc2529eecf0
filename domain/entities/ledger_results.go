package entities

// DebitResult is the outcome of a conditional debit. OK is false when the
// account could not cover the amount; nothing was written in that case.
type DebitResult struct {
	OK         bool
	NewBalance int64
}

// BankPayoutResult is the outcome of a bank-funded credit. OK is false when
// the bank could not cover the amount; nothing was written in that case.
type BankPayoutResult struct {
	OK          bool
	BankBalance int64
	UserBalance int64
}

// WagerCharge is the priced cost of a wager
type WagerCharge struct {
	Stake       int64
	FeeAmount   int64
	TotalCharge int64
}

// ChargeResult is the outcome of charging a wager against a user account
type ChargeResult struct {
	OK          bool
	NewBalance  int64
	BankBalance int64
}

// LedgerAudit compares what the guild holds against what its log explains.
// Balanced is false when some balance moved without a matching record.
type LedgerAudit struct {
	GuildID      int64
	AccountTotal int64
	BankBalance  int64
	Recorded     int64
}

// Held is every bit currently sitting in accounts or the bank
func (a *LedgerAudit) Held() int64 {
	return a.AccountTotal + a.BankBalance
}

func (a *LedgerAudit) Balanced() bool {
	return a.Held() == a.Recorded
}
