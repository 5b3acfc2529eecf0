package services

import "errors"

var (
	// ErrInsufficientFunds means a user account could not cover a debit
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrBankShortfall means the guild bank could not cover a payout
	ErrBankShortfall = errors.New("bank cannot cover payout")
)
