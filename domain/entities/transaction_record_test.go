package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionRecord_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		record  *TransactionRecord
		wantErr string
	}{
		{name: "valid user debit", record: NewUserRecord(1, 2, 500, -100, TransactionTypeBlackjackBet, nil)},
		{name: "valid bank credit", record: NewBankRecord(1, 0, 100, TransactionTypeBlackjackBet, nil)},
		{name: "zero change", record: NewUserRecord(1, 2, 500, 0, TransactionTypeGrant, nil), wantErr: "zero"},
		{name: "negative result", record: NewUserRecord(1, 2, 50, -100, TransactionTypeBlackjackBet, nil), wantErr: "negative"},
		{name: "missing type", record: NewUserRecord(1, 2, 0, 5, "", nil), wantErr: "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.record.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewBankRecord_HasNoUser(t *testing.T) {
	t.Parallel()

	assert.True(t, NewBankRecord(1, 0, 10, TransactionTypeBankDeposit, nil).IsBankEntry())
	assert.False(t, NewUserRecord(1, 2, 0, 10, TransactionTypeGrant, nil).IsBankEntry())
}
