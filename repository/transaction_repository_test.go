package repository

import (
	"context"
	"testing"
	"time"

	"casinobot/domain/entities"
	"casinobot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRepository_RecordAndRead(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewTransactionRepository(testDB.DB, testutil.TestGuildID)
	ctx := context.Background()

	bet := testutil.CreateTestUserRecord(7, 1000, -100, entities.TransactionTypeBlackjackBet)
	require.NoError(t, repo.Record(ctx, bet))
	assert.NotZero(t, bet.ID)
	assert.False(t, bet.CreatedAt.IsZero())

	payout := testutil.CreateTestUserRecord(7, 900, 200, entities.TransactionTypeBlackjackPayout)
	require.NoError(t, repo.Record(ctx, payout))

	bank := testutil.CreateTestBankRecord(0, 100, entities.TransactionTypeBlackjackBet)
	require.NoError(t, repo.Record(ctx, bank))

	records, err := repo.GetByUser(ctx, 7, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, entities.TransactionTypeBlackjackPayout, records[0].TransactionType)
	assert.Equal(t, true, records[0].TransactionMetadata["test"])

	total, err := repo.SumByGuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(200), total)
}

func TestTransactionRepository_RejectsInvalidRecords(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewTransactionRepository(testDB.DB, testutil.TestGuildID)

	record := testutil.CreateTestUserRecord(7, 100, 0, entities.TransactionTypeGrant)
	err := repo.Record(context.Background(), record)
	assert.ErrorContains(t, err, "invalid transaction record")
}

func TestTransactionRepository_SumByUserTypesSince(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewTransactionRepository(testDB.DB, testutil.TestGuildID)
	ctx := context.Background()

	for _, r := range []*entities.TransactionRecord{
		testutil.CreateTestUserRecord(8, 10000, -1000, entities.TransactionTypeBlackjackBet),
		testutil.CreateTestUserRecord(8, 9000, 2500, entities.TransactionTypeBlackjackPayout),
		testutil.CreateTestUserRecord(8, 11500, -50, entities.TransactionTypeCasinoFee),
		testutil.CreateTestUserRecord(8, 11450, 5000, entities.TransactionTypeGrant),
	} {
		require.NoError(t, repo.Record(ctx, r))
	}

	casino := []entities.TransactionType{entities.TransactionTypeBlackjackBet, entities.TransactionTypeBlackjackPayout}

	net, err := repo.SumByUserTypesSince(ctx, 8, casino, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), net)

	future, err := repo.SumByUserTypesSince(ctx, 8, casino, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), future)

	none, err := repo.SumByUserTypesSince(ctx, 8, nil, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), none)
}
