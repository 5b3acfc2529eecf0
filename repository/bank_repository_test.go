package repository

import (
	"context"
	"testing"

	"casinobot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBankRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBankRepository(testDB.DB, testutil.TestGuildID)
	ctx := context.Background()

	bank, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, bank)

	bank, err = repo.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bank.Balance)

	_, _, ok, err := repo.DeductIfSufficient(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok, "empty bank cannot pay")

	before, after, err := repo.Add(ctx, 400)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before)
	assert.Equal(t, int64(400), after)

	_, _, ok, err = repo.DeductIfSufficient(ctx, 1000)
	require.NoError(t, err)
	assert.False(t, ok)

	before, after, ok, err = repo.DeductIfSufficient(ctx, 400)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(400), before)
	assert.Equal(t, int64(0), after)
}
