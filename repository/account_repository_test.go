package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"casinobot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_EnsureAndAdd(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB, testutil.TestGuildID)
	ctx := context.Background()

	t.Run("missing account is nil", func(t *testing.T) {
		account, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("ensure is idempotent", func(t *testing.T) {
		first, err := repo.Ensure(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(0), first.Balance)

		second, err := repo.Ensure(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("add creates on first use", func(t *testing.T) {
		before, after, err := repo.AddBalance(ctx, 3, 500)
		require.NoError(t, err)
		assert.Equal(t, int64(0), before)
		assert.Equal(t, int64(500), after)

		before, after, err = repo.AddBalance(ctx, 3, 250)
		require.NoError(t, err)
		assert.Equal(t, int64(500), before)
		assert.Equal(t, int64(750), after)
	})

	t.Run("accounts are guild scoped", func(t *testing.T) {
		other := NewAccountRepository(testDB.DB, testutil.TestGuildID+1)
		account, err := other.Get(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("sum balances covers the guild only", func(t *testing.T) {
		total, err := repo.SumBalances(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(750), total)

		total, err = NewAccountRepository(testDB.DB, testutil.TestGuildID+1).SumBalances(ctx)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestAccountRepository_DeductIfSufficient(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB, testutil.TestGuildID)
	ctx := context.Background()

	_, _, err := repo.AddBalance(ctx, 10, 1000)
	require.NoError(t, err)

	before, after, ok, err := repo.DeductIfSufficient(ctx, 10, 400)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(1000), before)
	assert.Equal(t, int64(600), after)

	_, _, ok, err = repo.DeductIfSufficient(ctx, 10, 601)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, ok, err = repo.DeductIfSufficient(ctx, 999, 1)
	require.NoError(t, err)
	assert.False(t, ok, "missing account cannot be debited")

	account, err := repo.Get(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(600), account.Balance)
}

func TestAccountRepository_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewAccountRepository(testDB.DB, testutil.TestGuildID)
	ctx := context.Background()

	_, _, err := repo.AddBalance(ctx, 20, 1000)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var succeeded int64
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, ok, err := repo.DeductIfSufficient(ctx, 20, 100)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt64(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), succeeded)
	account, err := repo.Get(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance)
}
