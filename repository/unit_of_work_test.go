package repository

import (
	"context"
	"testing"
	"time"

	"casinobot/domain/entities"
	"casinobot/events"
	"casinobot/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()
	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		received <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	uow := factory.CreateForGuild(testutil.TestGuildID)
	require.NoError(t, uow.Begin(ctx))
	_, _, err := uow.AccountRepository().AddBalance(ctx, 1, 100)
	require.NoError(t, err)
	require.NoError(t, uow.EventPublisher().Publish(events.BalanceChangeEvent{UserID: 1, NewBalance: 100}))
	require.NoError(t, uow.Commit())

	select {
	case e := <-received:
		assert.Equal(t, int64(100), e.(events.BalanceChangeEvent).NewBalance)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered after commit")
	}
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	bus := events.NewBus()
	received := make(chan events.Event, 1)
	bus.Subscribe(events.EventTypeBalanceChange, func(ctx context.Context, e events.Event) {
		received <- e
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)
	ctx := context.Background()

	uow := factory.CreateForGuild(testutil.TestGuildID)
	require.NoError(t, uow.Begin(ctx))
	_, _, err := uow.AccountRepository().AddBalance(ctx, 2, 100)
	require.NoError(t, err)
	require.NoError(t, uow.TransactionRepository().Record(ctx, testutil.CreateTestUserRecord(2, 0, 100, entities.TransactionTypeGrant)))
	_ = uow.EventPublisher().Publish(events.BalanceChangeEvent{UserID: 2})
	require.NoError(t, uow.Rollback())

	account, err := NewAccountRepository(testDB.DB, testutil.TestGuildID).Get(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, account)

	total, err := NewTransactionRepository(testDB.DB, testutil.TestGuildID).SumByGuild(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)

	select {
	case <-received:
		t.Fatal("event delivered after rollback")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestUnitOfWork_RepositoriesRequireBegin(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	uow := NewUnitOfWorkFactory(testDB.DB, events.NewBus()).CreateForGuild(testutil.TestGuildID)

	assert.Panics(t, func() { uow.AccountRepository() })
	assert.Error(t, uow.Commit())
	assert.NoError(t, uow.Rollback())
}
