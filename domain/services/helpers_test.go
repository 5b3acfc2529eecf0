package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"casinobot/config"
	"casinobot/domain/entities"
	"casinobot/domain/testhelpers"
	"casinobot/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Test constants for consistent test data
const (
	TestGuildID     = int64(555555555)
	TestChannelID   = int64(987654321)
	TestHostID      = int64(100)
	TestPlayerID    = int64(200)
	TestBankroll    = int64(10000)
	TestHouseFunds  = int64(100000)
	TestTurnTimeout = 60 * time.Second
	TestLobbyIdle   = 5 * time.Minute
	TestGracePeriod = 15 * time.Second
)

var testScope = entities.TableScope{GuildID: TestGuildID, ChannelID: TestChannelID}

func card(rank entities.Rank) entities.Card {
	return entities.Card{Rank: rank, Suit: entities.SuitSpades}
}

func cards(ranks ...entities.Rank) []entities.Card {
	out := make([]entities.Card, len(ranks))
	for i, r := range ranks {
		out[i] = card(r)
	}
	return out
}

func feeTier(level int, pct string) entities.SecurityTier {
	return entities.SecurityTier{Level: level, FeePct: decimal.RequireFromString(pct)}
}

// fakeTimer is fired by hand from tests
type fakeTimer struct {
	s       *fakeScheduler
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeScheduler records armed callbacks instead of running them
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, d: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// pending returns armed, unstopped, unfired timers of duration d
func (s *fakeScheduler) pending(d time.Duration) []*fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*fakeTimer
	for _, t := range s.timers {
		if t.d == d && !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fire runs every pending timer of duration d and returns how many ran
func (s *fakeScheduler) fire(d time.Duration) int {
	due := s.pending(d)
	for _, t := range due {
		s.mu.Lock()
		t.fired = true
		s.mu.Unlock()
		t.fn()
	}
	return len(due)
}

// recordingPublisher keeps every published event in order
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(eventType events.EventType) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// engineFixture wires an engine to an in-memory ledger
type engineFixture struct {
	t         *testing.T
	ctx       context.Context
	engine    *BlackjackEngine
	registry  *BlackjackRegistry
	ledger    *testhelpers.FakeLedger
	security  *testhelpers.MockSecurityTierService
	scheduler *fakeScheduler
	publisher *recordingPublisher
	nextCards []entities.Card
	ids       atomic.Int64
	now       time.Time
}

type fixtureOption func(f *engineFixture)

// withTier pins a user's live security tier
func withTier(userID int64, tier entities.SecurityTier) fixtureOption {
	return func(f *engineFixture) {
		f.security.On("GetSecurityTier", mock.Anything, TestGuildID, userID).Return(tier, nil)
	}
}

func newEngineFixture(t *testing.T, opts ...fixtureOption) *engineFixture {
	t.Helper()

	f := &engineFixture{
		t:         t,
		ctx:       context.Background(),
		registry:  NewBlackjackRegistry(),
		ledger:    testhelpers.NewFakeLedger(),
		security:  new(testhelpers.MockSecurityTierService),
		scheduler: &fakeScheduler{},
		publisher: &recordingPublisher{},
		now:       time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.security.On("GetSecurityTier", mock.Anything, mock.Anything, mock.Anything).Return(feeTier(0, "0"), nil)

	cfg := config.BlackjackConfig{
		MinBet:             100,
		MaxPlayers:         3,
		TurnTimeout:        TestTurnTimeout,
		LobbyTimeout:       TestLobbyIdle,
		ResultsGracePeriod: TestGracePeriod,
	}

	f.engine = NewBlackjackEngine(
		f.ledger,
		f.security,
		NewFeeCalculator(decimal.RequireFromString("0.10")),
		f.publisher,
		f.registry,
		cfg,
		WithClock(func() time.Time { return f.now }),
		WithScheduler(f.scheduler),
		WithDeckFactory(func() *entities.Deck { return entities.NewStackedDeck(nil, f.nextCards...) }),
		WithIDGenerator(func() string {
			return fmt.Sprintf("session-%d", f.ids.Add(1))
		}),
	)

	_, err := f.ledger.BankCredit(f.ctx, TestGuildID, TestHouseFunds, entities.TransactionTypeBankDeposit, nil)
	require.NoError(t, err)
	return f
}

// fund grants each user the standard bankroll
func (f *engineFixture) fund(userIDs ...int64) {
	for _, id := range userIDs {
		_, err := f.ledger.Credit(f.ctx, TestGuildID, id, TestBankroll, entities.TransactionTypeGrant, nil)
		require.NoError(f.t, err)
	}
}

func (f *engineFixture) balance(userID int64) int64 {
	b, err := f.ledger.GetBalance(f.ctx, TestGuildID, userID)
	require.NoError(f.t, err)
	return b
}

func (f *engineFixture) bank() int64 {
	b, err := f.ledger.GetBankBalance(f.ctx, TestGuildID)
	require.NoError(f.t, err)
	return b
}

// must runs a command and fails the test unless it was accepted
func (f *engineFixture) must(result *entities.TableResult, err error) *entities.TableResult {
	f.t.Helper()
	require.NoError(f.t, err)
	require.NotNil(f.t, result)
	require.True(f.t, result.OK, "command rejected: %s", result.Reason)
	return result
}

// reject asserts the command it wraps was turned down for reason:
// f.reject(reason)(f.engine.Hit(...))
func (f *engineFixture) reject(reason entities.RejectReason) func(*entities.TableResult, error) *entities.TableResult {
	return func(result *entities.TableResult, err error) *entities.TableResult {
		f.t.Helper()
		require.NoError(f.t, err)
		require.NotNil(f.t, result)
		require.False(f.t, result.OK, "command unexpectedly accepted")
		require.Equal(f.t, reason, result.Reason)
		return result
	}
}

// openPaidTable deals cards, seats host and guests at bet and has everyone pay
func (f *engineFixture) openPaidTable(bet int64, deck []entities.Card, guests ...int64) {
	f.t.Helper()
	f.nextCards = deck
	f.must(f.engine.Create(f.ctx, testScope, TestHostID, bet))
	for _, g := range guests {
		f.must(f.engine.Join(f.ctx, testScope, g))
		f.must(f.engine.SetBet(f.ctx, testScope, g, bet))
	}
	f.must(f.engine.Pay(f.ctx, testScope, TestHostID))
	for _, g := range guests {
		f.must(f.engine.Pay(f.ctx, testScope, g))
	}
}

// assertConserved checks every unit of money is accounted for in the ledger log
func (f *engineFixture) assertConserved() {
	f.t.Helper()
	audit, err := f.ledger.Audit(f.ctx, TestGuildID)
	require.NoError(f.t, err)
	require.True(f.t, audit.Balanced(), "ledger records must explain every balance: held %d, recorded %d", audit.Held(), audit.Recorded)
	for _, r := range f.ledger.Records() {
		require.GreaterOrEqual(f.t, r.BalanceAfter, int64(0))
	}
}
