package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *BlackjackSession {
	return NewBlackjackSession("s1", TableScope{GuildID: 1, ChannelID: 2}, 10, SecurityTier{}, 100, 6, NewStackedDeck(nil), time.Unix(0, 0))
}

func TestBlackjackSession_SeatAndUnseat(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	s.Seat(&BlackjackPlayer{UserID: 10})
	s.Seat(&BlackjackPlayer{UserID: 11})
	s.Seat(&BlackjackPlayer{UserID: 12})

	s.Unseat(11)
	assert.Equal(t, []int64{10, 12}, s.SeatOrder)
	assert.Nil(t, s.Player(11))
	assert.Len(t, s.SeatedPlayers(), 2)
}

func TestBlackjackSession_InsertTurnAfterCurrent(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	s.State = SessionStatePlaying
	s.TurnOrder = []TurnSlot{{UserID: 1}, {UserID: 2}}
	s.TurnIndex = 0

	s.InsertTurnAfterCurrent(TurnSlot{UserID: 1, HandIndex: 1})
	assert.Equal(t, []TurnSlot{{UserID: 1}, {UserID: 1, HandIndex: 1}, {UserID: 2}}, s.TurnOrder)
}

func TestBlackjackSession_SnapshotHidesHoleCardAndCopies(t *testing.T) {
	t.Parallel()

	s := newTestSession()
	s.Seat(&BlackjackPlayer{UserID: 10, Bet: 100, Hands: []*PlayerHand{{Hand: NewHand(c(RankTen), c(RankSix)), Bet: 100, Status: HandStatusPlaying}}})
	s.State = SessionStatePlaying
	s.TurnOrder = []TurnSlot{{UserID: 10}}
	s.DealerHand = NewHand(c(RankNine), c(RankKing))

	snap := s.Snapshot()
	require.True(t, snap.DealerHidden)
	assert.Len(t, snap.DealerCards, 1)
	assert.Equal(t, 9, snap.DealerValue)
	require.NotNil(t, snap.CurrentTurn)

	snap.Players[0].Hands[0].Hand.Add(c(RankTwo))
	assert.Equal(t, 2, s.Players[10].Hands[0].Hand.Len(), "snapshot must not alias session state")

	s.State = SessionStateEnded
	ended := s.Snapshot()
	assert.False(t, ended.DealerHidden)
	assert.Equal(t, 19, ended.DealerValue)
	assert.Nil(t, ended.CurrentTurn)
}
