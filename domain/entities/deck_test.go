package entities

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeck_HasEveryCardOnce(t *testing.T) {
	t.Parallel()

	deck := NewDeck(RandShuffler(rand.New(rand.NewSource(7))))
	require.Equal(t, DeckSize, deck.Remaining())

	seen := make(map[Card]bool)
	for i := 0; i < DeckSize; i++ {
		card := deck.Draw()
		assert.False(t, seen[card], "duplicate card %s", card)
		seen[card] = true
	}
	assert.Len(t, seen, DeckSize)
	assert.Equal(t, 0, deck.Remaining())
}

func TestDeck_ReshufflesWhenExhausted(t *testing.T) {
	t.Parallel()

	deck := NewStackedDeck(nil, c(RankAce))
	assert.Equal(t, c(RankAce), deck.Draw())
	assert.Equal(t, 0, deck.Remaining())

	deck.Draw()
	assert.Equal(t, 1, deck.Reshuffles())
	assert.Equal(t, DeckSize-1, deck.Remaining())
}

func TestStackedDeck_DealsInOrder(t *testing.T) {
	t.Parallel()

	deck := NewStackedDeck(nil, c(RankTwo), c(RankThree), c(RankFour))
	assert.Equal(t, RankTwo, deck.Draw().Rank)
	assert.Equal(t, RankThree, deck.Draw().Rank)
	assert.Equal(t, RankFour, deck.Draw().Rank)
}
