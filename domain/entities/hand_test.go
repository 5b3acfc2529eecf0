package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func c(rank Rank) Card {
	return Card{Rank: rank, Suit: SuitSpades}
}

func TestHand_Value(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cards   []Card
		value   int
		soft    bool
		natural bool
		bust    bool
	}{
		{name: "two aces", cards: []Card{c(RankAce), c(RankAce)}, value: 12, soft: true},
		{name: "two aces and nine", cards: []Card{c(RankAce), c(RankAce), c(RankNine)}, value: 21, soft: true},
		{name: "king queen", cards: []Card{c(RankKing), c(RankQueen)}, value: 20},
		{name: "ace king", cards: []Card{c(RankAce), c(RankKing)}, value: 21, soft: true, natural: true},
		{name: "three card 21 is not natural", cards: []Card{c(RankSeven), c(RankSeven), c(RankSeven)}, value: 21},
		{name: "bust", cards: []Card{c(RankKing), c(RankQueen), c(RankTwo)}, value: 22, bust: true},
		{name: "ace demoted", cards: []Card{c(RankAce), c(RankNine), c(RankFive)}, value: 15},
		{name: "empty", cards: nil, value: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hand := NewHand(tt.cards...)
			assert.Equal(t, tt.value, hand.Value())
			assert.Equal(t, tt.soft, hand.IsSoft())
			assert.Equal(t, tt.natural, hand.IsNatural())
			assert.Equal(t, tt.bust, hand.IsBust())
		})
	}
}

func TestHand_IsPair(t *testing.T) {
	t.Parallel()

	assert.True(t, NewHand(c(RankKing), Card{Rank: RankKing, Suit: SuitHearts}).IsPair())
	assert.False(t, NewHand(c(RankKing), c(RankQueen)).IsPair(), "equal value is not equal rank")
	assert.False(t, NewHand(c(RankEight), c(RankEight), c(RankTwo)).IsPair())
}

func TestPlayerHand_SplitHandIsNeverBlackjack(t *testing.T) {
	t.Parallel()

	hand := &PlayerHand{Hand: NewHand(c(RankAce), c(RankKing)), Status: HandStatusPlaying, FromSplit: true}
	assert.False(t, hand.IsNaturalBlackjack())

	hand.FromSplit = false
	assert.True(t, hand.IsNaturalBlackjack())
}

func TestPlayerHand_SettleAfterCard(t *testing.T) {
	t.Parallel()

	hand := &PlayerHand{Hand: NewHand(c(RankTen), c(RankSix)), Status: HandStatusPlaying}
	hand.SettleAfterCard()
	assert.Equal(t, HandStatusPlaying, hand.Status)

	hand.Hand.Add(c(RankFive))
	hand.SettleAfterCard()
	assert.Equal(t, HandStatusStood, hand.Status)

	busted := &PlayerHand{Hand: NewHand(c(RankTen), c(RankSix), c(RankKing)), Status: HandStatusPlaying}
	busted.SettleAfterCard()
	assert.Equal(t, HandStatusBusted, busted.Status)
}
