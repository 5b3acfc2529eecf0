package services

import (
	"testing"

	"casinobot/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestSettleHand(t *testing.T) {
	t.Parallel()

	hand := func(status entities.HandStatus, fromSplit bool, ranks ...entities.Rank) *entities.PlayerHand {
		return &entities.PlayerHand{
			Hand:      entities.NewHand(cards(ranks...)...),
			Bet:       100,
			Status:    status,
			FromSplit: fromSplit,
		}
	}
	dealer := func(ranks ...entities.Rank) entities.Hand {
		return entities.NewHand(cards(ranks...)...)
	}

	tests := []struct {
		name        string
		hand        *entities.PlayerHand
		dealer      entities.Hand
		wantOutcome entities.Outcome
		wantOwed    int64
	}{
		{"bust loses even against dealer bust", hand(entities.HandStatusBusted, false, 10, 6, 9), dealer(10, 6, 10), entities.OutcomeLose, 0},
		{"natural pays three to two", hand(entities.HandStatusBlackjack, false, 1, 13), dealer(10, 9), entities.OutcomeBlackjack, 250},
		{"natural against dealer natural pushes", hand(entities.HandStatusBlackjack, false, 1, 13), dealer(1, 12), entities.OutcomePush, 100},
		{"natural against dealer bust is an even money win", hand(entities.HandStatusBlackjack, false, 1, 10), dealer(10, 6, 8), entities.OutcomeWin, 200},
		{"split 21 is not a natural", hand(entities.HandStatusStood, true, 1, 13), dealer(10, 9), entities.OutcomeWin, 200},
		{"dealer bust pays even money", hand(entities.HandStatusStood, false, 10, 2), dealer(10, 6, 10), entities.OutcomeWin, 200},
		{"higher total wins", hand(entities.HandStatusStood, false, 10, 9), dealer(10, 8), entities.OutcomeWin, 200},
		{"equal totals push", hand(entities.HandStatusStood, false, 10, 8), dealer(9, 9), entities.OutcomePush, 100},
		{"lower total loses", hand(entities.HandStatusStood, false, 10, 7), dealer(10, 8), entities.OutcomeLose, 0},
		{"three card 21 pushes against dealer natural", hand(entities.HandStatusStood, false, 7, 7, 7), dealer(1, 13), entities.OutcomePush, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			outcome, owed := SettleHand(tt.hand, tt.dealer)
			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Equal(t, tt.wantOwed, owed)
		})
	}
}

func TestSettleHand_OddBetRoundsDown(t *testing.T) {
	t.Parallel()
	h := &entities.PlayerHand{Hand: entities.NewHand(cards(1, 12)...), Bet: 101, Status: entities.HandStatusBlackjack}
	outcome, owed := SettleHand(h, entities.NewHand(cards(10, 7)...))
	assert.Equal(t, entities.OutcomeBlackjack, outcome)
	assert.Equal(t, int64(252), owed)
}
