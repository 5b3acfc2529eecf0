package entities

import "fmt"

// Suit of a playing card
type Suit string

const (
	SuitClubs    Suit = "♣"
	SuitDiamonds Suit = "♦"
	SuitHearts   Suit = "♥"
	SuitSpades   Suit = "♠"
)

// Suits lists every suit in deck order
var Suits = []Suit{SuitClubs, SuitDiamonds, SuitHearts, SuitSpades}

// Rank of a playing card. Ace is 1 and King is 13.
type Rank int

const (
	RankAce   Rank = 1
	RankTwo   Rank = 2
	RankThree Rank = 3
	RankFour  Rank = 4
	RankFive  Rank = 5
	RankSix   Rank = 6
	RankSeven Rank = 7
	RankEight Rank = 8
	RankNine  Rank = 9
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
)

// Card is a single playing card
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

// IsAce returns true for aces
func (c Card) IsAce() bool {
	return c.Rank == RankAce
}

// BaseValue is the blackjack value with aces counted as 11
func (c Card) BaseValue() int {
	switch {
	case c.Rank == RankAce:
		return 11
	case c.Rank >= RankTen:
		return 10
	default:
		return int(c.Rank)
	}
}

// RankLabel returns the short rank name (A, 2..10, J, Q, K)
func (c Card) RankLabel() string {
	switch c.Rank {
	case RankAce:
		return "A"
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	default:
		return fmt.Sprintf("%d", int(c.Rank))
	}
}

// String renders the card as e.g. "A♠"
func (c Card) String() string {
	return c.RankLabel() + string(c.Suit)
}
