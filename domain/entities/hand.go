package entities

import "strings"

// BlackjackTarget is the best possible hand value
const BlackjackTarget = 21

// Hand is an ordered set of cards held by a player hand or the dealer
type Hand struct {
	Cards []Card `json:"cards"`
}

// NewHand creates a hand from the given cards
func NewHand(cards ...Card) Hand {
	return Hand{Cards: append([]Card(nil), cards...)}
}

// Add appends a card to the hand
func (h *Hand) Add(card Card) {
	h.Cards = append(h.Cards, card)
}

// Len returns the number of cards held
func (h Hand) Len() int {
	return len(h.Cards)
}

// Value computes the best blackjack total. Aces start at 11 and are demoted
// to 1, one at a time, while the total exceeds 21.
func (h Hand) Value() int {
	total, _ := h.valueWithSoftAces()
	return total
}

// IsSoft returns true if at least one ace is still counted as 11
func (h Hand) IsSoft() bool {
	_, softAces := h.valueWithSoftAces()
	return softAces > 0
}

func (h Hand) valueWithSoftAces() (int, int) {
	total := 0
	softAces := 0
	for _, card := range h.Cards {
		total += card.BaseValue()
		if card.IsAce() {
			softAces++
		}
	}
	for total > BlackjackTarget && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// IsBust returns true if the hand is over 21
func (h Hand) IsBust() bool {
	return h.Value() > BlackjackTarget
}

// IsNatural returns true for a two-card 21
func (h Hand) IsNatural() bool {
	return len(h.Cards) == 2 && h.Value() == BlackjackTarget
}

// IsPair returns true for exactly two cards of equal rank
func (h Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Rank == h.Cards[1].Rank
}

// Clone returns an independent copy
func (h Hand) Clone() Hand {
	return NewHand(h.Cards...)
}

// String renders the cards separated by spaces
func (h Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, card := range h.Cards {
		parts[i] = card.String()
	}
	return strings.Join(parts, " ")
}
