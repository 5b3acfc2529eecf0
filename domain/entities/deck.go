package entities

import (
	"math/rand"
)

// DeckSize is the number of cards in a standard deck
const DeckSize = 52

// Shuffler reorders cards in place
type Shuffler func(cards []Card)

// RandShuffler returns a Shuffler backed by r
func RandShuffler(r *rand.Rand) Shuffler {
	return func(cards []Card) {
		r.Shuffle(len(cards), func(i, j int) {
			cards[i], cards[j] = cards[j], cards[i]
		})
	}
}

// Deck is a shoe of cards drawn from the top. When it runs dry a fresh
// shuffled 52-card deck replaces it.
type Deck struct {
	cards      []Card
	shuffle    Shuffler
	reshuffles int
}

// NewStandardCards returns the 52 cards of a deck in suit/rank order
func NewStandardCards() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := RankAce; rank <= RankKing; rank++ {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return cards
}

// NewDeck creates a shuffled 52-card deck
func NewDeck(shuffle Shuffler) *Deck {
	d := &Deck{shuffle: shuffle}
	d.refill()
	return d
}

// NewStackedDeck creates a deck that deals the given cards in order before
// falling back to fresh shuffled decks
func NewStackedDeck(shuffle Shuffler, cards ...Card) *Deck {
	return &Deck{
		cards:   append([]Card(nil), cards...),
		shuffle: shuffle,
	}
}

func (d *Deck) refill() {
	d.cards = NewStandardCards()
	if d.shuffle != nil {
		d.shuffle(d.cards)
	}
}

// Draw removes and returns the top card, reshuffling a fresh deck if empty
func (d *Deck) Draw() Card {
	if len(d.cards) == 0 {
		d.refill()
		d.reshuffles++
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card
}

// Remaining returns the number of undealt cards
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Reshuffles returns how many fresh decks have been opened mid-round
func (d *Deck) Reshuffles() int {
	return d.reshuffles
}
