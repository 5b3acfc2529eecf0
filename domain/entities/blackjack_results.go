package entities

import "time"

// Outcome of a resolved hand against the dealer
type Outcome string

const (
	OutcomeWin       Outcome = "win"
	OutcomeBlackjack Outcome = "blackjack"
	OutcomePush      Outcome = "push"
	OutcomeLose      Outcome = "lose"
)

// PayoutStatus records how the bank settled a hand
type PayoutStatus string

const (
	PayoutStatusNone     PayoutStatus = "none"
	PayoutStatusPaid     PayoutStatus = "paid"
	PayoutStatusRefunded PayoutStatus = "refunded"
	PayoutStatusUnpaid   PayoutStatus = "unpaid"
)

// HandResult is the settled outcome of one player hand
type HandResult struct {
	UserID       int64        `json:"user_id"`
	HandIndex    int          `json:"hand_index"`
	Cards        []Card       `json:"cards"`
	Value        int          `json:"value"`
	Bet          int64        `json:"bet"`
	Doubled      bool         `json:"doubled"`
	FromSplit    bool         `json:"from_split"`
	Outcome      Outcome      `json:"outcome"`
	Owed         int64        `json:"owed"`
	Paid         int64        `json:"paid"`
	PayoutStatus PayoutStatus `json:"payout_status"`
	AuditNote    string       `json:"audit_note,omitempty"`
}

// Net returns the player's profit or loss on the hand, ignoring fees
func (r HandResult) Net() int64 {
	return r.Paid - r.Bet
}

// RoundResults is the results payload built when a round ends
type RoundResults struct {
	SessionID    string       `json:"session_id"`
	Scope        TableScope   `json:"scope"`
	DealerCards  []Card       `json:"dealer_cards"`
	DealerValue  int          `json:"dealer_value"`
	DealerBusted bool         `json:"dealer_busted"`
	Hands        []HandResult `json:"hands"`
	AuditNotes   []string     `json:"audit_notes,omitempty"`
	EndedAt      time.Time    `json:"ended_at"`
}

// TotalWagered sums the stakes across every hand
func (r *RoundResults) TotalWagered() int64 {
	var total int64
	for _, h := range r.Hands {
		total += h.Bet
	}
	return total
}

// TotalPaid sums what the bank actually paid out
func (r *RoundResults) TotalPaid() int64 {
	var total int64
	for _, h := range r.Hands {
		total += h.Paid
	}
	return total
}

// HandsFor returns the results belonging to one player
func (r *RoundResults) HandsFor(userID int64) []HandResult {
	var hands []HandResult
	for _, h := range r.Hands {
		if h.UserID == userID {
			hands = append(hands, h)
		}
	}
	return hands
}

// Clone returns an independent copy
func (r *RoundResults) Clone() *RoundResults {
	c := *r
	c.DealerCards = append([]Card(nil), r.DealerCards...)
	c.AuditNotes = append([]string(nil), r.AuditNotes...)
	c.Hands = make([]HandResult, len(r.Hands))
	for i, h := range r.Hands {
		h.Cards = append([]Card(nil), h.Cards...)
		c.Hands[i] = h
	}
	return &c
}
