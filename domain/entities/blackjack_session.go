package entities

import (
	"fmt"
	"time"
)

// TableScope identifies where a table lives. One live session per scope.
type TableScope struct {
	GuildID   int64 `json:"guild_id"`
	ChannelID int64 `json:"channel_id"`
}

// String returns "guild/channel"
func (s TableScope) String() string {
	return fmt.Sprintf("%d/%d", s.GuildID, s.ChannelID)
}

// SessionState is the lifecycle state of a blackjack table
type SessionState string

const (
	SessionStateLobby   SessionState = "lobby"
	SessionStatePlaying SessionState = "playing"
	SessionStateEnded   SessionState = "ended"
)

// HandStatus is the play state of a single player hand
type HandStatus string

const (
	HandStatusWaiting   HandStatus = "waiting"
	HandStatusPlaying   HandStatus = "playing"
	HandStatusStood     HandStatus = "stood"
	HandStatusBusted    HandStatus = "busted"
	HandStatusBlackjack HandStatus = "blackjack"
)

// DealerStandValue is the total at which the dealer stops drawing
const DealerStandValue = 17

// PlayerHand is one hand played by a seat. A split produces two of these.
type PlayerHand struct {
	Hand         Hand       `json:"hand"`
	Bet          int64      `json:"bet"`
	Status       HandStatus `json:"status"`
	Doubled      bool       `json:"doubled"`
	FromSplit    bool       `json:"from_split"`
	ActionsTaken int        `json:"actions_taken"`
}

// IsActive returns true while the hand can still take actions
func (h *PlayerHand) IsActive() bool {
	return h.Status == HandStatusPlaying
}

// CanDouble returns true for an untouched two-card hand
func (h *PlayerHand) CanDouble() bool {
	return h.IsActive() && h.Hand.Len() == 2 && h.ActionsTaken == 0
}

// CanSplit returns true for an untouched pair of equal rank
func (h *PlayerHand) CanSplit() bool {
	return h.IsActive() && h.Hand.IsPair() && h.ActionsTaken == 0
}

// IsNaturalBlackjack returns true for a dealt two-card 21. Split hands never qualify.
func (h *PlayerHand) IsNaturalBlackjack() bool {
	return !h.FromSplit && h.Hand.IsNatural()
}

// SettleAfterCard updates status after a card lands: bust over 21, auto-stand on 21
func (h *PlayerHand) SettleAfterCard() {
	switch value := h.Hand.Value(); {
	case value > BlackjackTarget:
		h.Status = HandStatusBusted
	case value == BlackjackTarget:
		h.Status = HandStatusStood
	}
}

func (h *PlayerHand) clone() *PlayerHand {
	c := *h
	c.Hand = h.Hand.Clone()
	return &c
}

// BlackjackPlayer is a seated player. Bet is the requested stake; PaidStake is
// the stake the bank currently holds for the player while in the lobby.
type BlackjackPlayer struct {
	UserID    int64         `json:"user_id"`
	Bet       int64         `json:"bet"`
	Paid      bool          `json:"paid"`
	PaidStake int64         `json:"paid_stake"`
	FeesPaid  int64         `json:"fees_paid"`
	Hands     []*PlayerHand `json:"hands"`
}

// TotalStaked sums the bets across all hands
func (p *BlackjackPlayer) TotalStaked() int64 {
	var total int64
	for _, hand := range p.Hands {
		total += hand.Bet
	}
	return total
}

func (p *BlackjackPlayer) clone() *BlackjackPlayer {
	c := *p
	c.Hands = make([]*PlayerHand, len(p.Hands))
	for i, hand := range p.Hands {
		c.Hands[i] = hand.clone()
	}
	return &c
}

// TurnSlot addresses one hand in the turn queue
type TurnSlot struct {
	UserID    int64 `json:"user_id"`
	HandIndex int   `json:"hand_index"`
}

// BlackjackSession is a single table round from lobby to results
type BlackjackSession struct {
	ID                 string
	Scope              TableScope
	HostUserID         int64
	State              SessionState
	Players            map[int64]*BlackjackPlayer
	SeatOrder          []int64
	TurnOrder          []TurnSlot
	TurnIndex          int
	TurnDeadline       time.Time
	DealerHand         Hand
	Deck               *Deck
	HostLockedSecurity SecurityTier
	MinBet             int64
	MaxPlayers         int
	CreatedAt          time.Time
	LastActivityAt     time.Time
	EndedAt            *time.Time
	Cancelled          bool
	Results            *RoundResults
	ResultsEmitted     bool
}

// NewBlackjackSession creates an empty lobby hosted by hostUserID
func NewBlackjackSession(id string, scope TableScope, hostUserID int64, hostTier SecurityTier, minBet int64, maxPlayers int, deck *Deck, now time.Time) *BlackjackSession {
	return &BlackjackSession{
		ID:                 id,
		Scope:              scope,
		HostUserID:         hostUserID,
		State:              SessionStateLobby,
		Players:            make(map[int64]*BlackjackPlayer),
		Deck:               deck,
		HostLockedSecurity: hostTier,
		MinBet:             minBet,
		MaxPlayers:         maxPlayers,
		CreatedAt:          now,
		LastActivityAt:     now,
	}
}

// IsLive returns true until the session has ended
func (s *BlackjackSession) IsLive() bool {
	return s.State != SessionStateEnded
}

// IsHost returns true if userID hosts the table
func (s *BlackjackSession) IsHost(userID int64) bool {
	return s.HostUserID == userID
}

// Player returns the seated player or nil
func (s *BlackjackSession) Player(userID int64) *BlackjackPlayer {
	return s.Players[userID]
}

// IsFull returns true when every seat is taken
func (s *BlackjackSession) IsFull() bool {
	return len(s.SeatOrder) >= s.MaxPlayers
}

// Seat adds a player at the end of the seat order
func (s *BlackjackSession) Seat(player *BlackjackPlayer) {
	s.Players[player.UserID] = player
	s.SeatOrder = append(s.SeatOrder, player.UserID)
}

// Unseat removes a player from the table
func (s *BlackjackSession) Unseat(userID int64) {
	delete(s.Players, userID)
	for i, id := range s.SeatOrder {
		if id == userID {
			s.SeatOrder = append(s.SeatOrder[:i], s.SeatOrder[i+1:]...)
			break
		}
	}
}

// SeatedPlayers returns players in seat order
func (s *BlackjackSession) SeatedPlayers() []*BlackjackPlayer {
	players := make([]*BlackjackPlayer, 0, len(s.SeatOrder))
	for _, id := range s.SeatOrder {
		if p, ok := s.Players[id]; ok {
			players = append(players, p)
		}
	}
	return players
}

// AllPaid returns true when every seated player has paid
func (s *BlackjackSession) AllPaid() bool {
	for _, p := range s.SeatedPlayers() {
		if !p.Paid {
			return false
		}
	}
	return true
}

// CurrentTurn returns the slot whose turn it is, if any
func (s *BlackjackSession) CurrentTurn() (TurnSlot, bool) {
	if s.State != SessionStatePlaying || s.TurnIndex < 0 || s.TurnIndex >= len(s.TurnOrder) {
		return TurnSlot{}, false
	}
	return s.TurnOrder[s.TurnIndex], true
}

// HandAt resolves a turn slot to its hand
func (s *BlackjackSession) HandAt(slot TurnSlot) *PlayerHand {
	player := s.Players[slot.UserID]
	if player == nil || slot.HandIndex < 0 || slot.HandIndex >= len(player.Hands) {
		return nil
	}
	return player.Hands[slot.HandIndex]
}

// CurrentHand returns the hand whose turn it is
func (s *BlackjackSession) CurrentHand() *PlayerHand {
	slot, ok := s.CurrentTurn()
	if !ok {
		return nil
	}
	return s.HandAt(slot)
}

// InsertTurnAfterCurrent queues a slot directly behind the current turn
func (s *BlackjackSession) InsertTurnAfterCurrent(slot TurnSlot) {
	at := s.TurnIndex + 1
	if at > len(s.TurnOrder) {
		at = len(s.TurnOrder)
	}
	s.TurnOrder = append(s.TurnOrder, TurnSlot{})
	copy(s.TurnOrder[at+1:], s.TurnOrder[at:])
	s.TurnOrder[at] = slot
}

// Snapshot returns a deep copy suitable for rendering. The dealer's hole card
// is hidden while hands are still being played.
func (s *BlackjackSession) Snapshot() *SessionSnapshot {
	snap := &SessionSnapshot{
		SessionID:    s.ID,
		Scope:        s.Scope,
		HostUserID:   s.HostUserID,
		State:        s.State,
		MinBet:       s.MinBet,
		MaxPlayers:   s.MaxPlayers,
		HostTier:     s.HostLockedSecurity,
		TurnDeadline: s.TurnDeadline,
		Cancelled:    s.Cancelled,
		Players:      make([]*BlackjackPlayer, 0, len(s.SeatOrder)),
	}
	for _, p := range s.SeatedPlayers() {
		snap.Players = append(snap.Players, p.clone())
	}
	if slot, ok := s.CurrentTurn(); ok {
		current := slot
		snap.CurrentTurn = &current
	}

	dealer := s.DealerHand.Clone()
	if s.State == SessionStatePlaying && dealer.Len() > 1 {
		snap.DealerCards = dealer.Cards[:1]
		snap.DealerHidden = true
		snap.DealerValue = NewHand(dealer.Cards[0]).Value()
	} else {
		snap.DealerCards = dealer.Cards
		snap.DealerValue = dealer.Value()
	}

	if s.Results != nil {
		snap.Results = s.Results.Clone()
	}
	return snap
}
