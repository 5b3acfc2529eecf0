package entities

import "time"

// ActionKind names a table command
type ActionKind string

const (
	ActionCreate ActionKind = "create"
	ActionJoin   ActionKind = "join"
	ActionLeave  ActionKind = "leave"
	ActionSetBet ActionKind = "bet"
	ActionPay    ActionKind = "pay"
	ActionStart  ActionKind = "start"
	ActionHit    ActionKind = "hit"
	ActionStand  ActionKind = "stand"
	ActionDouble ActionKind = "double"
	ActionSplit  ActionKind = "split"
	ActionEnd    ActionKind = "end"
)

// ActionRequest is a decoded table command. SessionID is optional; when set
// it must name the scope's live session.
type ActionRequest struct {
	Kind      ActionKind
	Scope     TableScope
	SessionID string
	UserID    int64
	Amount    int64
}

// RejectReason explains why a command changed nothing
type RejectReason string

const (
	ReasonSessionNotFound   RejectReason = "session_not_found"
	ReasonTableBusy         RejectReason = "table_busy"
	ReasonStaleSession      RejectReason = "stale_session"
	ReasonNotHost           RejectReason = "not_host"
	ReasonNotInLobby        RejectReason = "not_in_lobby"
	ReasonNotPlaying        RejectReason = "not_playing"
	ReasonAlreadyJoined     RejectReason = "already_joined"
	ReasonNotJoined         RejectReason = "not_joined"
	ReasonTableFull         RejectReason = "table_full"
	ReasonBelowMinimum      RejectReason = "below_minimum"
	ReasonInsufficientFunds RejectReason = "insufficient_funds"
	ReasonAlreadyPaid       RejectReason = "already_paid"
	ReasonNotPaid           RejectReason = "not_paid"
	ReasonPlayersNotPaid    RejectReason = "players_not_paid"
	ReasonNoPlayers         RejectReason = "no_players"
	ReasonNotYourTurn       RejectReason = "not_your_turn"
	ReasonCannotDouble      RejectReason = "cannot_double"
	ReasonCannotSplit       RejectReason = "cannot_split"
	ReasonRefundFailed      RejectReason = "refund_failed"
	ReasonSessionEnded      RejectReason = "session_ended"
	ReasonUnknownAction     RejectReason = "unknown_action"
)

// TableResult is the answer to every table command
type TableResult struct {
	OK       bool
	Reason   RejectReason
	Snapshot *SessionSnapshot
}

// Accepted builds a successful result
func Accepted(snapshot *SessionSnapshot) *TableResult {
	return &TableResult{OK: true, Snapshot: snapshot}
}

// Rejected builds a failed result. Snapshot may be nil.
func Rejected(reason RejectReason, snapshot *SessionSnapshot) *TableResult {
	return &TableResult{OK: false, Reason: reason, Snapshot: snapshot}
}

// SessionSnapshot is a read-only copy of a table for renderers
type SessionSnapshot struct {
	SessionID    string
	Scope        TableScope
	HostUserID   int64
	State        SessionState
	MinBet       int64
	MaxPlayers   int
	HostTier     SecurityTier
	Players      []*BlackjackPlayer
	CurrentTurn  *TurnSlot
	TurnDeadline time.Time
	DealerCards  []Card
	DealerHidden bool
	DealerValue  int
	Cancelled    bool
	Results      *RoundResults
}

// Player returns the snapshot copy of a seated player or nil
func (s *SessionSnapshot) Player(userID int64) *BlackjackPlayer {
	for _, p := range s.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}
