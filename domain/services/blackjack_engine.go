package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"casinobot/config"
	"casinobot/domain/entities"
	"casinobot/domain/interfaces"
	"casinobot/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Cancellation reasons carried on BlackjackSessionCancelledEvent
const (
	CancelReasonHostEnded = "host_ended"
	CancelReasonHostLeft  = "host_left"
	CancelReasonTimeout   = "lobby_timeout"
)

// BlackjackEngine runs every blackjack table. Commands on one scope are
// serialized by the scope's mutex; ledger calls are made while it is held.
type BlackjackEngine struct {
	ledger    interfaces.LedgerService
	security  interfaces.SecurityTierService
	fees      *FeeCalculator
	publisher events.Publisher
	registry  *BlackjackRegistry
	cfg       config.BlackjackConfig

	now       func() time.Time
	newDeck   func() *entities.Deck
	newID     func() string
	scheduler Scheduler
}

// BlackjackEngineOption customizes an engine
type BlackjackEngineOption func(*BlackjackEngine)

// WithClock sets the clock used for deadlines and timestamps
func WithClock(now func() time.Time) BlackjackEngineOption {
	return func(e *BlackjackEngine) { e.now = now }
}

// WithDeckFactory sets how each round's deck is built
func WithDeckFactory(newDeck func() *entities.Deck) BlackjackEngineOption {
	return func(e *BlackjackEngine) { e.newDeck = newDeck }
}

// WithScheduler sets the timer scheduler
func WithScheduler(scheduler Scheduler) BlackjackEngineOption {
	return func(e *BlackjackEngine) { e.scheduler = scheduler }
}

// WithIDGenerator sets how session IDs are minted
func WithIDGenerator(newID func() string) BlackjackEngineOption {
	return func(e *BlackjackEngine) { e.newID = newID }
}

// NewBlackjackEngine creates an engine. The registry is owned by the caller
// so one registry can back every engine in the process.
func NewBlackjackEngine(
	ledger interfaces.LedgerService,
	security interfaces.SecurityTierService,
	fees *FeeCalculator,
	publisher events.Publisher,
	registry *BlackjackRegistry,
	cfg config.BlackjackConfig,
	opts ...BlackjackEngineOption,
) *BlackjackEngine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	e := &BlackjackEngine{
		ledger:    ledger,
		security:  security,
		fees:      fees,
		publisher: publisher,
		registry:  registry,
		cfg:       cfg,
		now:       time.Now,
		newDeck:   func() *entities.Deck { return entities.NewDeck(entities.RandShuffler(rng)) },
		newID:     func() string { return uuid.New().String() },
		scheduler: NewWallClockScheduler(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ interfaces.BlackjackService = (*BlackjackEngine)(nil)

// tableRef addresses a scope's table. A non-empty sessionID pins the request
// to the session it was rendered for.
type tableRef struct {
	scope     entities.TableScope
	sessionID string
}

func (r tableRef) pinned() bool {
	return r.sessionID != ""
}

// Dispatch routes a decoded action to its command. A request pinned to a
// session that is no longer the scope's live session is rejected as stale.
func (e *BlackjackEngine) Dispatch(ctx context.Context, req entities.ActionRequest) (*entities.TableResult, error) {
	ref := tableRef{scope: req.Scope, sessionID: req.SessionID}

	switch req.Kind {
	case entities.ActionCreate:
		return e.Create(ctx, req.Scope, req.UserID, req.Amount)
	case entities.ActionJoin:
		return e.join(ctx, ref, req.UserID)
	case entities.ActionLeave:
		return e.leave(ctx, ref, req.UserID)
	case entities.ActionSetBet:
		return e.setBet(ctx, ref, req.UserID, req.Amount)
	case entities.ActionPay:
		return e.pay(ctx, ref, req.UserID)
	case entities.ActionStart:
		return e.start(ctx, ref, req.UserID)
	case entities.ActionHit:
		return e.hit(ctx, ref, req.UserID)
	case entities.ActionStand:
		return e.stand(ctx, ref, req.UserID)
	case entities.ActionDouble:
		return e.doubleDown(ctx, ref, req.UserID)
	case entities.ActionSplit:
		return e.split(ctx, ref, req.UserID)
	case entities.ActionEnd:
		return e.end(ctx, ref, req.UserID)
	default:
		return entities.Rejected(entities.ReasonUnknownAction, nil), nil
	}
}

// withTable locks the scope and hands fn the session ref addresses. The pin
// is compared under the same lock fn mutates under, so a session replaced
// between the click and the command is never touched.
func (e *BlackjackEngine) withTable(ref tableRef, fn func(t *blackjackTable, s *entities.BlackjackSession) (*entities.TableResult, error)) (*entities.TableResult, error) {
	missing := entities.ReasonSessionNotFound
	if ref.pinned() {
		missing = entities.ReasonStaleSession
	}

	t, ok := e.registry.lookup(ref.scope)
	if !ok {
		return entities.Rejected(missing, nil), nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	if s == nil {
		return entities.Rejected(missing, nil), nil
	}
	if ref.pinned() && s.ID != ref.sessionID {
		return entities.Rejected(entities.ReasonStaleSession, nil), nil
	}
	return fn(t, s)
}

// withSession is withTable for commands that need a live session. Ended
// sessions are rejected before fn runs: pinned requests as stale, others as ended.
func (e *BlackjackEngine) withSession(ref tableRef, fn func(t *blackjackTable, s *entities.BlackjackSession) (*entities.TableResult, error)) (*entities.TableResult, error) {
	return e.withTable(ref, func(t *blackjackTable, s *entities.BlackjackSession) (*entities.TableResult, error) {
		if !s.IsLive() {
			if ref.pinned() {
				return entities.Rejected(entities.ReasonStaleSession, nil), nil
			}
			return entities.Rejected(entities.ReasonSessionEnded, s.Snapshot()), nil
		}
		return fn(t, s)
	})
}

// Snapshot returns a copy of the scope's current session
func (e *BlackjackEngine) Snapshot(scope entities.TableScope) (*entities.SessionSnapshot, bool) {
	t, ok := e.registry.lookup(scope)
	if !ok {
		return nil, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return nil, false
	}
	return t.session.Snapshot(), true
}

// Create opens a lobby and seats the host
func (e *BlackjackEngine) Create(ctx context.Context, scope entities.TableScope, hostUserID, bet int64) (*entities.TableResult, error) {
	if bet == 0 {
		bet = e.cfg.MinBet
	}

	t := e.registry.table(scope)
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil {
		if t.session.IsLive() {
			return entities.Rejected(entities.ReasonTableBusy, t.session.Snapshot()), nil
		}
		// results of the previous round are still lingering
		t.stopTimers()
		t.session = nil
	}

	if bet < e.cfg.MinBet {
		return entities.Rejected(entities.ReasonBelowMinimum, nil), nil
	}

	hostTier, err := e.security.GetSecurityTier(ctx, scope.GuildID, hostUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock host security tier: %w", err)
	}
	if err := e.ledger.EnsureAccount(ctx, scope.GuildID, hostUserID); err != nil {
		return nil, fmt.Errorf("failed to ensure host account: %w", err)
	}

	now := e.now()
	session := entities.NewBlackjackSession(e.newID(), scope, hostUserID, hostTier, e.cfg.MinBet, e.cfg.MaxPlayers, e.newDeck(), now)
	session.Seat(&entities.BlackjackPlayer{UserID: hostUserID, Bet: bet})
	t.session = session
	e.armLobbyTimer(t, session)

	log.WithFields(log.Fields{
		"sessionID": session.ID,
		"scope":     scope.String(),
		"host":      hostUserID,
		"hostTier":  hostTier.Level,
	}).Info("Opened blackjack table")

	return entities.Accepted(session.Snapshot()), nil
}

// Join seats a player at the minimum bet
func (e *BlackjackEngine) Join(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error) {
	return e.join(ctx, tableRef{scope: scope}, userID)
}

func (e *BlackjackEngine) join(ctx context.Context, ref tableRef, userID int64) (*entities.TableResult, error) {
	return e.withSession(ref, func(t *blackjackTable, s *entities.BlackjackSession) (*entities.TableResult, error) {
		if s.State != entities.SessionStateLobby {
			return entities.Rejected(entities.ReasonNotInLobby, s.Snapshot()), nil
		}
		if s.Player(userID) != nil {
			return entities.Rejected(entities.ReasonAlreadyJoined, s.Snapshot()), nil
		}
		if s.IsFull() {
			return entities.Rejected(entities.ReasonTableFull, s.Snapshot()), nil
		}
		if err := e.ledger.EnsureAccount(ctx, s.Scope.GuildID, userID); err != nil {
			return nil, fmt.Errorf("failed to ensure player account: %w", err)
		}

		s.Seat(&entities.BlackjackPlayer{UserID: userID, Bet: s.MinBet})
		e.touchLobby(t, s)
		return entities.Accepted(s.Snapshot()), nil
	})
}

// Leave unseats a lobby player, refunding a paid stake. The host leaving closes the table.
func (e *BlackjackEngine) Leave(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error) {
	return e.leave(ctx, tableRef{scope: scope}, userID)
}

func (e *BlackjackEngine) leave(ctx context.Context, ref tableRef, userID int64) (*entities.TableResult, error) {
	return e.withSession(ref, func(t *blackjackTable, s *entities.BlackjackSession) (*entities.TableResult, error) {
		if s.State != entities.SessionStateLobby {
			return entities.Rejected(entities.ReasonNotInLobby, s.Snapshot()), nil
		}
		player := s.Player(userID)
		if player == nil {
			return entities.Rejected(entities.ReasonNotJoined, s.Snapshot()), nil
		}

		hadStake := player.Paid && player.PaidStake > 0
		refunded, err := e.refundStake(ctx, s, player)
		if err != nil {
			return nil, err
		}
		if !refunded {
			return entities.Rejected(entities.ReasonRefundFailed, s.Snapshot()), nil
		}

		if s.IsHost(userID) {
			var already []int64
			if hadStake {
				already = append(already, userID)
			}
			e.cancel(ctx, t, s, CancelReasonHostLeft, already...)
			return entities.Accepted(s.Snapshot()), nil
		}

		s.Unseat(userID)
		e.touchLobby(t, s)
		return entities.Accepted(s.Snapshot()), nil
	})
}

// SetBet changes a lobby bet. A paid player is charged or refunded the difference.
func (e *BlackjackEngine) SetBet(ctx context.Context, scope entities.TableScope, userID, amount int64) (*entities.TableResult, error) {
	return e.setBet(ctx, tableRef{scope: scope}, userID, amount)
}

func (e *BlackjackEngine) setBet(ctx context.Context, ref tableRef, userID, amount int64) (*entities.TableResult, error) {
	return e.withSession(ref, func(t *blackjackTable, s *entities.BlackjackSession) (*entities.TableResult, error) {
		if s.State != entities.SessionStateLobby {
			return entities.Rejected(entities.ReasonNotInLobby, s.Snapshot()), nil
		}
		player := s.Player(userID)
		if player == nil {
			return entities.Rejected(entities.ReasonNotJoined, s.Snapshot()), nil
		}
		if amount < s.MinBet {
			return entities.Rejected(entities.ReasonBelowMinimum, s.Snapshot()), nil
		}

		if !player.Paid {
			player.Bet = amount
			e.touchLobby(t, s)
			return entities.Accepted(s.Snapshot()), nil
		}

		delta := amount - player.PaidStake
		switch {
		case delta > 0:
			charge, ok, err := e.chargeStake(ctx, s, userID, delta, map[string]any{"reason": "bet_increase"})
			if err != nil {
				return nil, err
			}
			if !ok {
				return entities.Rejected(entities.ReasonInsufficientFunds, s.Snapshot()), nil
			}
			player.FeesPaid += charge.FeeAmount
		case delta < 0:
			result, err := e.ledger.BankDebitIfSufficientThenCreditUser(ctx, s.Scope.GuildID, userID, -delta,
				entities.TransactionTypeBlackjackRefund, e.metadata(s, map[string]any{"reason": "bet_decrease"}))
			if err != nil {
				return nil, fmt.Errorf("failed to refund bet decrease: %w", err)
			}
			if !result.OK {
				return entities.Rejected(entities.ReasonRefundFailed, s.Snapshot()), nil
			}
		}

		player.Bet = amount
		player.PaidStake = amount
		e.touchLobby(t, s)
		return entities.Accepted(s.Snapshot()), nil
	})
}

// Pay charges the player's current bet plus fee
func (e *BlackjackEngine) Pay(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error) {
	return e.pay(ctx, tableRef{scope: scope}, userID)
}

func (e *BlackjackEngine) pay(ctx context.Context, ref tableRef, userID int64) (*entities.TableResult, error) {
	return e.withSession(ref, func(t *blackjackTable, s *entities.BlackjackSession) (*entities.TableResult, error) {
		if s.State != entities.SessionStateLobby {
			return entities.Rejected(entities.ReasonNotInLobby, s.Snapshot()), nil
		}
		player := s.Player(userID)
		if player == nil {
			return entities.Rejected(entities.ReasonNotJoined, s.Snapshot()), nil
		}
		if player.Paid {
			return entities.Rejected(entities.ReasonAlreadyPaid, s.Snapshot()), nil
		}

		charge, ok, err := e.chargeStake(ctx, s, userID, player.Bet, map[string]any{"reason": "buy_in"})
		if err != nil {
			return nil, err
		}
		if !ok {
			return entities.Rejected(entities.ReasonInsufficientFunds, s.Snapshot()), nil
		}

		player.Paid = true
		player.PaidStake = player.Bet
		player.FeesPaid += charge.FeeAmount
		e.touchLobby(t, s)
		return entities.Accepted(s.Snapshot()), nil
	})
}

// Start deals the round. Only the host may start and every seat must be paid.
func (e *BlackjackEngine) Start(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error) {
	return e.start(ctx, tableRef{scope: scope}, userID)
}

func (e *BlackjackEngine) start(ctx context.Context, ref tableRef, userID int64) (*entities.TableResult, error) {
	return e.withSession(ref, func(t *blackjackTable, s *entities.BlackjackSession) (*entities.TableResult, error) {
		if s.State != entities.SessionStateLobby {
			return entities.Rejected(entities.ReasonNotInLobby, s.Snapshot()), nil
		}
		if !s.IsHost(userID) {
			return entities.Rejected(entities.ReasonNotHost, s.Snapshot()), nil
		}
		if len(s.SeatOrder) == 0 {
			return entities.Rejected(entities.ReasonNoPlayers, s.Snapshot()), nil
		}
		if !s.AllPaid() {
			return entities.Rejected(entities.ReasonPlayersNotPaid, s.Snapshot()), nil
		}

		t.lobbyTimer.stop()
		e.deal(s)

		log.WithFields(log.Fields{
			"sessionID": s.ID,
			"scope":     s.Scope.String(),
			"players":   len(s.SeatOrder),
		}).Info("Blackjack round started")

		e.advanceTurn(ctx, t, s)
		return entities.Accepted(s.Snapshot()), nil
	})
}

// End closes the table on the host's request. Lobbies are refunded and
// cancelled; rounds in play are stood out and resolved; ended tables are left alone.
func (e *BlackjackEngine) End(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error) {
	return e.end(ctx, tableRef{scope: scope}, userID)
}

func (e *BlackjackEngine) end(ctx context.Context, ref tableRef, userID int64) (*entities.TableResult, error) {
	return e.withTable(ref, func(t *blackjackTable, s *entities.BlackjackSession) (*entities.TableResult, error) {
		if !s.IsHost(userID) {
			return entities.Rejected(entities.ReasonNotHost, s.Snapshot()), nil
		}

		switch s.State {
		case entities.SessionStateLobby:
			e.cancel(ctx, t, s, CancelReasonHostEnded)
		case entities.SessionStatePlaying:
			for _, slot := range s.TurnOrder {
				if hand := s.HandAt(slot); hand != nil && hand.IsActive() {
					hand.Status = entities.HandStatusStood
				}
			}
			e.resolve(ctx, t, s)
		default:
			return entities.Rejected(entities.ReasonSessionEnded, s.Snapshot()), nil
		}
		return entities.Accepted(s.Snapshot()), nil
	})
}

// effectiveFee reads the player's live tier and combines it with the host lock
func (e *BlackjackEngine) effectiveFee(ctx context.Context, s *entities.BlackjackSession, userID int64) (entities.SecurityTier, error) {
	tier, err := e.security.GetSecurityTier(ctx, s.Scope.GuildID, userID)
	if err != nil {
		return entities.SecurityTier{}, fmt.Errorf("failed to read security tier: %w", err)
	}
	tier.FeePct = e.fees.ComputeEffectiveFeePct(tier, s.HostLockedSecurity)
	return tier, nil
}

// chargeStake prices stake with the effective fee and charges it
func (e *BlackjackEngine) chargeStake(ctx context.Context, s *entities.BlackjackSession, userID, stake int64, extra map[string]any) (entities.WagerCharge, bool, error) {
	tier, err := e.effectiveFee(ctx, s, userID)
	if err != nil {
		return entities.WagerCharge{}, false, err
	}

	charge := ComputeCharge(stake, tier.FeePct)
	meta := e.metadata(s, extra)
	meta["fee_pct"] = tier.FeePct.String()
	meta["fee_amount"] = charge.FeeAmount

	result, err := e.ledger.ChargeWager(ctx, s.Scope.GuildID, userID, charge, meta)
	if err != nil {
		return charge, false, fmt.Errorf("failed to charge wager: %w", err)
	}
	return charge, result.OK, nil
}

// refundStake returns a paid lobby stake through the bank. Fees are kept.
// Unpaid players trivially succeed.
func (e *BlackjackEngine) refundStake(ctx context.Context, s *entities.BlackjackSession, player *entities.BlackjackPlayer) (bool, error) {
	if !player.Paid || player.PaidStake == 0 {
		return true, nil
	}

	result, err := e.ledger.BankDebitIfSufficientThenCreditUser(ctx, s.Scope.GuildID, player.UserID, player.PaidStake,
		entities.TransactionTypeBlackjackRefund, e.metadata(s, map[string]any{"reason": "lobby_refund"}))
	if err != nil {
		return false, fmt.Errorf("failed to refund stake: %w", err)
	}
	if !result.OK {
		log.WithFields(log.Fields{
			"sessionID":   s.ID,
			"userID":      player.UserID,
			"stake":       player.PaidStake,
			"bankBalance": result.BankBalance,
		}).Warn("Bank could not refund lobby stake")
		return false, nil
	}

	player.Paid = false
	player.PaidStake = 0
	return true, nil
}

// cancel refunds every paid seat and ends the session without a round.
// Refund failures are logged and reported; they never keep a table open.
// alreadyRefunded lists seats whose stake was returned before the cancel.
func (e *BlackjackEngine) cancel(ctx context.Context, t *blackjackTable, s *entities.BlackjackSession, reason string, alreadyRefunded ...int64) {
	refundedUsers := append(make([]int64, 0, len(s.SeatOrder)), alreadyRefunded...)
	for _, player := range s.SeatedPlayers() {
		stake := player.PaidStake
		ok, err := e.refundStake(ctx, s, player)
		if err != nil {
			log.WithFields(log.Fields{
				"sessionID": s.ID,
				"userID":    player.UserID,
				"error":     err,
			}).Error("Failed to refund stake while cancelling table")
			ok = false
		}
		if !ok {
			e.publish(events.PayoutShortfallEvent{
				SessionID: s.ID,
				GuildID:   s.Scope.GuildID,
				UserID:    player.UserID,
				HandIndex: -1,
				Owed:      stake,
				Note:      "lobby stake could not be refunded on cancel",
			})
			continue
		}
		if stake > 0 {
			refundedUsers = append(refundedUsers, player.UserID)
		}
	}

	now := e.now()
	s.State = entities.SessionStateEnded
	s.Cancelled = true
	s.EndedAt = &now
	t.turnTimer.stop()
	t.lobbyTimer.stop()
	e.scheduleCleanup(t, s)

	log.WithFields(log.Fields{
		"sessionID": s.ID,
		"scope":     s.Scope.String(),
		"reason":    reason,
	}).Info("Blackjack table cancelled")

	e.publish(events.BlackjackSessionCancelledEvent{
		SessionID:     s.ID,
		Scope:         s.Scope,
		HostUserID:    s.HostUserID,
		Reason:        reason,
		RefundedUsers: refundedUsers,
	})
}

func (e *BlackjackEngine) metadata(s *entities.BlackjackSession, extra map[string]any) map[string]any {
	meta := map[string]any{
		"session_id": s.ID,
		"channel_id": s.Scope.ChannelID,
	}
	for k, v := range extra {
		meta[k] = v
	}
	return meta
}

func (e *BlackjackEngine) publish(event events.Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish blackjack event")
	}
}
