package services

import (
	"context"
	"fmt"

	"casinobot/domain/entities"

	log "github.com/sirupsen/logrus"
)

// deal gives every seat and the dealer two cards and queues the hands left to play
func (e *BlackjackEngine) deal(s *entities.BlackjackSession) {
	players := s.SeatedPlayers()
	for _, p := range players {
		p.Hands = []*entities.PlayerHand{{
			Bet:    p.PaidStake,
			Status: entities.HandStatusPlaying,
		}}
	}
	s.DealerHand = entities.Hand{}

	for round := 0; round < 2; round++ {
		for _, p := range players {
			p.Hands[0].Hand.Add(s.Deck.Draw())
		}
		s.DealerHand.Add(s.Deck.Draw())
	}

	s.TurnOrder = s.TurnOrder[:0]
	for _, p := range players {
		hand := p.Hands[0]
		if hand.IsNaturalBlackjack() {
			hand.Status = entities.HandStatusBlackjack
			continue
		}
		s.TurnOrder = append(s.TurnOrder, entities.TurnSlot{UserID: p.UserID, HandIndex: 0})
	}

	s.State = entities.SessionStatePlaying
	s.TurnIndex = -1
}

// withTurn runs fn only for the player whose hand currently has the turn.
// Once the round has resolved there is no turn left, so late actions are
// answered with not_your_turn as well.
func (e *BlackjackEngine) withTurn(ref tableRef, userID int64, fn func(t *blackjackTable, s *entities.BlackjackSession, slot entities.TurnSlot, hand *entities.PlayerHand) (*entities.TableResult, error)) (*entities.TableResult, error) {
	return e.withTable(ref, func(t *blackjackTable, s *entities.BlackjackSession) (*entities.TableResult, error) {
		switch s.State {
		case entities.SessionStateEnded:
			return entities.Rejected(entities.ReasonNotYourTurn, s.Snapshot()), nil
		case entities.SessionStateLobby:
			return entities.Rejected(entities.ReasonNotPlaying, s.Snapshot()), nil
		}
		slot, ok := s.CurrentTurn()
		if !ok || slot.UserID != userID {
			return entities.Rejected(entities.ReasonNotYourTurn, s.Snapshot()), nil
		}
		hand := s.HandAt(slot)
		if hand == nil || !hand.IsActive() {
			return entities.Rejected(entities.ReasonNotYourTurn, s.Snapshot()), nil
		}
		return fn(t, s, slot, hand)
	})
}

// Hit draws a card. Over 21 busts, exactly 21 stands automatically.
func (e *BlackjackEngine) Hit(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error) {
	return e.hit(ctx, tableRef{scope: scope}, userID)
}

func (e *BlackjackEngine) hit(ctx context.Context, ref tableRef, userID int64) (*entities.TableResult, error) {
	return e.withTurn(ref, userID, func(t *blackjackTable, s *entities.BlackjackSession, slot entities.TurnSlot, hand *entities.PlayerHand) (*entities.TableResult, error) {
		hand.Hand.Add(s.Deck.Draw())
		hand.ActionsTaken++
		hand.SettleAfterCard()

		if hand.IsActive() {
			e.armTurnTimer(t, s)
		} else {
			e.advanceTurn(ctx, t, s)
		}
		return entities.Accepted(s.Snapshot()), nil
	})
}

// Stand ends the current hand
func (e *BlackjackEngine) Stand(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error) {
	return e.stand(ctx, tableRef{scope: scope}, userID)
}

func (e *BlackjackEngine) stand(ctx context.Context, ref tableRef, userID int64) (*entities.TableResult, error) {
	return e.withTurn(ref, userID, func(t *blackjackTable, s *entities.BlackjackSession, slot entities.TurnSlot, hand *entities.PlayerHand) (*entities.TableResult, error) {
		hand.Status = entities.HandStatusStood
		hand.ActionsTaken++
		e.advanceTurn(ctx, t, s)
		return entities.Accepted(s.Snapshot()), nil
	})
}

// DoubleDown doubles the stake on an untouched two-card hand and draws exactly one card
func (e *BlackjackEngine) DoubleDown(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error) {
	return e.doubleDown(ctx, tableRef{scope: scope}, userID)
}

func (e *BlackjackEngine) doubleDown(ctx context.Context, ref tableRef, userID int64) (*entities.TableResult, error) {
	return e.withTurn(ref, userID, func(t *blackjackTable, s *entities.BlackjackSession, slot entities.TurnSlot, hand *entities.PlayerHand) (*entities.TableResult, error) {
		if !hand.CanDouble() {
			return entities.Rejected(entities.ReasonCannotDouble, s.Snapshot()), nil
		}

		charge, ok, err := e.chargeStake(ctx, s, userID, hand.Bet, map[string]any{"reason": "double_down", "hand_index": slot.HandIndex})
		if err != nil {
			return nil, err
		}
		if !ok {
			return entities.Rejected(entities.ReasonInsufficientFunds, s.Snapshot()), nil
		}
		s.Player(userID).FeesPaid += charge.FeeAmount

		hand.Bet *= 2
		hand.Doubled = true
		hand.ActionsTaken++
		hand.Hand.Add(s.Deck.Draw())
		if hand.Hand.IsBust() {
			hand.Status = entities.HandStatusBusted
		} else {
			hand.Status = entities.HandStatusStood
		}

		e.advanceTurn(ctx, t, s)
		return entities.Accepted(s.Snapshot()), nil
	})
}

// Split turns a pair into two hands, each topped up with a fresh card
func (e *BlackjackEngine) Split(ctx context.Context, scope entities.TableScope, userID int64) (*entities.TableResult, error) {
	return e.split(ctx, tableRef{scope: scope}, userID)
}

func (e *BlackjackEngine) split(ctx context.Context, ref tableRef, userID int64) (*entities.TableResult, error) {
	return e.withTurn(ref, userID, func(t *blackjackTable, s *entities.BlackjackSession, slot entities.TurnSlot, hand *entities.PlayerHand) (*entities.TableResult, error) {
		if !hand.CanSplit() {
			return entities.Rejected(entities.ReasonCannotSplit, s.Snapshot()), nil
		}

		charge, ok, err := e.chargeStake(ctx, s, userID, hand.Bet, map[string]any{"reason": "split", "hand_index": slot.HandIndex})
		if err != nil {
			return nil, err
		}
		if !ok {
			return entities.Rejected(entities.ReasonInsufficientFunds, s.Snapshot()), nil
		}

		player := s.Player(userID)
		player.FeesPaid += charge.FeeAmount

		second := &entities.PlayerHand{
			Hand:      entities.NewHand(hand.Hand.Cards[1]),
			Bet:       hand.Bet,
			Status:    entities.HandStatusPlaying,
			FromSplit: true,
		}
		hand.Hand = entities.NewHand(hand.Hand.Cards[0])
		hand.FromSplit = true

		hand.Hand.Add(s.Deck.Draw())
		hand.SettleAfterCard()
		second.Hand.Add(s.Deck.Draw())
		second.SettleAfterCard()

		player.Hands = append(player.Hands, second)
		s.InsertTurnAfterCurrent(entities.TurnSlot{UserID: userID, HandIndex: len(player.Hands) - 1})

		log.WithFields(log.Fields{
			"sessionID": s.ID,
			"userID":    userID,
			"hands":     len(player.Hands),
		}).Debug("Player split hand")

		if hand.IsActive() {
			e.armTurnTimer(t, s)
		} else {
			e.advanceTurn(ctx, t, s)
		}
		return entities.Accepted(s.Snapshot()), nil
	})
}

// advanceTurn moves past hands that are no longer playing. Running off the
// end of the queue resolves the round; otherwise the next hand gets a fresh deadline.
func (e *BlackjackEngine) advanceTurn(ctx context.Context, t *blackjackTable, s *entities.BlackjackSession) {
	s.TurnIndex++
	for s.TurnIndex < len(s.TurnOrder) {
		if hand := s.HandAt(s.TurnOrder[s.TurnIndex]); hand != nil && hand.IsActive() {
			break
		}
		s.TurnIndex++
	}

	if s.TurnIndex >= len(s.TurnOrder) {
		e.resolve(ctx, t, s)
		return
	}
	e.armTurnTimer(t, s)
}

// armTurnTimer resets the current hand's deadline
func (e *BlackjackEngine) armTurnTimer(t *blackjackTable, s *entities.BlackjackSession) {
	slot, ok := s.CurrentTurn()
	if !ok {
		t.turnTimer.stop()
		return
	}
	s.TurnDeadline = e.now().Add(e.cfg.TurnTimeout)
	sessionID := s.ID
	t.turnTimer.arm(e.scheduler, e.cfg.TurnTimeout, func(generation uint64) {
		e.onTurnTimeout(s.Scope, sessionID, slot, generation)
	})
}

// onTurnTimeout force-stands the hand it was armed for. Anything that moved
// the table on since then turns the callback into a no-op.
func (e *BlackjackEngine) onTurnTimeout(scope entities.TableScope, sessionID string, slot entities.TurnSlot, generation uint64) {
	t, ok := e.registry.lookup(scope)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	if s == nil || s.ID != sessionID || s.State != entities.SessionStatePlaying || !t.turnTimer.current(generation) {
		return
	}
	current, ok := s.CurrentTurn()
	if !ok || current != slot {
		return
	}
	hand := s.HandAt(slot)
	if hand == nil || !hand.IsActive() {
		return
	}

	log.WithFields(log.Fields{
		"sessionID": s.ID,
		"userID":    slot.UserID,
		"handIndex": slot.HandIndex,
	}).Info("Turn timed out, standing hand")

	hand.Status = entities.HandStatusStood
	e.advanceTurn(context.Background(), t, s)
}

// armLobbyTimer closes the lobby after a stretch with no activity
func (e *BlackjackEngine) armLobbyTimer(t *blackjackTable, s *entities.BlackjackSession) {
	if e.cfg.LobbyTimeout <= 0 {
		return
	}
	sessionID := s.ID
	t.lobbyTimer.arm(e.scheduler, e.cfg.LobbyTimeout, func(generation uint64) {
		e.onLobbyTimeout(s.Scope, sessionID, generation)
	})
}

// touchLobby records activity and pushes the lobby deadline back
func (e *BlackjackEngine) touchLobby(t *blackjackTable, s *entities.BlackjackSession) {
	s.LastActivityAt = e.now()
	e.armLobbyTimer(t, s)
}

func (e *BlackjackEngine) onLobbyTimeout(scope entities.TableScope, sessionID string, generation uint64) {
	t, ok := e.registry.lookup(scope)
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.session
	if s == nil || s.ID != sessionID || s.State != entities.SessionStateLobby || !t.lobbyTimer.current(generation) {
		return
	}
	e.cancel(context.Background(), t, s, CancelReasonTimeout)
}

// scheduleCleanup drops the ended session from its slot after the grace period
func (e *BlackjackEngine) scheduleCleanup(t *blackjackTable, s *entities.BlackjackSession) {
	sessionID := s.ID
	scope := s.Scope
	t.cleanupTimer.arm(e.scheduler, e.cfg.ResultsGracePeriod, func(generation uint64) {
		t.mu.Lock()
		defer t.mu.Unlock()

		if t.session == nil || t.session.ID != sessionID || t.session.IsLive() || !t.cleanupTimer.current(generation) {
			return
		}
		t.session = nil
		log.WithFields(log.Fields{
			"sessionID": sessionID,
			"scope":     scope.String(),
		}).Debug("Removed ended blackjack session")
	})
}

// describeSlot is used in audit notes
func describeSlot(userID int64, handIndex int) string {
	return fmt.Sprintf("user %d hand %d", userID, handIndex)
}
