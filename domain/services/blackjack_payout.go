package services

import (
	"context"
	"fmt"

	"casinobot/domain/entities"
	"casinobot/events"

	log "github.com/sirupsen/logrus"
)

// SettleHand decides a hand's outcome against the dealer and what it is owed.
// Outcomes are checked in order: bust, dealer bust, natural, then totals.
// A natural against a busted dealer is an even-money win.
func SettleHand(hand *entities.PlayerHand, dealer entities.Hand) (entities.Outcome, int64) {
	if hand.Status == entities.HandStatusBusted || hand.Hand.IsBust() {
		return entities.OutcomeLose, 0
	}

	dealerValue := dealer.Value()
	if dealerValue > entities.BlackjackTarget {
		return entities.OutcomeWin, hand.Bet * 2
	}

	if hand.IsNaturalBlackjack() {
		if dealer.IsNatural() {
			return entities.OutcomePush, hand.Bet
		}
		return entities.OutcomeBlackjack, hand.Bet * 5 / 2
	}

	playerValue := hand.Hand.Value()
	switch {
	case playerValue > dealerValue:
		return entities.OutcomeWin, hand.Bet * 2
	case playerValue == dealerValue:
		return entities.OutcomePush, hand.Bet
	default:
		return entities.OutcomeLose, 0
	}
}

// payoutPriority orders settlement: pushes, then wins, then losses
func payoutPriority(outcome entities.Outcome) int {
	switch outcome {
	case entities.OutcomePush:
		return 0
	case entities.OutcomeWin, entities.OutcomeBlackjack:
		return 1
	default:
		return 2
	}
}

// resolve plays the dealer, records results, then pays out. Results exist
// before any money moves so a failed payout still leaves a full record.
func (e *BlackjackEngine) resolve(ctx context.Context, t *blackjackTable, s *entities.BlackjackSession) {
	t.turnTimer.stop()
	t.lobbyTimer.stop()

	for s.DealerHand.Value() < entities.DealerStandValue {
		s.DealerHand.Add(s.Deck.Draw())
	}

	now := e.now()
	s.State = entities.SessionStateEnded
	s.EndedAt = &now
	s.TurnIndex = len(s.TurnOrder)
	s.TurnDeadline = now

	results := &entities.RoundResults{
		SessionID:    s.ID,
		Scope:        s.Scope,
		DealerCards:  append([]entities.Card(nil), s.DealerHand.Cards...),
		DealerValue:  s.DealerHand.Value(),
		DealerBusted: s.DealerHand.IsBust(),
		EndedAt:      now,
	}
	for _, player := range s.SeatedPlayers() {
		for i, hand := range player.Hands {
			outcome, owed := SettleHand(hand, s.DealerHand)
			results.Hands = append(results.Hands, entities.HandResult{
				UserID:       player.UserID,
				HandIndex:    i,
				Cards:        append([]entities.Card(nil), hand.Hand.Cards...),
				Value:        hand.Hand.Value(),
				Bet:          hand.Bet,
				Doubled:      hand.Doubled,
				FromSplit:    hand.FromSplit,
				Outcome:      outcome,
				Owed:         owed,
				PayoutStatus: entities.PayoutStatusNone,
			})
		}
	}
	s.Results = results

	for priority := 0; priority < 2; priority++ {
		for i := range results.Hands {
			if payoutPriority(results.Hands[i].Outcome) == priority {
				e.payHand(ctx, s, &results.Hands[i])
			}
		}
	}
	for i := range results.Hands {
		if note := results.Hands[i].AuditNote; note != "" {
			results.AuditNotes = append(results.AuditNotes, note)
		}
	}

	log.WithFields(log.Fields{
		"sessionID":   s.ID,
		"scope":       s.Scope.String(),
		"dealerValue": results.DealerValue,
		"wagered":     results.TotalWagered(),
		"paid":        results.TotalPaid(),
		"auditNotes":  len(results.AuditNotes),
	}).Info("Blackjack round resolved")

	if !s.ResultsEmitted {
		s.ResultsEmitted = true
		e.publish(events.BlackjackRoundEndedEvent{
			SessionID: s.ID,
			Scope:     s.Scope,
			Results:   results.Clone(),
		})
	}
	e.scheduleCleanup(t, s)
}

// payHand settles one hand through the bank. A shortfall falls back to the
// stake (never for a push, which already is the stake); if that fails too
// the hand is left unpaid with an audit note.
func (e *BlackjackEngine) payHand(ctx context.Context, s *entities.BlackjackSession, result *entities.HandResult) {
	if result.Owed <= 0 {
		return
	}

	txType := entities.TransactionTypeBlackjackPayout
	if result.Outcome == entities.OutcomePush {
		txType = entities.TransactionTypeBlackjackPush
	}
	meta := e.metadata(s, map[string]any{
		"hand_index": result.HandIndex,
		"outcome":    string(result.Outcome),
	})

	if e.bankPay(ctx, s, result.UserID, result.Owed, txType, meta) {
		result.Paid = result.Owed
		result.PayoutStatus = entities.PayoutStatusPaid
		return
	}

	if result.Outcome != entities.OutcomePush && result.Bet > 0 && result.Bet < result.Owed {
		refundMeta := e.metadata(s, map[string]any{
			"hand_index":    result.HandIndex,
			"outcome":       string(result.Outcome),
			"fallback_from": result.Owed,
		})
		if e.bankPay(ctx, s, result.UserID, result.Bet, entities.TransactionTypeBlackjackRefund, refundMeta) {
			result.Paid = result.Bet
			result.PayoutStatus = entities.PayoutStatusRefunded
			result.AuditNote = fmt.Sprintf("%s: bank could not cover %d, refunded stake %d", describeSlot(result.UserID, result.HandIndex), result.Owed, result.Bet)
			e.reportShortfall(s, result)
			return
		}
	}

	result.PayoutStatus = entities.PayoutStatusUnpaid
	result.AuditNote = fmt.Sprintf("%s: bank could not cover %d, nothing paid", describeSlot(result.UserID, result.HandIndex), result.Owed)
	e.reportShortfall(s, result)
}

// bankPay reports whether the bank paid. Ledger errors count as not paid.
func (e *BlackjackEngine) bankPay(ctx context.Context, s *entities.BlackjackSession, userID, amount int64, txType entities.TransactionType, meta map[string]any) bool {
	payout, err := e.ledger.BankDebitIfSufficientThenCreditUser(ctx, s.Scope.GuildID, userID, amount, txType, meta)
	if err != nil {
		log.WithFields(log.Fields{
			"sessionID": s.ID,
			"userID":    userID,
			"amount":    amount,
			"error":     err,
		}).Error("Ledger failed during blackjack payout")
		return false
	}
	return payout.OK
}

func (e *BlackjackEngine) reportShortfall(s *entities.BlackjackSession, result *entities.HandResult) {
	log.WithFields(log.Fields{
		"sessionID": s.ID,
		"userID":    result.UserID,
		"handIndex": result.HandIndex,
		"owed":      result.Owed,
		"paid":      result.Paid,
	}).Warn("Blackjack payout shortfall")

	e.publish(events.PayoutShortfallEvent{
		SessionID: s.ID,
		GuildID:   s.Scope.GuildID,
		UserID:    result.UserID,
		HandIndex: result.HandIndex,
		Owed:      result.Owed,
		Paid:      result.Paid,
		Note:      result.AuditNote,
	})
}
