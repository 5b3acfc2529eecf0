package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"casinobot/domain/entities"
	"casinobot/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessagePublisher struct {
	mock.Mock
}

func (m *mockMessagePublisher) Publish(ctx context.Context, subject string, data []byte) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

func TestNATSEventPublisher_PublishWrapsEnvelope(t *testing.T) {
	client := new(mockMessagePublisher)
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	var captured []byte
	client.On("Publish", mock.Anything, "casino.balance_change", mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).([]byte) }).
		Return(nil)

	event := events.BalanceChangeEvent{
		UserID:          1,
		GuildID:         2,
		OldBalance:      100,
		NewBalance:      50,
		TransactionType: entities.TransactionTypeBlackjackBet,
		ChangeAmount:    -50,
	}
	require.NoError(t, publisher.Publish(event))
	client.AssertExpectations(t)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(captured, &envelope))
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)
	assert.Equal(t, "balance_change", envelope.EventType)
	assert.Equal(t, fixed, envelope.Timestamp)
	assert.Equal(t, "casinobot", envelope.SourceService)

	var payload events.BalanceChangeEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)
}

func TestNATSEventPublisher_LocalHandlersRunEvenWhenPublishFails(t *testing.T) {
	client := new(mockMessagePublisher)
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())

	called := false
	publisher.RegisterLocalHandler(events.EventTypePayoutShortfall, func(ctx context.Context, e events.Event) error {
		called = true
		return errors.New("handler failed")
	})
	client.On("Publish", mock.Anything, "casino.payout_shortfall", mock.Anything).Return(errors.New("connection refused"))

	err := publisher.Publish(events.PayoutShortfallEvent{SessionID: "s"})
	assert.ErrorContains(t, err, "failed to publish event to NATS")
	assert.True(t, called)
}

func TestNATSEventPublisher_NoStreamIsNotAnError(t *testing.T) {
	client := new(mockMessagePublisher)
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())
	client.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("nats: no response from stream"))

	assert.NoError(t, publisher.Publish(events.BlackjackRoundEndedEvent{SessionID: "s"}))
}

func TestEventSubjectMapper(t *testing.T) {
	t.Parallel()

	mapper := NewEventSubjectMapper()
	assert.Equal(t, "casino.blackjack_round_ended", mapper.MapEventToSubject(events.BlackjackRoundEndedEvent{}))
	assert.Equal(t, events.EventTypePayoutShortfall, mapper.MapSubjectToEventType("casino.payout_shortfall"))
	assert.ElementsMatch(t, []string{
		"casino.balance_change",
		"casino.blackjack_round_ended",
		"casino.blackjack_session_cancelled",
		"casino.payout_shortfall",
	}, mapper.GetAllSubjects())
}

func TestNoopEventPublisher(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewNoopEventPublisher().Publish(events.BalanceChangeEvent{}))
}
