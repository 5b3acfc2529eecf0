package blackjack

import (
	"strings"
	"testing"
	"time"

	"casinobot/domain/entities"
	"casinobot/events"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spade(rank entities.Rank) entities.Card {
	return entities.Card{Rank: rank, Suit: entities.SuitSpades}
}

func playingSnapshot() *entities.SessionSnapshot {
	return &entities.SessionSnapshot{
		SessionID:    "abcdef123456",
		Scope:        testScope,
		HostUserID:   1,
		State:        entities.SessionStatePlaying,
		MinBet:       100,
		MaxPlayers:   6,
		CurrentTurn:  &entities.TurnSlot{UserID: 1, HandIndex: 0},
		TurnDeadline: time.Unix(1700000000, 0),
		DealerCards:  []entities.Card{spade(entities.RankTen)},
		DealerHidden: true,
		DealerValue:  10,
		Players: []*entities.BlackjackPlayer{{
			UserID:    1,
			Bet:       100,
			Paid:      true,
			PaidStake: 100,
			Hands: []*entities.PlayerHand{{
				Hand:   entities.NewHand(spade(entities.RankNine), spade(entities.RankSeven)),
				Bet:    100,
				Status: entities.HandStatusPlaying,
			}},
		}},
	}
}

func TestTableEmbed_HidesHoleCard(t *testing.T) {
	embed := TableEmbed(playingSnapshot())

	assert.Contains(t, embed.Description, hiddenCard)
	assert.Contains(t, embed.Description, "(10)")
	assert.Contains(t, embed.Description, "<t:1700000000:R>")
	require.Len(t, embed.Fields, 1)
	assert.Contains(t, embed.Fields[0].Value, "▶ ")
	assert.Contains(t, embed.Fields[0].Name, "(host)")
	assert.Equal(t, "Table abcdef12", embed.Footer.Text)
}

func TestTableComponents(t *testing.T) {
	snap := playingSnapshot()
	rows := TableComponents(snap)
	require.Len(t, rows, 1)

	row := rows[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, len(playButtons))
	for _, c := range row.Components {
		button := c.(discordgo.Button)
		req, err := DecodeCustomID(button.CustomID, snap.Scope, 1)
		require.NoError(t, err)
		assert.Equal(t, snap.SessionID, req.SessionID)
	}

	snap.State = entities.SessionStateLobby
	lobbyRow := TableComponents(snap)[0].(discordgo.ActionsRow)
	assert.Len(t, lobbyRow.Components, len(lobbyButtons))

	snap.State = entities.SessionStateEnded
	assert.Nil(t, TableComponents(snap))
}

func TestResultsEmbed_ShowsShortfall(t *testing.T) {
	results := &entities.RoundResults{
		SessionID:   "abcdef123456",
		DealerCards: []entities.Card{spade(entities.RankTen), spade(entities.RankEight)},
		DealerValue: 18,
		Hands: []entities.HandResult{
			{UserID: 1, Cards: []entities.Card{spade(entities.RankTen), spade(entities.RankNine)}, Value: 19, Bet: 500,
				Outcome: entities.OutcomeWin, Owed: 1000, Paid: 500, PayoutStatus: entities.PayoutStatusRefunded,
				AuditNote: "user 1 hand 0: bank could not cover 1000, refunded stake 500"},
			{UserID: 2, Cards: []entities.Card{spade(entities.RankTen), spade(entities.RankSeven)}, Value: 17, Bet: 500,
				Outcome: entities.OutcomeLose, PayoutStatus: entities.PayoutStatusNone},
		},
		AuditNotes: []string{"user 1 hand 0: bank could not cover 1000, refunded stake 500"},
	}

	embed := ResultsEmbed(results)
	hands := embed.Fields[0].Value
	lines := strings.Split(hands, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "stake refunded")
	assert.Contains(t, lines[1], "**Lose** -500")
	require.Len(t, embed.Fields, 4)
	assert.Equal(t, "House bank shortfall", embed.Fields[3].Name)
}

func TestCancelledEmbed(t *testing.T) {
	embed := CancelledEmbed(events.BlackjackSessionCancelledEvent{
		SessionID:     "abc",
		Reason:        "lobby_timeout",
		RefundedUsers: []int64{5, 6},
	})
	assert.Contains(t, embed.Description, "idle")
	assert.Contains(t, embed.Description, "<@5>, <@6>")
}
