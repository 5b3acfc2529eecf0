package blackjack

import (
	"fmt"
	"strings"

	"casinobot/bot/common"
	"casinobot/domain/entities"
	"casinobot/domain/services"
	"casinobot/events"

	"github.com/bwmarrin/discordgo"
)

const hiddenCard = "🂠"

// FormatCards renders cards as "K♠ 9♦"
func FormatCards(cards []entities.Card) string {
	if len(cards) == 0 {
		return "-"
	}
	labels := make([]string, len(cards))
	for i, c := range cards {
		labels[i] = c.String()
	}
	return strings.Join(labels, " ")
}

func formatHand(hand *entities.PlayerHand) string {
	line := fmt.Sprintf("%s (%d)", FormatCards(hand.Hand.Cards), hand.Hand.Value())
	switch hand.Status {
	case entities.HandStatusBusted:
		line += " bust"
	case entities.HandStatusBlackjack:
		line += " blackjack!"
	case entities.HandStatusStood:
		line += " stood"
	}
	if hand.Doubled {
		line += " doubled"
	}
	return line
}

func playerField(snap *entities.SessionSnapshot, p *entities.BlackjackPlayer) *discordgo.MessageEmbedField {
	var lines []string
	switch {
	case snap.State == entities.SessionStateLobby && p.Paid:
		lines = append(lines, fmt.Sprintf("Bet %s ✅ paid", common.FormatBalance(p.PaidStake)))
	case snap.State == entities.SessionStateLobby:
		lines = append(lines, fmt.Sprintf("Bet %s, not paid", common.FormatBalance(p.Bet)))
	}
	for i, hand := range p.Hands {
		marker := ""
		if snap.CurrentTurn != nil && snap.CurrentTurn.UserID == p.UserID && snap.CurrentTurn.HandIndex == i {
			marker = "▶ "
		}
		lines = append(lines, fmt.Sprintf("%s%s · %s", marker, formatHand(hand), common.FormatBalance(hand.Bet)))
	}

	name := fmt.Sprintf("Seat %d", seatNumber(snap, p.UserID))
	if p.UserID == snap.HostUserID {
		name += " (host)"
	}
	return &discordgo.MessageEmbedField{
		Name:  name,
		Value: common.GetUserMention(p.UserID) + "\n" + strings.Join(lines, "\n"),
	}
}

func seatNumber(snap *entities.SessionSnapshot, userID int64) int {
	for i, p := range snap.Players {
		if p.UserID == userID {
			return i + 1
		}
	}
	return 0
}

// TableEmbed renders the live table. The dealer's hole card stays hidden
// while hands are still being played.
func TableEmbed(snap *entities.SessionSnapshot) *discordgo.MessageEmbed {
	if snap.Results != nil {
		return ResultsEmbed(snap.Results)
	}

	embed := &discordgo.MessageEmbed{
		Title: "🃏 Blackjack",
		Color: common.ColorFelt,
	}

	switch snap.State {
	case entities.SessionStateLobby:
		embed.Description = fmt.Sprintf("Seats %d/%d · minimum bet %s bits\nEveryone pays in, then the host deals.",
			len(snap.Players), snap.MaxPlayers, common.FormatBalance(snap.MinBet))
		if snap.HostTier.HasFee() {
			embed.Description += fmt.Sprintf("\nTable security fee: at least %s", common.FormatFeePercent(snap.HostTier.FeePct))
		}
	case entities.SessionStatePlaying:
		dealer := FormatCards(snap.DealerCards)
		if snap.DealerHidden {
			dealer += " " + hiddenCard
		}
		embed.Description = fmt.Sprintf("Dealer: %s (%d)", dealer, snap.DealerValue)
		if snap.CurrentTurn != nil {
			embed.Description += fmt.Sprintf("\nTurn: %s, auto-stand %s",
				common.GetUserMention(snap.CurrentTurn.UserID),
				common.FormatDiscordTimestamp(snap.TurnDeadline, "R"))
		}
	case entities.SessionStateEnded:
		embed.Color = common.ColorWarning
		embed.Description = "This table is closed."
		if snap.Cancelled {
			embed.Description = "This table was cancelled and paid stakes were refunded."
		}
	}

	for _, p := range snap.Players {
		if len(embed.Fields) == common.MaxEmbedFields {
			break
		}
		embed.Fields = append(embed.Fields, playerField(snap, p))
	}

	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Table " + shortID(snap.SessionID)}
	return embed
}

func outcomeLabel(r entities.HandResult) string {
	switch r.Outcome {
	case entities.OutcomeBlackjack:
		return "Blackjack"
	case entities.OutcomeWin:
		return "Win"
	case entities.OutcomePush:
		return "Push"
	default:
		return "Lose"
	}
}

// ResultsEmbed renders a resolved round
func ResultsEmbed(results *entities.RoundResults) *discordgo.MessageEmbed {
	dealer := fmt.Sprintf("Dealer: %s (%d)", FormatCards(results.DealerCards), results.DealerValue)
	if results.DealerBusted {
		dealer += " bust"
	}

	lines := make([]string, 0, len(results.Hands))
	for _, h := range results.Hands {
		line := fmt.Sprintf("%s %s (%d) · **%s** %s",
			common.GetUserMention(h.UserID), FormatCards(h.Cards), h.Value, outcomeLabel(h), common.FormatSignedBalance(h.Net()))
		switch h.PayoutStatus {
		case entities.PayoutStatusRefunded:
			line += " (stake refunded, bank short)"
		case entities.PayoutStatusUnpaid:
			line += " (unpaid, bank short)"
		}
		lines = append(lines, line)
	}

	color := common.ColorSuccess
	if len(results.AuditNotes) > 0 {
		color = common.ColorDanger
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🃏 Blackjack results",
		Color:       color,
		Description: dealer,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Hands",
				Value: strings.Join(lines, "\n"),
			},
			{
				Name:   "Wagered",
				Value:  common.FormatBalance(results.TotalWagered()),
				Inline: true,
			},
			{
				Name:   "Paid out",
				Value:  common.FormatBalance(results.TotalPaid()),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Table " + shortID(results.SessionID)},
	}
	if len(lines) == 0 {
		embed.Fields[0].Value = "No hands were played."
	}
	if len(results.AuditNotes) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "House bank shortfall",
			Value: strings.Join(results.AuditNotes, "\n"),
		})
	}
	return embed
}

// CancelledEmbed renders a table closed before dealing
func CancelledEmbed(event events.BlackjackSessionCancelledEvent) *discordgo.MessageEmbed {
	reason := "The host closed the table."
	switch event.Reason {
	case services.CancelReasonHostLeft:
		reason = "The host left the table."
	case services.CancelReasonTimeout:
		reason = "The table sat idle too long."
	}

	refunded := "Nobody had paid in."
	if len(event.RefundedUsers) > 0 {
		mentions := make([]string, len(event.RefundedUsers))
		for i, id := range event.RefundedUsers {
			mentions[i] = common.GetUserMention(id)
		}
		refunded = "Stakes refunded to " + strings.Join(mentions, ", ")
	}

	return &discordgo.MessageEmbed{
		Title:       "🃏 Blackjack table closed",
		Color:       common.ColorWarning,
		Description: reason + "\n" + refunded,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Table " + shortID(event.SessionID)},
	}
}

func shortID(sessionID string) string {
	if len(sessionID) > 8 {
		return sessionID[:8]
	}
	return sessionID
}
