package balance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"casinobot/bot/common"
	"casinobot/domain/entities"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	ids, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	balance, err := f.ledger.GetBalance(ctx, ids.GuildID, ids.UserID)
	if err != nil {
		common.RespondWithSystemError(s, i, err, "Error getting balance")
		return
	}
	bank, err := f.ledger.GetBankBalance(ctx, ids.GuildID)
	if err != nil {
		common.RespondWithSystemError(s, i, err, "Error getting bank balance")
		return
	}
	tier, err := f.security.GetSecurityTier(ctx, ids.GuildID, ids.UserID)
	if err != nil {
		common.RespondWithSystemError(s, i, err, "Error getting security tier")
		return
	}

	if err := common.RespondWithEmbed(s, i, BalanceEmbed(ids.UserID, balance, bank, tier, f.window), nil, true); err != nil {
		common.RespondWithSystemError(s, i, err, "Error responding to balance command")
	}
}

func (f *Feature) handleHistory(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	ids, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	records, err := f.ledger.GetHistory(ctx, ids.GuildID, ids.UserID, common.HistoryPageSize)
	if err != nil {
		common.RespondWithSystemError(s, i, err, "Error getting transaction history")
		return
	}

	if err := common.RespondWithEmbed(s, i, HistoryEmbed(ids.UserID, records), nil, true); err != nil {
		common.RespondWithSystemError(s, i, err, "Error responding to history command")
	}
}

// BalanceEmbed shows a player's bits, the house bank and their current security tier
func BalanceEmbed(userID, balance, bank int64, tier entities.SecurityTier, window time.Duration) *discordgo.MessageEmbed {
	fee := "none"
	if tier.HasFee() {
		fee = common.FormatFeePercent(tier.FeePct)
	}

	label := tier.Label
	if label == "" {
		label = fmt.Sprintf("Tier %d", tier.Level)
	}

	return &discordgo.MessageEmbed{
		Title:       "💰 Balance",
		Color:       common.ColorPrimary,
		Description: fmt.Sprintf("%s has **%s bits**", common.GetUserMention(userID), common.FormatBalance(balance)),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "House bank",
				Value:  common.FormatBalance(bank),
				Inline: true,
			},
			{
				Name:   "Security tier",
				Value:  label,
				Inline: true,
			},
			{
				Name:   "Casino fee",
				Value:  fee,
				Inline: true,
			},
			{
				Name:  fmt.Sprintf("Net casino profit (last %s)", common.FormatDuration(window)),
				Value: common.FormatSignedBalance(tier.NetProfit),
			},
		},
	}
}

// HistoryEmbed lists the newest ledger entries, newest first
func HistoryEmbed(userID int64, records []*entities.TransactionRecord) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "📜 Recent transactions",
		Color: common.ColorInfo,
	}

	if len(records) == 0 {
		embed.Description = fmt.Sprintf("%s has no transactions yet.", common.GetUserMention(userID))
		return embed
	}

	lines := make([]string, len(records))
	for idx, r := range records {
		lines[idx] = fmt.Sprintf("%s `%s` %s → %s",
			common.FormatDiscordTimestamp(r.CreatedAt, "R"),
			r.TransactionType,
			common.FormatSignedBalance(r.ChangeAmount),
			common.FormatBalance(r.BalanceAfter))
	}
	embed.Description = strings.Join(lines, "\n")
	return embed
}
