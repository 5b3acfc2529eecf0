package common

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		name     string
		balance  int64
		expected string
	}{
		{"small", 999, "999"},
		{"thousands", 1000, "1,000"},
		{"millions", 1234567, "1,234,567"},
		{"zero", 0, "0"},
		{"negative", -25000, "-25,000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatBalance(tt.balance))
		})
	}
}

func TestFormatSignedBalance(t *testing.T) {
	assert.Equal(t, "+1,500", FormatSignedBalance(1500))
	assert.Equal(t, "-200", FormatSignedBalance(-200))
	assert.Equal(t, "0", FormatSignedBalance(0))
}

func TestFormatFeePercent(t *testing.T) {
	assert.Equal(t, "2%", FormatFeePercent(decimal.RequireFromString("0.02")))
	assert.Equal(t, "2.5%", FormatFeePercent(decimal.RequireFromString("0.025")))
	assert.Equal(t, "0%", FormatFeePercent(decimal.Zero))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "45s", FormatDuration(45*time.Second))
	assert.Equal(t, "5m", FormatDuration(5*time.Minute))
	assert.Equal(t, "1h 30m", FormatDuration(90*time.Minute))
	assert.Equal(t, "2d 3h", FormatDuration(51*time.Hour))
}

func TestParseInteractionIDs(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		GuildID:   "111",
		ChannelID: "222",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "333"}},
	}}

	ids, err := ParseInteractionIDs(i)
	require.NoError(t, err)
	assert.Equal(t, InteractionIDs{GuildID: 111, ChannelID: 222, UserID: 333}, ids)

	_, err = ParseInteractionIDs(&discordgo.InteractionCreate{Interaction: &discordgo.Interaction{ChannelID: "222"}})
	assert.Error(t, err)
}
