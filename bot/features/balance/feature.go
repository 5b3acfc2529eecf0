package balance

import (
	"time"

	"casinobot/domain/interfaces"

	"github.com/bwmarrin/discordgo"
)

// Feature answers /balance and /history
type Feature struct {
	ledger   interfaces.LedgerService
	security interfaces.SecurityTierService
	window   time.Duration
}

// New creates the feature. window is the security tier's trailing profit window.
func New(ledger interfaces.LedgerService, security interfaces.SecurityTierService, window time.Duration) *Feature {
	return &Feature{
		ledger:   ledger,
		security: security,
		window:   window,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "history":
		f.handleHistory(s, i)
	default:
		f.handleBalance(s, i)
	}
}
