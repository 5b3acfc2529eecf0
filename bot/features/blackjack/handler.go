package blackjack

import (
	"context"

	"casinobot/bot/common"
	"casinobot/domain/entities"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleCommand handles the /blackjack slash command
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	ids, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Blackjack can only be played in a server channel")
		return
	}
	scope := scopeOf(ids)

	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		common.RespondWithError(s, i, "Please provide a subcommand")
		return
	}
	sub := options[0]

	if sub.Name == "table" {
		f.handleShowTable(s, i, scope)
		return
	}

	kind, ok := commandKinds[sub.Name]
	if !ok {
		common.RespondWithError(s, i, "Unknown subcommand")
		return
	}

	req := entities.ActionRequest{
		Kind:   kind,
		Scope:  scope,
		UserID: ids.UserID,
	}
	for _, opt := range sub.Options {
		if opt.Name == "amount" {
			req.Amount = opt.IntValue()
		}
	}

	result, err := f.engine.Dispatch(ctx, req)
	if err != nil {
		common.RespondWithSystemError(s, i, err, "Blackjack command failed")
		return
	}
	if !result.OK {
		common.RespondWithError(s, i, RejectMessage(result.Reason))
		return
	}

	if kind == entities.ActionCreate {
		f.postTable(s, i, result.Snapshot)
		return
	}

	f.refresh(result.Snapshot)
	if err := common.RespondWithSuccess(s, i, confirmation(kind, result.Snapshot, ids.UserID), true); err != nil {
		log.Errorf("Error responding to blackjack command: %v", err)
	}
}

// handleButton decodes a table button and runs it against the pinned session
func (f *Feature) handleButton(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	ids, err := common.ParseInteractionIDs(i)
	if err != nil {
		common.RespondWithError(s, i, "Blackjack can only be played in a server channel")
		return
	}

	req, err := DecodeCustomID(i.MessageComponentData().CustomID, scopeOf(ids), ids.UserID)
	if err != nil {
		log.WithError(err).Warn("Ignoring malformed blackjack button")
		common.RespondWithError(s, i, "Unknown blackjack action")
		return
	}

	result, err := f.engine.Dispatch(ctx, req)
	if err != nil {
		common.RespondWithSystemError(s, i, err, "Blackjack action failed")
		return
	}
	if !result.OK {
		common.RespondWithError(s, i, RejectMessage(result.Reason))
		return
	}

	snap := result.Snapshot
	if snap.State != entities.SessionStateEnded {
		// the clicked message becomes the tracked one
		f.track(snap.Scope, snap.SessionID, i.Message.ID)
	}
	if err := common.UpdateComponentMessage(s, i, TableEmbed(snap), TableComponents(snap)); err != nil {
		log.Errorf("Error updating blackjack table message: %v", err)
	}
}

// handleShowTable reposts the current table so it is easy to find again
func (f *Feature) handleShowTable(s *discordgo.Session, i *discordgo.InteractionCreate, scope entities.TableScope) {
	snap, ok := f.engine.Snapshot(scope)
	if !ok {
		common.RespondWithError(s, i, RejectMessage(entities.ReasonSessionNotFound))
		return
	}
	f.postTable(s, i, snap)
}

// postTable answers with a public table message and tracks it for later edits
func (f *Feature) postTable(s *discordgo.Session, i *discordgo.InteractionCreate, snap *entities.SessionSnapshot) {
	if err := common.RespondWithEmbed(s, i, TableEmbed(snap), TableComponents(snap), false); err != nil {
		log.Errorf("Error posting blackjack table: %v", err)
		return
	}
	if snap.State == entities.SessionStateEnded {
		return
	}

	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		log.WithFields(log.Fields{
			"sessionID": snap.SessionID,
			"error":     err,
		}).Warn("Could not fetch blackjack table message, results will be posted separately")
		return
	}
	f.track(snap.Scope, snap.SessionID, msg.ID)
}

func confirmation(kind entities.ActionKind, snap *entities.SessionSnapshot, userID int64) string {
	switch kind {
	case entities.ActionJoin:
		return "You took a seat. Pay in before the host deals."
	case entities.ActionSetBet:
		if p := snap.Player(userID); p != nil {
			return "Your bet is now " + common.FormatBalance(p.Bet) + " bits."
		}
		return "Bet updated."
	case entities.ActionPay:
		return "You're paid in."
	case entities.ActionStart:
		return "Cards are out."
	case entities.ActionLeave:
		return "You left the table."
	case entities.ActionEnd:
		return "Table closed."
	default:
		return "Done."
	}
}
