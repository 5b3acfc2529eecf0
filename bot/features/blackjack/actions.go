package blackjack

import (
	"errors"
	"fmt"
	"strings"

	"casinobot/domain/entities"
)

// CustomIDPrefix marks component custom IDs owned by this feature
const CustomIDPrefix = "bj"

// ErrMalformedCustomID is returned for custom IDs that do not decode to a table action
var ErrMalformedCustomID = errors.New("malformed blackjack custom ID")

// buttonKinds are the actions reachable from a table message button
var buttonKinds = map[entities.ActionKind]bool{
	entities.ActionJoin:   true,
	entities.ActionLeave:  true,
	entities.ActionPay:    true,
	entities.ActionStart:  true,
	entities.ActionHit:    true,
	entities.ActionStand:  true,
	entities.ActionDouble: true,
	entities.ActionSplit:  true,
	entities.ActionEnd:    true,
}

// commandKinds maps /blackjack subcommands to actions
var commandKinds = map[string]entities.ActionKind{
	"create": entities.ActionCreate,
	"join":   entities.ActionJoin,
	"bet":    entities.ActionSetBet,
	"pay":    entities.ActionPay,
	"start":  entities.ActionStart,
	"leave":  entities.ActionLeave,
	"end":    entities.ActionEnd,
}

// IsBlackjackCustomID reports whether a component belongs to a blackjack table
func IsBlackjackCustomID(customID string) bool {
	return strings.HasPrefix(customID, CustomIDPrefix+":")
}

// EncodeCustomID builds the custom ID for a table button: bj:<sessionID>:<action>
func EncodeCustomID(sessionID string, kind entities.ActionKind) string {
	return fmt.Sprintf("%s:%s:%s", CustomIDPrefix, sessionID, kind)
}

// DecodeCustomID turns a button click into a request pinned to the session
// the button was rendered for
func DecodeCustomID(customID string, scope entities.TableScope, userID int64) (entities.ActionRequest, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != CustomIDPrefix || parts[1] == "" {
		return entities.ActionRequest{}, fmt.Errorf("%w: %q", ErrMalformedCustomID, customID)
	}

	kind := entities.ActionKind(parts[2])
	if !buttonKinds[kind] {
		return entities.ActionRequest{}, fmt.Errorf("%w: unknown action %q", ErrMalformedCustomID, parts[2])
	}

	return entities.ActionRequest{
		Kind:      kind,
		Scope:     scope,
		SessionID: parts[1],
		UserID:    userID,
	}, nil
}

// RejectMessage is the user-facing text for a rejected command
func RejectMessage(reason entities.RejectReason) string {
	switch reason {
	case entities.ReasonSessionNotFound:
		return "There is no blackjack table in this channel. Start one with `/blackjack create`."
	case entities.ReasonTableBusy:
		return "A table is already running in this channel."
	case entities.ReasonStaleSession:
		return "That table has closed. Use the latest table message."
	case entities.ReasonNotHost:
		return "Only the host can do that."
	case entities.ReasonNotInLobby:
		return "The round has already been dealt."
	case entities.ReasonNotPlaying:
		return "The round has not started yet."
	case entities.ReasonAlreadyJoined:
		return "You are already seated."
	case entities.ReasonNotJoined:
		return "You are not seated at this table."
	case entities.ReasonTableFull:
		return "The table is full."
	case entities.ReasonBelowMinimum:
		return "That bet is below the table minimum."
	case entities.ReasonInsufficientFunds:
		return "You don't have enough bits for that bet and its fee."
	case entities.ReasonAlreadyPaid:
		return "You have already paid in."
	case entities.ReasonNotPaid, entities.ReasonPlayersNotPaid:
		return "Every seated player must pay before the deal."
	case entities.ReasonNoPlayers:
		return "Nobody is seated."
	case entities.ReasonNotYourTurn:
		return "It's not your turn."
	case entities.ReasonCannotDouble:
		return "You can only double on your first two cards."
	case entities.ReasonCannotSplit:
		return "You can only split a pair on your first two cards."
	case entities.ReasonRefundFailed:
		return "The house bank can't refund your stake right now."
	case entities.ReasonSessionEnded:
		return "This table has already finished."
	default:
		return "That action isn't available."
	}
}
