package blackjack

import (
	"context"
	"fmt"
	"sync"

	"casinobot/bot/common"
	"casinobot/domain/entities"
	"casinobot/domain/interfaces"
	"casinobot/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// tableMessage is the channel message currently rendering a table
type tableMessage struct {
	sessionID string
	messageID string
}

// Feature represents the blackjack feature
type Feature struct {
	session *discordgo.Session
	engine  interfaces.BlackjackService

	mu       sync.Mutex
	messages map[entities.TableScope]tableMessage
}

// NewFeature creates a new blackjack feature instance
func NewFeature(session *discordgo.Session, engine interfaces.BlackjackService) *Feature {
	return &Feature{
		session:  session,
		engine:   engine,
		messages: make(map[entities.TableScope]tableMessage),
	}
}

// HandleInteraction handles table button clicks
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		log.Warnf("Unknown interaction type in blackjack: %v", i.Type)
		return
	}
	f.handleButton(s, i)
}

// OnRoundEnded replaces the table message with the round's results
func (f *Feature) OnRoundEnded(ctx context.Context, event events.Event) {
	ended, ok := event.(events.BlackjackRoundEndedEvent)
	if !ok || ended.Results == nil {
		log.Warnf("Blackjack round handler received %T", event)
		return
	}
	f.finish(ended.Scope, ended.SessionID, ResultsEmbed(ended.Results))
}

// OnSessionCancelled replaces the table message with a cancellation notice
func (f *Feature) OnSessionCancelled(ctx context.Context, event events.Event) {
	cancelled, ok := event.(events.BlackjackSessionCancelledEvent)
	if !ok {
		log.Warnf("Blackjack cancel handler received %T", event)
		return
	}
	f.finish(cancelled.Scope, cancelled.SessionID, CancelledEmbed(cancelled))
}

// OnPayoutShortfall tells the channel the bank could not pay in full
func (f *Feature) OnPayoutShortfall(ctx context.Context, event events.Event) {
	shortfall, ok := event.(events.PayoutShortfallEvent)
	if !ok {
		return
	}
	log.WithFields(log.Fields{
		"sessionID": shortfall.SessionID,
		"guildID":   shortfall.GuildID,
		"userID":    shortfall.UserID,
		"owed":      shortfall.Owed,
		"paid":      shortfall.Paid,
	}).Warn("House bank shortfall reported to blackjack feature")
}

// finish renders the final embed on the tracked message, or posts it when
// the table message is unknown
func (f *Feature) finish(scope entities.TableScope, sessionID string, embed *discordgo.MessageEmbed) {
	channelID := fmt.Sprintf("%d", scope.ChannelID)

	f.mu.Lock()
	msg, tracked := f.messages[scope]
	if tracked && msg.sessionID == sessionID {
		delete(f.messages, scope)
	} else {
		tracked = false
	}
	f.mu.Unlock()

	if tracked {
		components := []discordgo.MessageComponent{}
		_, err := f.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    channelID,
			ID:         msg.messageID,
			Embeds:     &[]*discordgo.MessageEmbed{embed},
			Components: &components,
		})
		if err == nil {
			return
		}
		log.WithFields(log.Fields{
			"sessionID": sessionID,
			"messageID": msg.messageID,
			"error":     err,
		}).Warn("Failed to edit blackjack table message, posting instead")
	}

	if _, err := f.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.WithFields(log.Fields{
			"sessionID": sessionID,
			"channelID": channelID,
			"error":     err,
		}).Error("Failed to post blackjack outcome")
	}
}

// track remembers which message renders a scope's table
func (f *Feature) track(scope entities.TableScope, sessionID, messageID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[scope] = tableMessage{sessionID: sessionID, messageID: messageID}
}

// refresh re-renders the tracked table message after a slash command changed it
func (f *Feature) refresh(snap *entities.SessionSnapshot) {
	f.mu.Lock()
	msg, ok := f.messages[snap.Scope]
	f.mu.Unlock()
	if !ok || msg.sessionID != snap.SessionID || snap.State == entities.SessionStateEnded {
		return
	}

	components := TableComponents(snap)
	_, err := f.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    fmt.Sprintf("%d", snap.Scope.ChannelID),
		ID:         msg.messageID,
		Embeds:     &[]*discordgo.MessageEmbed{TableEmbed(snap)},
		Components: &components,
	})
	if err != nil {
		log.WithFields(log.Fields{
			"sessionID": snap.SessionID,
			"error":     err,
		}).Warn("Failed to refresh blackjack table message")
	}
}

func scopeOf(ids common.InteractionIDs) entities.TableScope {
	return entities.TableScope{GuildID: ids.GuildID, ChannelID: ids.ChannelID}
}
