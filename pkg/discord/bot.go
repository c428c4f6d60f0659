package discord

import (
	"context"
	"fmt"

	"icrelay/internal/models"
	"icrelay/internal/privacy"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Intents requests guild and direct messages with their content
const Intents = discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

// MessageHandler receives every inbound chat message
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg models.InboundMessage)
}

// NewSession creates an unopened bot session
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	return session, nil
}

// Bot owns the gateway connection and forwards messages to a handler
type Bot struct {
	session *discordgo.Session
	handler MessageHandler
	logger  *logrus.Logger
}

// NewBot binds a handler to a session
func NewBot(session *discordgo.Session, handler MessageHandler, logger *logrus.Logger) *Bot {
	if logger == nil {
		logger = logrus.New()
	}
	return &Bot{
		session: session,
		handler: handler,
		logger:  logger,
	}
}

// Run opens the gateway, dispatches messages until ctx is done, then closes it
func (b *Bot) Run(ctx context.Context) error {
	removeReady := b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.WithFields(logrus.Fields{
			"user":   r.User.Username,
			"guilds": len(r.Guilds),
		}).Info("Discord bot connected")
	})
	defer removeReady()

	removeMessage := b.session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if ctx.Err() != nil {
			return
		}
		selfID := ""
		if s.State != nil && s.State.User != nil {
			selfID = s.State.User.ID
		}
		inbound := ToInbound(m, selfID)
		if b.logger.IsLevelEnabled(logrus.DebugLevel) {
			b.logger.WithFields(LogFields(ctx, inbound)).Debug("Message received")
		}
		b.handler.HandleMessage(ctx, inbound)
	})
	defer removeMessage()

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord open connection: %w", err)
	}
	b.logger.Info("Discord gateway opened")

	<-ctx.Done()

	if err := b.session.Close(); err != nil {
		b.logger.WithError(err).Warn("Error closing Discord session")
		return err
	}
	b.logger.Info("Discord gateway closed")
	return nil
}

// ToInbound converts a gateway event into the router's message model.
// Guild messages carry the member's roles; direct messages carry none.
func ToInbound(m *discordgo.MessageCreate, selfID string) models.InboundMessage {
	msg := models.InboundMessage{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author == nil {
		return msg
	}

	msg.FromSelf = selfID != "" && m.Author.ID == selfID
	msg.Author = models.Identity{
		ID:          m.Author.ID,
		DisplayName: displayName(m.Author, m.Member),
	}
	if m.GuildID != "" && m.Member != nil {
		msg.Author.Member = true
		msg.Author.RoleIDs = append([]string(nil), m.Member.Roles...)
	}
	return msg
}

func displayName(user *discordgo.User, member *discordgo.Member) string {
	switch {
	case member != nil && member.Nick != "":
		return member.Nick
	case user.GlobalName != "":
		return user.GlobalName
	default:
		return user.Username
	}
}

// LogFields describes an inbound message; ids are raw only under verbose logging
func LogFields(ctx context.Context, msg models.InboundMessage) logrus.Fields {
	return logrus.Fields{
		"channel_id": privacy.ChannelIDForLog(ctx, msg.ChannelID),
		"message_id": privacy.MessageIDForLog(ctx, msg.ID),
		"author_id":  privacy.UserIDForLog(ctx, msg.Author.ID),
		"guild":      msg.GuildID != "",
	}
}
