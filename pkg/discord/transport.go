// Package discord adapts a discordgo session to the relay's transport and
// inbound message model.
package discord

import (
	"context"
	"fmt"

	"icrelay/internal/models"

	"github.com/bwmarrin/discordgo"
)

// MaxMessageLength is the Discord limit for message content
const MaxMessageLength = 2000

// Session is the part of *discordgo.Session the transport calls
type Session interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Transport posts, looks up and deletes messages through the bot session
type Transport struct {
	session Session
}

// NewTransport wraps a session
func NewTransport(session Session) *Transport {
	return &Transport{session: session}
}

// ResolveChannel fetches channel metadata; unknown or inaccessible ids fail
func (t *Transport) ResolveChannel(ctx context.Context, channelID string) (models.Channel, error) {
	if channelID == "" {
		return models.Channel{}, fmt.Errorf("empty channel id")
	}
	ch, err := t.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return models.Channel{}, fmt.Errorf("discord channel lookup: %w", err)
	}
	if ch == nil {
		return models.Channel{}, fmt.Errorf("discord channel %s not found", channelID)
	}
	return models.Channel{
		ID:     ch.ID,
		Name:   ch.Name,
		Thread: ch.IsThread(),
	}, nil
}

// Send posts content with an optional file and returns the new message id.
// Content is sent unchanged; Discord rejects anything over MaxMessageLength.
func (t *Transport) Send(ctx context.Context, channelID string, msg models.OutboundMessage) (string, error) {
	data := &discordgo.MessageSend{Content: msg.Content}
	if msg.Attachment != nil {
		data.Files = []*discordgo.File{{
			Name:        msg.Attachment.Filename,
			ContentType: msg.Attachment.ContentType,
			Reader:      msg.Attachment.Reader(),
		}}
	}

	sent, err := t.session.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("discord send: %w", err)
	}
	if sent == nil {
		return "", nil
	}
	return sent.ID, nil
}

// Delete removes one message
func (t *Transport) Delete(ctx context.Context, channelID, messageID string) error {
	if err := t.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord delete: %w", err)
	}
	return nil
}
