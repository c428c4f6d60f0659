package models

import (
	"bytes"
)

// Identity describes whoever invoked the relay.
// Member is false when the caller carries no role information
// (direct messages, HTTP callers).
type Identity struct {
	ID          string
	DisplayName string
	RoleIDs     []string
	Member      bool
}

// Origin points at the chat message that triggered an invocation
type Origin struct {
	ChannelID string
	MessageID string
}

// InboundMessage is a chat message handed to the command router
type InboundMessage struct {
	ID        string
	ChannelID string
	GuildID   string
	Content   string
	Author    Identity
	FromSelf  bool
}

// Origin returns the location of this message for acknowledgement and cleanup
func (m InboundMessage) Origin() *Origin {
	return &Origin{ChannelID: m.ChannelID, MessageID: m.ID}
}

// Attachment is an in-memory file reused across several sends
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Reader returns a fresh reader positioned at the start of the data
func (a *Attachment) Reader() *bytes.Reader {
	return bytes.NewReader(a.Data)
}

// Size returns the attachment length in bytes
func (a *Attachment) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Data)
}

// OutboundMessage is what the transport posts to a channel
type OutboundMessage struct {
	Content    string
	Attachment *Attachment
}

// Channel is a resolved chat channel
type Channel struct {
	ID     string
	Name   string
	Thread bool
}
