package relay

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"icrelay/internal/models"
)

type sentMessage struct {
	ChannelID string
	Content   string
	Data      []byte
	Filename  string
}

type deletedMessage struct {
	ChannelID string
	MessageID string
}

// fakeTransport records every call; channels not in known fail to resolve
type fakeTransport struct {
	mu        sync.Mutex
	known     map[string]bool
	failSend  map[string]error
	failDel   error
	maxRunes  int
	resolved  []string
	sent      []sentMessage
	deleted   []deletedMessage
	nextMsgID int
}

func newFakeTransport(channels ...string) *fakeTransport {
	known := make(map[string]bool, len(channels))
	for _, ch := range channels {
		known[ch] = true
	}
	return &fakeTransport{known: known, failSend: map[string]error{}}
}

func (f *fakeTransport) ResolveChannel(ctx context.Context, channelID string) (models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, channelID)
	if !f.known[channelID] {
		return models.Channel{}, errors.New("unknown channel")
	}
	return models.Channel{ID: channelID}, nil
}

func (f *fakeTransport) Send(ctx context.Context, channelID string, msg models.OutboundMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failSend[channelID]; err != nil {
		return "", err
	}
	if f.maxRunes > 0 && utf8.RuneCountInString(msg.Content) > f.maxRunes {
		return "", errors.New("HTTP 400 Bad Request, content must be 2000 or fewer in length")
	}
	sent := sentMessage{ChannelID: channelID, Content: msg.Content}
	if msg.Attachment != nil {
		data := make([]byte, msg.Attachment.Size())
		_, _ = msg.Attachment.Reader().Read(data)
		sent.Data = data
		sent.Filename = msg.Attachment.Filename
	}
	f.sent = append(f.sent, sent)
	f.nextMsgID++
	return fmt.Sprintf("m%d", f.nextMsgID), nil
}

func (f *fakeTransport) Delete(ctx context.Context, channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, deletedMessage{ChannelID: channelID, MessageID: messageID})
	return f.failDel
}

func (f *fakeTransport) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeTransport) Deleted() []deletedMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]deletedMessage(nil), f.deleted...)
}

func (f *fakeTransport) Resolved() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.resolved...)
}

type fakeFetcher struct {
	mu         sync.Mutex
	attachment *models.Attachment
	err        error
	calls      []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*models.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	return f.attachment, nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
