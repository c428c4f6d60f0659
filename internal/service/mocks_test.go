package service

import (
	"context"
	"errors"
	"sync"

	"icrelay/internal/models"

	"github.com/stretchr/testify/mock"
)

// Mock relay engine
type mockRelayer struct {
	mock.Mock
}

func (m *mockRelayer) Relay(ctx context.Context, req models.RelayRequest, dest models.Destination) models.RelayResult {
	args := m.Called(ctx, req, dest)
	return args.Get(0).(models.RelayResult)
}

func (m *mockRelayer) Deliver(ctx context.Context, content string, author models.Identity, dest models.Destination) models.RelayResult {
	args := m.Called(ctx, content, author, dest)
	return args.Get(0).(models.RelayResult)
}

// Mock chat transport recording replies
type mockTransport struct {
	mu       sync.Mutex
	channels map[string]models.Channel
	replies  []models.OutboundMessage
	targets  []string
	sendErr  error
}

func (m *mockTransport) ResolveChannel(ctx context.Context, channelID string) (models.Channel, error) {
	ch, ok := m.channels[channelID]
	if !ok {
		return models.Channel{}, errors.New("unknown channel")
	}
	return ch, nil
}

func (m *mockTransport) Send(ctx context.Context, channelID string, msg models.OutboundMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return "", m.sendErr
	}
	m.replies = append(m.replies, msg)
	m.targets = append(m.targets, channelID)
	return "reply", nil
}

func (m *mockTransport) Replies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.replies))
	for i, r := range m.replies {
		out[i] = r.Content
	}
	return out
}

// Mock permission gate
type mockGate struct {
	allowed bool
}

func (g mockGate) Allowed(models.Identity) bool { return g.allowed }
