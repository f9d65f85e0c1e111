package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockReply is a canned model output or failure for MockProvider.
type MockReply struct {
	Output string
	Err    error
}

// JSONReply builds a canned reply object from string fields.
func JSONReply(fields map[string]string) MockReply {
	b, err := json.Marshal(fields)
	if err != nil {
		return MockReply{Err: err}
	}
	return MockReply{Output: string(b)}
}

// MockProvider replays canned replies in order. Replies are checked against
// the request schema the same way the real providers check them.
type MockProvider struct {
	mu       sync.Mutex
	replies  []MockReply
	requests []Request
}

// NewMockProvider creates a MockProvider with the given canned replies.
func NewMockProvider(replies ...MockReply) *MockProvider {
	return &MockProvider{replies: replies}
}

// Generate returns the next canned reply. An empty queue reads as an outage.
func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.replies) == 0 {
		return nil, &ErrProviderUnavailable{Err: errors.New("no canned reply left")}
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	usage := Usage{InputTokens: len(req.Prompt) / 4, OutputTokens: len(next.Output) / 4}
	return finishReply(req, next.Output, false, "mock", usage)
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// Requests returns the requests received so far.
func (m *MockProvider) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.requests...)
}
