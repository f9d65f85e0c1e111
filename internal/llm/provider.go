// Package llm asks a remote model for short structured replies such as
// practice paragraphs and run feedback.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider generates one reply per request.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single-turn prompt whose reply must match Reply.
type Request struct {
	// Purpose labels the request in the log, e.g. "practice-text".
	Purpose     string
	System      string
	Prompt      string
	Reply       *Schema
	MaxTokens   int
	Temperature float64
}

// Response is a reply that already matched the requested schema.
type Response struct {
	Content json.RawMessage
	Model   string
	Usage   Usage
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Text returns the string field name of the reply.
func (r *Response) Text(name string) (string, error) {
	var fields map[string]any
	if err := json.Unmarshal(r.Content, &fields); err != nil {
		return "", fmt.Errorf("failed to decode reply: %w", err)
	}
	s, ok := fields[name].(string)
	if !ok {
		return "", fmt.Errorf("reply has no %q field", name)
	}
	return s, nil
}

// finishReply checks raw model output against req and wraps it.
func finishReply(req Request, raw string, truncated bool, model string, usage Usage) (*Response, error) {
	content := json.RawMessage(strings.TrimSpace(raw))
	if truncated {
		return nil, &ErrTruncated{Content: content}
	}
	if err := req.Reply.Validate(content); err != nil {
		return nil, err
	}
	return &Response{Content: content, Model: model, Usage: usage}, nil
}
