package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func textRequest() Request {
	return Request{Purpose: "test", Prompt: "write", Reply: &Schema{Name: "retry-test-text", Fields: []Field{{Name: "text"}}}}
}

func down() MockReply {
	return MockReply{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
}

func TestRetry(t *testing.T) {
	ok := JSONReply(map[string]string{"text": "ok"})
	tests := []struct {
		name      string
		replies   []MockReply
		wantErr   any
		wantCalls int
	}{
		{"first attempt", []MockReply{ok}, nil, 1},
		{"outage then success", []MockReply{down(), ok}, nil, 2},
		{"outage every time", []MockReply{down(), down(), down(), ok}, &ErrProviderUnavailable{}, 3},
		{"invalid retried once", []MockReply{{Output: `{}`}, {Output: `[]`}, ok}, &ErrInvalidResponse{}, 2},
		{"invalid then success", []MockReply{{Output: `nope`}, ok}, nil, 2},
		{"rate limit returned at once", []MockReply{{Err: &ErrRateLimit{Err: errors.New("429")}}, ok}, &ErrRateLimit{}, 1},
		{"truncated returned at once", []MockReply{{Err: &ErrTruncated{}}, ok}, &ErrTruncated{}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.replies...)
			resp, err := WithRetry(mock, retryConfig()).Generate(context.Background(), textRequest())
			if got := len(mock.Requests()); got != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, got)
			}
			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if text, _ := resp.Text("text"); text != "ok" {
					t.Fatalf("unexpected reply %s", resp.Content)
				}
			case *ErrProviderUnavailable:
				if !errors.As(err, &want) {
					t.Fatalf("expected ErrProviderUnavailable, got %v", err)
				}
			case *ErrInvalidResponse:
				if !errors.As(err, &want) {
					t.Fatalf("expected ErrInvalidResponse, got %v", err)
				}
			case *ErrRateLimit:
				if !errors.As(err, &want) {
					t.Fatalf("expected ErrRateLimit, got %v", err)
				}
			case *ErrTruncated:
				if !errors.As(err, &want) {
					t.Fatalf("expected ErrTruncated, got %v", err)
				}
			}
		})
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	mock := NewMockProvider(down(), JSONReply(map[string]string{"text": "ok"}))
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WithRetry(mock, cfg).Generate(ctx, textRequest())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(mock.Requests()) != 1 {
		t.Fatalf("expected 1 call, got %d", len(mock.Requests()))
	}
}

func TestRetryZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(JSONReply(map[string]string{"text": "hi"}))
	p := WithRetry(mock, RetryConfig{})
	if _, err := p.Generate(context.Background(), textRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected mock model id, got %q", p.ModelID())
	}
}

func TestBackoffIsCapped(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}}
	for retry, base := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond} {
		got := r.backoff(retry)
		lo, hi := time.Duration(float64(base)*0.8), time.Duration(float64(base)*1.2)
		if got < lo || got > hi {
			t.Fatalf("backoff(%d) = %s, want within [%s, %s]", retry, got, lo, hi)
		}
	}
}
