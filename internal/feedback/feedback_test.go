package feedback

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/typemaster/internal/llm"
	"github.com/verte-zerg/typemaster/internal/session"
)

func newTestService(provider llm.Provider, limit int) (*Service, *session.ManualClock) {
	clock := session.NewManualClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	svc := New(Config{PerMinuteLimit: limit, Timeout: time.Second}, provider, &memUsage{},
		rand.New(rand.NewSource(1)), clock, nil)
	return svc, clock
}

func TestLocalFeedbackThresholds(t *testing.T) {
	tests := []struct {
		wpm, acc int
		want     string
	}{
		{60, 97, "Strong run"},
		{80, 85, "Prioritize precision"},
		{30, 92, "Solid base"},
		{45, 93, "Consistent progress"},
		{55, 96, "Strong run"},
	}
	for _, tt := range tests {
		if got := LocalFeedback(tt.wpm, tt.acc); !strings.HasPrefix(got, tt.want) {
			t.Fatalf("LocalFeedback(%d, %d) = %q, want prefix %q", tt.wpm, tt.acc, got, tt.want)
		}
	}
}

func TestPracticeTextWithoutProvider(t *testing.T) {
	svc, _ := newTestService(nil, 15)
	got := svc.GeneratePracticeText(context.Background(), "  ", 100)
	if got.Source != SourceLocal || got.Note == "" {
		t.Fatalf("expected local text with note, got %+v", got)
	}
	if n := utf8.RuneCountInString(got.Text); n < MinLocalChars {
		t.Fatalf("expected at least %d chars, got %d", MinLocalChars, n)
	}
	if !strings.Contains(got.Text, fallbackTheme) {
		t.Fatalf("expected fallback theme in text: %q", got.Text)
	}
}

func TestPracticeTextLocalHonorsLongerMinimum(t *testing.T) {
	svc, _ := newTestService(nil, 15)
	got := svc.GeneratePracticeText(context.Background(), "gamer e eSports", 700)
	if n := utf8.RuneCountInString(got.Text); n < 700 {
		t.Fatalf("expected at least 700 chars, got %d", n)
	}
}

func TestPracticeTextFromProvider(t *testing.T) {
	long := strings.Repeat("texto gerado ", 50)
	mock := llm.NewMockProvider(llm.JSONReply(map[string]string{"text": long}))
	svc, _ := newTestService(mock, 15)

	got := svc.GeneratePracticeText(context.Background(), "aventura no espaço", 300)
	if got.Source != SourceAI || got.Note != "" {
		t.Fatalf("expected AI text, got %+v", got)
	}
	if got.Text != strings.TrimSpace(long) {
		t.Fatalf("unexpected text %q", got.Text)
	}
	req := mock.Requests()[0]
	if req.Reply == nil || req.Purpose != "practice-text" || !strings.Contains(req.Prompt, "aventura no espaço") {
		t.Fatalf("expected themed structured request, got %+v", req)
	}
}

func TestPracticeTextPadsShortRemoteText(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockReply{Output: `{"text":"curto demais."}`})
	svc, _ := newTestService(mock, 15)

	got := svc.GeneratePracticeText(context.Background(), "moda e estilo", 300)
	if got.Source != SourceAI {
		t.Fatalf("expected AI source, got %s", got.Source)
	}
	if !strings.HasPrefix(got.Text, "curto demais. ") {
		t.Fatalf("expected remote text first, got %q", got.Text)
	}
	if utf8.RuneCountInString(got.Text) < 300 {
		t.Fatalf("expected padded text")
	}
}

func TestPracticeTextFallbacks(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockReply
		note string
	}{
		{"empty", llm.MockReply{Output: `{"text":"   "}`}, "empty AI response"},
		{"failure", llm.MockReply{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}}, "temporary AI failure"},
		{"garbage", llm.MockReply{Output: `not json`}, "temporary AI failure"},
		{"wrong shape", llm.MockReply{Output: `{"story":"sem campo text"}`}, "temporary AI failure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(llm.NewMockProvider(tt.resp), 15)
			got := svc.GeneratePracticeText(context.Background(), "cyberpunk futurista", 100)
			if got.Source != SourceLocal || !strings.Contains(got.Note, tt.note) {
				t.Fatalf("expected local fallback with %q, got %+v", tt.note, got)
			}
		})
	}
}

func TestPracticeTextRateLimited(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockReply{Output: `{"text":"um"}`},
		llm.MockReply{Output: `{"text":"dois"}`},
	)
	svc, clock := newTestService(mock, 1)

	if got := svc.GeneratePracticeText(context.Background(), "x", 10); got.Source != SourceAI {
		t.Fatalf("expected first request to reach the provider")
	}
	clock.Advance(15500 * time.Millisecond)
	got := svc.GeneratePracticeText(context.Background(), "x", 10)
	if got.Source != SourceLocal {
		t.Fatalf("expected rate limited local text")
	}
	if !strings.Contains(got.Note, "Wait 45s") || !strings.Contains(got.Note, "limit of 1") {
		t.Fatalf("expected wait seconds in note, got %q", got.Note)
	}
	if len(mock.Requests()) != 1 {
		t.Fatalf("limited request must not reach provider")
	}
}

func TestFeedback(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockReply{Output: `{"message":"GG!"}`})
	svc, _ := newTestService(mock, 15)
	ctx := context.Background()

	if got := svc.Feedback(ctx, 60, 98, Options{}); got != LocalFeedback(60, 98) {
		t.Fatalf("expected local feedback without AllowAI, got %q", got)
	}
	if len(mock.Requests()) != 0 {
		t.Fatalf("provider must not be called without AllowAI")
	}
	if got := svc.Feedback(ctx, 60, 98, Options{AllowAI: true}); got != "GG!" {
		t.Fatalf("expected remote feedback, got %q", got)
	}
	if got := svc.Feedback(ctx, 20, 80, Options{AllowAI: true}); got != LocalFeedback(20, 80) {
		t.Fatalf("expected fallback after provider queue is empty, got %q", got)
	}
}
