// Package feedback produces practice paragraphs and post-run feedback,
// using a remote model when one is configured and within budget and local
// text otherwise. Nothing in this package returns an error to the caller.
package feedback

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/typemaster/internal/llm"
	"github.com/verte-zerg/typemaster/internal/logger"
)

const (
	// MinLocalChars is the shortest local practice text ever produced.
	MinLocalChars = 260
	// DefaultMinChars is used when callers pass no minimum length.
	DefaultMinChars = 520
	// fallbackTheme replaces a blank theme.
	fallbackTheme = "ficção científica"
)

// Source tells where a practice text came from.
type Source string

const (
	SourceAI    Source = "ai"
	SourceLocal Source = "local"
)

// PracticeText is a generated paragraph plus an optional notice explaining
// why local text was used.
type PracticeText struct {
	Text   string
	Source Source
	Note   string
}

// Options tunes a Feedback call.
type Options struct {
	AllowAI bool
}

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config configures the service.
type Config struct {
	PerMinuteLimit int
	Timeout        time.Duration
}

// Service is the feedback collaborator. It is safe for concurrent use.
type Service struct {
	cfg      Config
	provider llm.Provider
	limiter  *RateLimiter
	clock    Clock
	log      *logger.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// New builds a service. A nil provider means local mode only.
func New(cfg Config, provider llm.Provider, usage UsageStore, rnd *rand.Rand, clock Clock, log *logger.Logger) *Service {
	if cfg.PerMinuteLimit <= 0 {
		cfg.PerMinuteLimit = llm.DefaultPerMinuteLimit
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if clock == nil {
		clock = systemClock{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		cfg:      cfg,
		provider: provider,
		limiter:  NewRateLimiter(cfg.PerMinuteLimit, usage, log),
		clock:    clock,
		log:      log,
		rnd:      rnd,
	}
}

// RemoteEnabled reports whether a provider is configured.
func (s *Service) RemoteEnabled() bool {
	return s.provider != nil
}

// GeneratePracticeText returns a themed paragraph of at least minLength
// characters when possible. Remote text shorter than minLength is padded
// with local text.
func (s *Service) GeneratePracticeText(ctx context.Context, theme string, minLength int) PracticeText {
	if minLength <= 0 {
		minLength = DefaultMinChars
	}
	theme = strings.TrimSpace(theme)
	if theme == "" {
		theme = fallbackTheme
	}
	local := s.localPracticeText(theme, minLength)

	if s.provider == nil {
		return PracticeText{Text: local, Source: SourceLocal, Note: "Local mode: set GEMINI_API_KEY to enable AI stories."}
	}
	if ok, wait := s.limiter.Reserve(ctx, s.clock.Now()); !ok {
		return PracticeText{Text: local, Source: SourceLocal, Note: s.quotaNote(wait)}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.provider.Generate(ctx, llm.Request{
		Purpose:     "practice-text",
		System:      practiceSystemPrompt,
		Prompt:      practicePrompt(theme, minLength),
		Reply:       practiceTextSchema,
		Temperature: 0.8,
	})
	if err != nil {
		s.log.Warn("practice text generation failed", "error", err)
		return PracticeText{Text: local, Source: SourceLocal, Note: "Local mode: temporary AI failure."}
	}
	raw, err := resp.Text("text")
	if err != nil {
		s.log.Warn("practice text decode failed", "error", err)
		return PracticeText{Text: local, Source: SourceLocal, Note: "Local mode: temporary AI failure."}
	}
	text := strings.Join(strings.Fields(raw), " ")
	if text == "" {
		return PracticeText{Text: local, Source: SourceLocal, Note: "Local mode: empty AI response."}
	}
	if utf8.RuneCountInString(text) < minLength {
		text = text + " " + local
	}
	return PracticeText{Text: text, Source: SourceAI}
}

// Feedback returns a short comment on a finished run. The remote model is
// only consulted when opts.AllowAI is set and the budget allows it.
func (s *Service) Feedback(ctx context.Context, wpm, accuracy int, opts Options) string {
	fallback := LocalFeedback(wpm, accuracy)
	if !opts.AllowAI || s.provider == nil {
		return fallback
	}
	if ok, _ := s.limiter.Reserve(ctx, s.clock.Now()); !ok {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := s.provider.Generate(ctx, llm.Request{
		Purpose: "run-feedback",
		System:  feedbackSystemPrompt,
		Prompt:  feedbackPrompt(wpm, accuracy),
		Reply:   feedbackSchema,
	})
	if err != nil {
		s.log.Warn("feedback generation failed", "error", err)
		return fallback
	}
	msg, err := resp.Text("message")
	if err != nil {
		return fallback
	}
	if msg = strings.TrimSpace(msg); msg != "" {
		return msg
	}
	return fallback
}

// LocalFeedback is the offline comment for a run.
func LocalFeedback(wpm, accuracy int) string {
	switch {
	case accuracy >= 96 && wpm >= 55:
		return "Strong run: high pace and high precision. Keep that pattern."
	case accuracy < 90:
		return "Prioritize precision for the next 2 runs. Speed comes right after."
	case wpm < 35:
		return "Solid base. Now push the rhythm without losing control."
	default:
		return "Consistent progress. Breathe, stay centered and keep going."
	}
}

func (s *Service) quotaNote(wait time.Duration) string {
	secs := int(math.Ceil(wait.Seconds()))
	return fmt.Sprintf("Local mode: limit of %d AI requests per minute reached. Wait %ds and try again.",
		s.limiter.Limit(), secs)
}

// localPracticeText assembles themed paragraphs until the text reaches
// max(MinLocalChars, minChars) characters.
func (s *Service) localPracticeText(theme string, minChars int) string {
	target := minChars
	if target < MinLocalChars {
		target = MinLocalChars
	}
	chunks := []string{
		fmt.Sprintf("Tema atual: %s.", theme),
		"Desafio longo no modo local para poupar chamadas da IA.",
	}
	length := utf8.RuneCountInString(strings.Join(chunks, " "))

	s.mu.Lock()
	defer s.mu.Unlock()
	for length < target {
		p := strings.ReplaceAll(localParagraphs[s.rnd.Intn(len(localParagraphs))], "{theme}", theme)
		chunks = append(chunks, p)
		length += 1 + utf8.RuneCountInString(p)
	}
	return strings.Join(chunks, " ")
}
