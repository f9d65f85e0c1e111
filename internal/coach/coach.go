// Package coach orchestrates lesson attempts: it builds target text, runs a
// typing session, scores the result, updates and persists the profile, and
// collects feedback without letting late results leak into newer attempts.
package coach

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typemaster/internal/feedback"
	"github.com/verte-zerg/typemaster/internal/generator"
	"github.com/verte-zerg/typemaster/internal/keymap"
	"github.com/verte-zerg/typemaster/internal/lessons"
	"github.com/verte-zerg/typemaster/internal/logger"
	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/profile"
	"github.com/verte-zerg/typemaster/internal/scoring"
	"github.com/verte-zerg/typemaster/internal/session"
)

// ProfileStore loads and saves the learner profile.
type ProfileStore interface {
	Load(ctx context.Context) profile.Profile
	Save(ctx context.Context, p profile.Profile) error
}

// RunRecorder stores finished runs for the stats report.
type RunRecorder interface {
	InsertRun(ctx context.Context, run model.RunRecord, keys []model.KeyStats) (int64, error)
}

// FeedbackSource produces practice text and post-run feedback.
type FeedbackSource interface {
	GeneratePracticeText(ctx context.Context, theme string, minLength int) feedback.PracticeText
	Feedback(ctx context.Context, wpm, accuracy int, opts feedback.Options) string
}

// FeedbackEvent carries feedback for the attempt it was requested for.
type FeedbackEvent struct {
	AttemptID string
	Text      string
}

// Deps are the collaborators of a Coach. Runs and Feedback are optional.
// A positive WatchInterval finishes timed attempts from a background
// watchdog; otherwise the caller polls CheckTimeout.
type Deps struct {
	Generator     *generator.Generator
	Profiles      ProfileStore
	Runs          RunRecorder
	Feedback      FeedbackSource
	Clock         session.Clock
	Logger        *logger.Logger
	WatchInterval time.Duration
}

// Coach owns the profile and the current attempt. It is safe for concurrent
// use: the UI loop, the timeout poll and feedback goroutines all call in.
type Coach struct {
	deps   Deps
	events chan FeedbackEvent

	mu      sync.Mutex
	profile profile.Profile
	current *Attempt
	watch   *session.Watchdog
}

// New loads the profile and returns a ready Coach.
func New(ctx context.Context, deps Deps) *Coach {
	if deps.Generator == nil {
		deps.Generator = generator.New()
	}
	if deps.Clock == nil {
		deps.Clock = session.RealClock{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	c := &Coach{
		deps:    deps,
		events:  make(chan FeedbackEvent, 4),
		profile: profile.Default(),
	}
	if deps.Profiles != nil {
		c.profile = deps.Profiles.Load(ctx)
	}
	return c
}

// Feedback delivers asynchronous feedback. Pass each event to AcceptFeedback.
func (c *Coach) Feedback() <-chan FeedbackEvent {
	return c.events
}

// Profile returns a copy of the current profile.
func (c *Coach) Profile() profile.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return profile.Clone(c.profile)
}

// Level returns the learner level.
func (c *Coach) Level() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile.Level()
}

// Current returns the current attempt, or nil.
func (c *Coach) Current() *Attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Launch prepares an attempt for lessonID and makes it current.
func (c *Coach) Launch(ctx context.Context, lessonID string) (*Attempt, error) {
	a, err := c.Prepare(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	c.Activate(a)
	return a, nil
}

// Prepare builds an attempt without making it current. AI-story lessons
// may block on the feedback collaborator.
func (c *Coach) Prepare(ctx context.Context, lessonID string) (*Attempt, error) {
	lesson, err := lessons.Lookup(lessonID)
	if err != nil {
		return nil, err
	}
	p := c.Profile()

	a := &Attempt{ID: uuid.NewString(), Lesson: lesson}
	target := c.buildTarget(ctx, lesson, p, a)
	if strings.TrimSpace(target) == "" {
		c.deps.Logger.Warn("lesson produced no text, using word mix", "lesson", lesson.ID)
		target = c.deps.Generator.WordMix(generator.SprintChars)
	}
	a.Session = session.New(target, lesson.TimeLimit(), c.deps.Clock)
	a.Session.OnFinish(func(stats model.RunStats) { c.finalize(a, stats) })
	return a, nil
}

// Activate makes a the current attempt. Results of older attempts are
// ignored from now on.
func (c *Coach) Activate(a *Attempt) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopWatchLocked()
	c.current = a
	if c.deps.WatchInterval > 0 && a.Lesson.TimeLimit() > 0 {
		w := session.Watch(a.Session, c.deps.WatchInterval)
		c.watch = w
		go func() {
			if <-w.Fired() {
				c.CheckTimeout(a.ID)
			}
		}()
	}
	c.deps.Logger.Info("lesson launched", "lesson", a.Lesson.ID, "attempt", a.ID)
}

// Abandon drops the current attempt without scoring it.
func (c *Coach) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopWatchLocked()
	c.current = nil
}

func (c *Coach) stopWatchLocked() {
	if c.watch != nil {
		c.watch.Stop()
		c.watch = nil
	}
}

// Press forwards a typed character to the current attempt.
func (c *Coach) Press(r rune) session.Outcome {
	a := c.Current()
	if a == nil {
		return session.Outcome{}
	}
	return a.Session.Press(r)
}

// Key forwards a named key ("backspace", "space" or a single character).
func (c *Coach) Key(name string) session.Outcome {
	a := c.Current()
	if a == nil {
		return session.Outcome{}
	}
	return a.Session.Key(name)
}

// Backspace forwards a backspace to the current attempt.
func (c *Coach) Backspace() session.Outcome {
	a := c.Current()
	if a == nil {
		return session.Outcome{}
	}
	return a.Session.Backspace()
}

// CheckTimeout finishes attemptID by timeout if it is still current and its
// time limit elapsed.
func (c *Coach) CheckTimeout(attemptID string) bool {
	a := c.Current()
	if a == nil || a.ID != attemptID {
		return false
	}
	return a.Session.CheckTimeout()
}

// AcceptFeedback stores feedback on the attempt it belongs to. It reports
// false and drops the text when that attempt is no longer current.
func (c *Coach) AcceptFeedback(attemptID, text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.ID != attemptID {
		return false
	}
	c.current.setFeedback(text)
	return true
}

// SetTheme changes the practice theme and persists the profile.
func (c *Coach) SetTheme(ctx context.Context, theme string) profile.Profile {
	return c.mutate(ctx, func(p profile.Profile) profile.Profile { return profile.WithTheme(p, theme) })
}

// CycleTheme switches to the next theme and persists the profile.
func (c *Coach) CycleTheme(ctx context.Context) profile.Profile {
	return c.mutate(ctx, func(p profile.Profile) profile.Profile {
		return profile.WithTheme(p, profile.NextTheme(p.Theme))
	})
}

// ToggleSound flips the sound preference and persists the profile.
func (c *Coach) ToggleSound(ctx context.Context) profile.Profile {
	return c.mutate(ctx, profile.ToggleSound)
}

func (c *Coach) mutate(ctx context.Context, fn func(profile.Profile) profile.Profile) profile.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profile = fn(c.profile)
	c.persistLocked(ctx)
	return profile.Clone(c.profile)
}

func (c *Coach) persistLocked(ctx context.Context) {
	if c.deps.Profiles == nil {
		return
	}
	// Failures are logged by the store; the next mutation writes again.
	_ = c.deps.Profiles.Save(ctx, c.profile)
}

func (c *Coach) buildTarget(ctx context.Context, lesson model.Lesson, p profile.Profile, a *Attempt) string {
	gen := c.deps.Generator
	switch lesson.Type {
	case model.LessonFingerDrill:
		f, err := keymap.ParseFinger(lesson.FocusFinger)
		if err != nil {
			f = keymap.LeftIndex
		}
		return gen.FingerDrill(f, generator.FingerDrillChars)
	case model.LessonAlternating:
		return gen.AlternatingHands(generator.AlternatingChars)
	case model.LessonSprint:
		return gen.WordMix(generator.SprintChars)
	case model.LessonAdaptive:
		text, focus := gen.Adaptive(p.KeyMistakes, generator.AdaptiveChars)
		a.FocusKeys = focus
		return text
	case model.LessonAIStory:
		if c.deps.Feedback == nil {
			a.Notice = "Local mode: AI stories are unavailable."
			return gen.WordMix(generator.SprintChars)
		}
		pt := c.deps.Feedback.GeneratePracticeText(ctx, p.Theme, feedback.DefaultMinChars)
		a.Source = pt.Source
		if pt.Source == feedback.SourceLocal {
			a.Notice = pt.Note
			if a.Notice == "" {
				a.Notice = "Local mode: saving AI quota."
			}
		}
		return pt.Text
	default:
		return lesson.Content
	}
}

// finalize runs once per attempt from the session's finish callback.
func (c *Coach) finalize(a *Attempt, stats model.RunStats) {
	ctx := context.Background()
	result := scoring.Evaluate(a.Lesson, stats)
	a.setResult(result)

	c.mu.Lock()
	today := model.DateOf(c.deps.Clock.Now())
	c.profile = profile.ApplyRunResult(c.profile, result, today)
	c.persistLocked(ctx)
	c.mu.Unlock()

	c.deps.Logger.Info("lesson finished",
		"lesson", a.Lesson.ID,
		"attempt", a.ID,
		"wpm", result.WPM,
		"accuracy", result.Accuracy,
		"xp", result.XPAwarded,
		"success", result.Success,
		"timed_out", stats.TimedOut,
	)
	c.recordRun(ctx, a, result)
	c.requestFeedback(a, result)
}

func (c *Coach) recordRun(ctx context.Context, a *Attempt, result model.RunResult) {
	if c.deps.Runs == nil {
		return
	}
	stats := result.Stats
	run := model.RunRecord{
		LessonID:   a.Lesson.ID,
		LessonType: a.Lesson.Type,
		StartedAt:  stats.StartedAt,
		EndedAt:    stats.EndedAt,
		WPM:        result.WPM,
		Accuracy:   result.Accuracy,
		XPAwarded:  result.XPAwarded,
		Success:    result.Success,
		TimedOut:   stats.TimedOut,
		CharsTyped: stats.CharsTyped,
		Errors:     stats.Errors,
		DurationMs: stats.Duration().Milliseconds(),
	}
	if _, err := c.deps.Runs.InsertRun(ctx, run, keyStats(stats.Mistakes)); err != nil {
		c.deps.Logger.Warn("failed to record run", "error", err, "attempt", a.ID)
	}
}

func (c *Coach) requestFeedback(a *Attempt, result model.RunResult) {
	if c.deps.Feedback == nil {
		c.deliver(FeedbackEvent{AttemptID: a.ID, Text: feedback.LocalFeedback(result.WPM, result.Accuracy)})
		return
	}
	opts := feedback.Options{AllowAI: a.Lesson.Type == model.LessonAIStory}
	go func() {
		text := c.deps.Feedback.Feedback(context.Background(), result.WPM, result.Accuracy, opts)
		c.deliver(FeedbackEvent{AttemptID: a.ID, Text: text})
	}()
}

// deliver never blocks; with a full buffer the oldest event is dropped.
func (c *Coach) deliver(ev FeedbackEvent) {
	for {
		select {
		case c.events <- ev:
			return
		default:
		}
		select {
		case <-c.events:
		default:
		}
	}
}

func keyStats(mistakes map[string]int) []model.KeyStats {
	out := make([]model.KeyStats, 0, len(mistakes))
	for k, v := range mistakes {
		if v > 0 {
			out = append(out, model.KeyStats{Char: k, Mistakes: v})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Char < out[j].Char })
	return out
}
