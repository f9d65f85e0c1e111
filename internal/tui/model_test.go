package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typemaster/internal/coach"
	"github.com/verte-zerg/typemaster/internal/generator"
	"github.com/verte-zerg/typemaster/internal/session"
)

type fixture struct {
	model *Model
	coach *coach.Coach
	clock *session.ManualClock
	bell  *bytes.Buffer
}

func newFixture(t *testing.T, lesson string) *fixture {
	t.Helper()
	clock := session.NewManualClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	c := coach.New(context.Background(), coach.Deps{
		Generator: generator.NewSeeded(7),
		Clock:     clock,
	})
	bell := &bytes.Buffer{}
	m := NewModel(context.Background(), c, Options{Lesson: lesson, Bell: bell})
	return &fixture{model: m, coach: c, clock: clock, bell: bell}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCompleteLessonShowsResultAndFeedback(t *testing.T) {
	f := newFixture(t, "")
	f.model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if f.model.screen != screenLesson {
		t.Fatalf("expected lesson screen, got %v", f.model.screen)
	}
	target := f.model.attempt.Session.Snapshot().Target
	if f.model.attempt.Lesson.ID != "1" {
		t.Fatalf("expected first lesson, got %s", f.model.attempt.Lesson.ID)
	}

	f.model.Update(runes(target[:1]))
	f.clock.Advance(20 * time.Second)
	f.model.Update(runes(target[1:]))
	if f.model.screen != screenResult {
		t.Fatalf("expected result screen, got %v", f.model.screen)
	}
	if _, ok := f.model.attempt.Result(); !ok {
		t.Fatalf("expected a scored result")
	}

	var ev coach.FeedbackEvent
	select {
	case ev = <-f.coach.Feedback():
	default:
		t.Fatalf("expected local feedback to be delivered")
	}
	if _, cmd := f.model.Update(feedbackMsg(ev)); cmd == nil {
		t.Fatalf("expected the feedback wait to be re-armed")
	}
	view := f.model.View()
	if !strings.Contains(view, ev.Text) || !strings.Contains(view, "Lesson passed") {
		t.Fatalf("result view missing feedback:\n%s", view)
	}
}

func TestTickTimesOutCurrentAttemptOnly(t *testing.T) {
	f := newFixture(t, "7")
	f.model.Init()
	if f.model.screen != screenLesson {
		t.Fatalf("expected initial lesson to start, got %v", f.model.screen)
	}
	id := f.model.attempt.ID

	f.model.Update(runes(f.model.attempt.Session.Snapshot().Target[:1]))
	if _, cmd := f.model.Update(tickMsg{attemptID: id}); cmd == nil {
		t.Fatalf("expected the timer to keep ticking")
	}

	f.clock.Advance(31 * time.Second)
	if _, cmd := f.model.Update(tickMsg{attemptID: "stale"}); cmd != nil {
		t.Fatalf("stale tick must not re-arm")
	}
	if f.model.screen != screenLesson {
		t.Fatalf("stale tick must not finish the attempt")
	}

	f.model.Update(tickMsg{attemptID: id})
	if f.model.screen != screenResult {
		t.Fatalf("expected result screen after timeout, got %v", f.model.screen)
	}
	res, ok := f.model.attempt.Result()
	if !ok || !res.Stats.TimedOut {
		t.Fatalf("expected timed out result, got %+v", res)
	}
}

func TestPreparedStoryIgnoredAfterLeaving(t *testing.T) {
	f := newFixture(t, "")
	first := f.model.launch("4")
	if f.model.screen != screenLoading || first == nil {
		t.Fatalf("expected loading screen for story lesson")
	}
	f.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	f.model.Update(first())
	if f.model.screen != screenMenu || f.coach.Current() != nil {
		t.Fatalf("late story must not start after leaving")
	}

	stale := preparedMsg{seq: f.model.prepSeq}
	second := f.model.launch("4")
	f.model.Update(stale)
	if f.model.screen != screenLoading {
		t.Fatalf("older preparation must be ignored")
	}
	f.model.Update(second())
	if f.model.screen != screenLesson {
		t.Fatalf("expected lesson screen, got %v", f.model.screen)
	}
	if f.model.attempt.Notice == "" {
		t.Fatalf("expected local mode notice")
	}
	if f.coach.Current() != f.model.attempt {
		t.Fatalf("prepared attempt must become current")
	}
}

func TestBellOnMistakeWhenSoundEnabled(t *testing.T) {
	f := newFixture(t, "")
	f.model.Update(runes("s"))
	if !f.coach.Profile().Sound || f.model.status != "Sound on" {
		t.Fatalf("expected sound toggled on, status %q", f.model.status)
	}
	f.model.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if _, cmd := f.model.Update(runes("a")); cmd != nil {
		t.Fatalf("correct key must not ring")
	}
	_, cmd := f.model.Update(runes("x"))
	if cmd == nil {
		t.Fatalf("expected bell command")
	}
	cmd()
	if f.bell.String() != "\a" {
		t.Fatalf("expected bell, got %q", f.bell.String())
	}
}

func TestEscAbandonsAttempt(t *testing.T) {
	f := newFixture(t, "1")
	f.model.Init()
	f.model.Update(runes("a"))
	f.model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if f.model.screen != screenMenu || f.coach.Current() != nil {
		t.Fatalf("expected menu with no current attempt")
	}
	if !strings.Contains(f.model.View(), "Home Base") {
		t.Fatalf("expected lesson list in menu view")
	}
}

func TestThemeKeyCyclesTheme(t *testing.T) {
	f := newFixture(t, "")
	before := f.coach.Profile().Theme
	f.model.Update(runes("t"))
	after := f.coach.Profile().Theme
	if after == before {
		t.Fatalf("expected theme to change from %q", before)
	}
	if f.model.status != "Theme: "+after {
		t.Fatalf("unexpected status %q", f.model.status)
	}
}

func TestUnknownInitialLessonStaysOnMenu(t *testing.T) {
	f := newFixture(t, "42")
	f.model.Init()
	if f.model.screen != screenMenu || !strings.Contains(f.model.status, "unknown lesson") {
		t.Fatalf("expected menu with error, got screen %v status %q", f.model.screen, f.model.status)
	}
}

func TestPastedTextIsIgnored(t *testing.T) {
	f := newFixture(t, "1")
	f.model.Init()
	target := f.model.attempt.Session.Snapshot().Target

	paste := runes(target)
	paste.Paste = true
	f.model.Update(paste)

	snap := f.model.attempt.Session.Snapshot()
	if snap.Input != "" || snap.Errors != 0 {
		t.Fatalf("paste must not be typed, got input=%q errors=%d", snap.Input, snap.Errors)
	}
	if f.model.attempt.Session.State() != session.Idle || f.model.screen != screenLesson {
		t.Fatalf("paste must not start or finish the lesson, state=%v screen=%v", f.model.attempt.Session.State(), f.model.screen)
	}

	f.model.Update(runes(target[:1]))
	if got := f.model.attempt.Session.Snapshot().Input; got != target[:1] {
		t.Fatalf("typing after a paste should still work, got %q", got)
	}
}
