package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/verte-zerg/typemaster/internal/coach"
	"github.com/verte-zerg/typemaster/internal/keymap"
	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/profile"
	"github.com/verte-zerg/typemaster/internal/scoring"
	"github.com/verte-zerg/typemaster/internal/session"
)

// footerSegments builds the HUD shown under the lesson text.
func footerSegments(p profile.Profile, lesson model.Lesson, snap session.Snapshot, elapsed, remaining time.Duration) []string {
	segments := []string{
		fmt.Sprintf("Lv %d · %d/%d XP", p.Level(), p.XP, p.NextLevelXP()),
		fmt.Sprintf("Streak %dd", p.Streak),
	}
	if lesson.TimeLimit() > 0 {
		if snap.State == session.Idle {
			remaining = lesson.TimeLimit()
		}
		segments = append(segments, "Time "+clock(remaining))
	}
	chars := len([]rune(snap.Input))
	segments = append(segments,
		fmt.Sprintf("%d WPM · %d%%", scoring.WPM(chars, elapsed), scoring.Accuracy(chars, snap.Errors)),
		fmt.Sprintf("Hands L%d/R%d", snap.LeftKeys, snap.RightKeys),
	)
	if goal := goalLabel(lesson); goal != "" {
		segments = append(segments, "Goal "+goal)
	}
	return segments
}

func renderFooter(segments []string) string {
	return footerStyle.Render(strings.Join(segments, "  "))
}

// coachLine names the finger for the next expected key.
func coachLine(snap session.Snapshot) string {
	next := snap.NextChar()
	switch next {
	case 0:
		return ""
	case ' ':
		return "Next: space · " + keymap.Thumb.Label()
	}
	f, ok := keymap.FingerFor(next)
	if !ok {
		return fmt.Sprintf("Next: %c", next)
	}
	return fmt.Sprintf("Next: %c · %s", next, f.Label())
}

func goalLabel(lesson model.Lesson) string {
	var parts []string
	if lesson.MinWPM > 0 {
		parts = append(parts, fmt.Sprintf("%d WPM", lesson.MinWPM))
	}
	if lesson.MinAccuracy > 0 {
		parts = append(parts, fmt.Sprintf("%d%%", lesson.MinAccuracy))
	}
	return strings.Join(parts, " · ")
}

func clock(d time.Duration) string {
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// renderResult draws the panel shown after an attempt finished.
func renderResult(a *coach.Attempt, p profile.Profile) string {
	res, ok := a.Result()
	if !ok {
		return ""
	}
	verdict := passStyle.Render("Lesson passed")
	if !res.Success {
		verdict = failStyle.Render("Keep practicing")
		if goal := goalLabel(a.Lesson); goal != "" {
			verdict += footerStyle.Render("  goal " + goal)
		}
	}
	lines := []string{
		titleStyle.Render(a.Lesson.Title),
		verdict,
		"",
		fmt.Sprintf("WPM       %d", res.WPM),
		fmt.Sprintf("Accuracy  %d%%", res.Accuracy),
		fmt.Sprintf("XP        +%d (level %d)", res.XPAwarded, p.Level()),
	}
	if res.Stats.TimedOut {
		lines = append(lines, footerStyle.Render("Time is up."))
	}
	lines = append(lines, "")
	if text := a.FeedbackText(); text != "" {
		lines = append(lines, coachStyle.Render(text))
	} else {
		lines = append(lines, footerStyle.Render("Waiting for feedback..."))
	}
	lines = append(lines, "", footerStyle.Render("enter: retry  esc: lessons  t: theme  s: sound  ctrl+c: quit"))
	return panelStyle.Render(strings.Join(lines, "\n"))
}
