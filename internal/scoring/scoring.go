// Package scoring turns finished runs into speed, accuracy and progression numbers.
package scoring

import (
	"math"
	"time"

	"github.com/verte-zerg/typemaster/internal/model"
)

const (
	// SuccessBonus is added to the XP award when a run meets its lesson goals.
	SuccessBonus = 35
	// MinXP is the floor of any XP award.
	MinXP = 10

	charsPerWord = 5.0
	xpPerLevel   = 120.0
)

// WPM returns words per minute, where a word is five typed characters.
// Zero or non-finite elapsed time yields 0.
func WPM(chars int, elapsed time.Duration) int {
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		return 0
	}
	v := math.Round((float64(chars) / charsPerWord) / minutes)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(v)
}

// Accuracy returns the rounded share of typed characters that were not errors.
// Errors are cumulative for the run, so a corrected mistake still counts.
func Accuracy(chars, errors int) int {
	if chars <= 0 {
		return 100
	}
	v := int(math.Round(100 * float64(chars-errors) / float64(chars)))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Success reports whether a run meets the lesson's optional thresholds.
func Success(lesson model.Lesson, wpm, accuracy int) bool {
	if lesson.MinAccuracy > 0 && accuracy < lesson.MinAccuracy {
		return false
	}
	if lesson.MinWPM > 0 && wpm < lesson.MinWPM {
		return false
	}
	return true
}

// XPForRun computes the XP awarded for a run.
func XPForRun(wpm, accuracy int, success bool) int {
	bonus := 0
	if success {
		bonus = SuccessBonus
	}
	xp := int(math.Round(float64(wpm)*2.2+float64(accuracy)*0.8)) + bonus
	if xp < MinXP {
		return MinXP
	}
	return xp
}

// Level maps cumulative XP onto a concave level curve starting at 1.
func Level(xp int) int {
	if xp < 0 {
		xp = 0
	}
	level := int(math.Floor(math.Sqrt(float64(xp)/xpPerLevel))) + 1
	if level < 1 {
		return 1
	}
	return level
}

// XPForLevel returns the cumulative XP at which level is reached.
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := float64(level - 1)
	return int(n * n * xpPerLevel)
}

// NextStreak returns the practice streak after practicing on today.
func NextStreak(streak int, last *model.Date, today model.Date) int {
	if last == nil || last.IsZero() {
		return 1
	}
	switch last.DaysUntil(today) {
	case 0:
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}

// Evaluate scores a finished run against its lesson.
func Evaluate(lesson model.Lesson, stats model.RunStats) model.RunResult {
	wpm := WPM(stats.CharsTyped, stats.Duration())
	acc := Accuracy(stats.CharsTyped, stats.Errors)
	success := Success(lesson, wpm, acc)
	return model.RunResult{
		LessonID:  lesson.ID,
		WPM:       wpm,
		Accuracy:  acc,
		XPAwarded: XPForRun(wpm, acc, success),
		Success:   success,
		Stats:     stats,
	}
}
