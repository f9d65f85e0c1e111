// Package model defines shared data structures.
package model

import "time"

// LessonType tags how a lesson's target text is produced.
type LessonType string

const (
	LessonHomeRow     LessonType = "home-row"
	LessonTopRow      LessonType = "top-row"
	LessonBottomRow   LessonType = "bottom-row"
	LessonFingerDrill LessonType = "finger-drill"
	LessonAlternating LessonType = "alternating"
	LessonSprint      LessonType = "sprint"
	LessonAdaptive    LessonType = "adaptive"
	LessonAIStory     LessonType = "ai-story"
)

// IsFixedRow reports whether the lesson uses fixed catalog content.
func (t LessonType) IsFixedRow() bool {
	switch t {
	case LessonHomeRow, LessonTopRow, LessonBottomRow:
		return true
	default:
		return false
	}
}

// Lesson is a static catalog entry. Zero thresholds mean "no requirement".
type Lesson struct {
	ID           string
	Title        string
	Description  string
	Type         LessonType
	Level        int
	Content      string
	TimeLimitSec int
	MinAccuracy  int
	MinWPM       int
	FocusFinger  string
}

// TimeLimit returns the configured limit or zero when the lesson is untimed.
func (l Lesson) TimeLimit() time.Duration {
	if l.TimeLimitSec <= 0 {
		return 0
	}
	return time.Duration(l.TimeLimitSec) * time.Second
}

// Config defines practice settings.
type Config struct {
	Lesson       string
	Theme        string
	Seed         int64
	WordListPath string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	LessonID    string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RunStats holds the raw counters of a finished typing run.
type RunStats struct {
	StartedAt   time.Time
	EndedAt     time.Time
	CharsTyped  int
	Errors      int
	LeftKeys    int
	RightKeys   int
	LeftErrors  int
	RightErrors int
	Mistakes    map[string]int
	TimedOut    bool
}

// Duration returns the elapsed run time, zero when the run never started.
func (s RunStats) Duration() time.Duration {
	if s.StartedAt.IsZero() || s.EndedAt.IsZero() {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// RunResult is the scored outcome of one run.
type RunResult struct {
	LessonID  string
	WPM       int
	Accuracy  int
	XPAwarded int
	Success   bool
	Stats     RunStats
}

// RunRecord is a persisted run history row.
type RunRecord struct {
	ID         int64
	LessonID   string
	LessonType LessonType
	StartedAt  time.Time
	EndedAt    time.Time
	WPM        int
	Accuracy   int
	XPAwarded  int
	Success    bool
	TimedOut   bool
	CharsTyped int
	Errors     int
	DurationMs int64
}

// KeyStats stores mistakes of one key during a run.
type KeyStats struct {
	Char     string
	Mistakes int
}

// KeyAggregate aggregates key mistakes across runs.
type KeyAggregate struct {
	Char     string
	Mistakes int
	Runs     int
}
