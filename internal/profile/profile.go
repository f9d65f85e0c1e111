// Package profile owns the learner profile record: defaults, decoding and
// the pure update applied after every run.
package profile

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/scoring"
)

const (
	// Version is the current profile schema version.
	Version = 2
	// HistoryCap bounds the WPM and accuracy histories.
	HistoryCap = 40
	// DefaultTheme flavors AI-generated practice text.
	DefaultTheme = "cyberpunk futurista"
)

// Themes lists the selectable practice themes.
var Themes = []string{
	"cyberpunk futurista",
	"mistério na escola",
	"aventura no espaço",
	"gamer e eSports",
	"moda e estilo",
}

// Profile is the persisted learner record.
type Profile struct {
	Version          int            `json:"version"`
	XP               int            `json:"xp"`
	Streak           int            `json:"streak"`
	LastPracticeDate *model.Date    `json:"lastPracticeDate"`
	CompletedLessons []string       `json:"completedLessons"`
	WPMHistory       []int          `json:"wpmHistory"`
	AccuracyHistory  []int          `json:"accuracyHistory"`
	TotalKeys        int            `json:"totalKeys"`
	KeyMistakes      map[string]int `json:"keyMistakes"`
	Theme            string         `json:"theme"`
	Sound            bool           `json:"sound"`
}

// Default returns a fresh profile.
func Default() Profile {
	return Profile{
		Version:          Version,
		CompletedLessons: []string{},
		WPMHistory:       []int{},
		AccuracyHistory:  []int{},
		KeyMistakes:      map[string]int{},
		Theme:            DefaultTheme,
	}
}

// Level is derived from XP and never stored.
func (p Profile) Level() int {
	return scoring.Level(p.XP)
}

// NextLevelXP is the XP total at which the next level starts.
func (p Profile) NextLevelXP() int {
	return scoring.XPForLevel(p.Level() + 1)
}

// HasCompleted reports whether the lesson was ever passed.
func (p Profile) HasCompleted(lessonID string) bool {
	for _, id := range p.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// BestWPM returns the best WPM in the retained history.
func (p Profile) BestWPM() int {
	best := 0
	for _, v := range p.WPMHistory {
		if v > best {
			best = v
		}
	}
	return best
}

// Decode reads a stored document. It never fails: missing, unparsable or
// unversioned data yields Default, and malformed fields are defaulted one by one.
func Decode(data []byte) Profile {
	p := Default()
	if len(data) == 0 {
		return p
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return p
	}
	version, ok := decodeField[int](fields, "version")
	if !ok || version <= 0 {
		return p
	}

	if v, ok := decodeField[int](fields, "xp"); ok {
		p.XP = v
	}
	if v, ok := decodeField[int](fields, "streak"); ok {
		p.Streak = v
	}
	if v, ok := decodeField[int](fields, "totalKeys"); ok {
		p.TotalKeys = v
	}
	if v, ok := decodeField[[]string](fields, "completedLessons"); ok {
		p.CompletedLessons = v
	}
	if v, ok := decodeField[[]int](fields, "wpmHistory"); ok {
		p.WPMHistory = v
	}
	if v, ok := decodeField[[]int](fields, "accuracyHistory"); ok {
		p.AccuracyHistory = v
	}
	if v, ok := decodeField[map[string]int](fields, "keyMistakes"); ok {
		p.KeyMistakes = v
	}
	if v, ok := decodeField[string](fields, "theme"); ok {
		p.Theme = v
	}
	if v, ok := decodeField[bool](fields, "sound"); ok {
		p.Sound = v
	}
	if v, ok := decodeField[model.Date](fields, "lastPracticeDate"); ok && !v.IsZero() {
		p.LastPracticeDate = &v
	}
	return Normalize(p)
}

// Encode serializes the profile at the current schema version.
func Encode(p Profile) ([]byte, error) {
	p = Normalize(p)
	return json.Marshal(p)
}

// Normalize fills defaults and repairs out-of-range values.
func Normalize(p Profile) Profile {
	out := Clone(p)
	out.Version = Version
	out.XP = nonNegative(out.XP)
	out.Streak = nonNegative(out.Streak)
	out.TotalKeys = nonNegative(out.TotalKeys)
	if out.Theme == "" {
		out.Theme = DefaultTheme
	}
	out.CompletedLessons = dedupe(out.CompletedLessons)
	out.WPMHistory = capHistory(out.WPMHistory)
	out.AccuracyHistory = capHistory(out.AccuracyHistory)

	mistakes := make(map[string]int, len(out.KeyMistakes))
	for k, v := range out.KeyMistakes {
		if utf8.RuneCountInString(k) != 1 || v <= 0 {
			continue
		}
		mistakes[k] = v
	}
	out.KeyMistakes = mistakes
	return out
}

// Clone returns a deep copy.
func Clone(p Profile) Profile {
	out := p
	if p.LastPracticeDate != nil {
		d := *p.LastPracticeDate
		out.LastPracticeDate = &d
	}
	out.CompletedLessons = append([]string{}, p.CompletedLessons...)
	out.WPMHistory = append([]int{}, p.WPMHistory...)
	out.AccuracyHistory = append([]int{}, p.AccuracyHistory...)
	out.KeyMistakes = make(map[string]int, len(p.KeyMistakes))
	for k, v := range p.KeyMistakes {
		out.KeyMistakes[k] = v
	}
	return out
}

// ApplyRunResult returns the profile after a finished run practiced on today.
// The input profile is not modified.
func ApplyRunResult(p Profile, result model.RunResult, today model.Date) Profile {
	out := Normalize(p)
	out.XP += result.XPAwarded
	out.Streak = scoring.NextStreak(out.Streak, out.LastPracticeDate, today)
	out.LastPracticeDate = &today
	out.WPMHistory = capHistory(append(out.WPMHistory, result.WPM))
	out.AccuracyHistory = capHistory(append(out.AccuracyHistory, result.Accuracy))
	out.TotalKeys += result.Stats.CharsTyped
	if result.Success && result.LessonID != "" && !out.HasCompleted(result.LessonID) {
		out.CompletedLessons = append(out.CompletedLessons, result.LessonID)
	}
	for k, v := range result.Stats.Mistakes {
		if utf8.RuneCountInString(k) != 1 || v <= 0 {
			continue
		}
		out.KeyMistakes[k] += v
	}
	return out
}

// WithTheme returns the profile with a new theme; blank resets to the default.
func WithTheme(p Profile, theme string) Profile {
	out := Clone(p)
	out.Theme = theme
	if out.Theme == "" {
		out.Theme = DefaultTheme
	}
	return out
}

// NextTheme cycles through Themes starting after the current one.
func NextTheme(current string) string {
	for i, t := range Themes {
		if t == current {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

// ToggleSound flips the sound preference.
func ToggleSound(p Profile) Profile {
	out := Clone(p)
	out.Sound = !out.Sound
	return out
}

func decodeField[T any](fields map[string]json.RawMessage, name string) (T, bool) {
	var v T
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

func capHistory(values []int) []int {
	if len(values) <= HistoryCap {
		return values
	}
	return append([]int{}, values[len(values)-HistoryCap:]...)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
