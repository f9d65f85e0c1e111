// Package lessons holds the static lesson catalog.
package lessons

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/typemaster/internal/model"
)

// ErrUnknownLesson is returned when a lesson id is not in the catalog.
var ErrUnknownLesson = errors.New("unknown lesson")

var catalog = []model.Lesson{
	{
		ID:          "1",
		Title:       "Home Base",
		Description: "Master the home row (asdf jkl;). Everything starts here.",
		Type:        model.LessonHomeRow,
		Level:       1,
		Content:     "asdf jkl; asdf jkl; a s d f j k l ;",
	},
	{
		ID:          "2",
		Title:       "Finger Climb",
		Description: "Reach for the top row (qwer uiop).",
		Type:        model.LessonTopRow,
		Level:       2,
		Content:     "qwer uiop qwer uiop q w e r u i o p",
	},
	{
		ID:          "3",
		Title:       "Deep Dive",
		Description: "Own the bottom row (zxcv nm,.).",
		Type:        model.LessonBottomRow,
		Level:       3,
		Content:     "zxcv nm,. zxcv nm,. z x c v n m , .",
	},
	{
		ID:          "5",
		Title:       "Drill: Index Fingers",
		Description: "Build rhythm with the index finger and its neighbours.",
		Type:        model.LessonFingerDrill,
		Level:       2,
		FocusFinger: "left-index",
	},
	{
		ID:           "6",
		Title:        "Combo: Alternate Hands",
		Description:  "Left, right, left, right. No peeking.",
		Type:         model.LessonAlternating,
		Level:        3,
		TimeLimitSec: 35,
		MinAccuracy:  90,
	},
	{
		ID:           "7",
		Title:        "Sprint 30s",
		Description:  "Thirty seconds to type as much as you can.",
		Type:         model.LessonSprint,
		Level:        4,
		TimeLimitSec: 30,
	},
	{
		ID:           "8",
		Title:        "Smart Mission",
		Description:  "Adaptive drill focused on the keys you miss most.",
		Type:         model.LessonAdaptive,
		Level:        4,
		TimeLimitSec: 40,
		MinAccuracy:  92,
	},
	{
		ID:          "4",
		Title:       "AI Mission: Adventure",
		Description: "Practice with freshly generated themed stories.",
		Type:        model.LessonAIStory,
		Level:       4,
	},
}

// All returns the catalog in display order.
func All() []model.Lesson {
	return append([]model.Lesson(nil), catalog...)
}

// Lookup returns the lesson with the given id.
func Lookup(id string) (model.Lesson, error) {
	for _, l := range catalog {
		if l.ID == id {
			return l, nil
		}
	}
	return model.Lesson{}, fmt.Errorf("%w: %q", ErrUnknownLesson, id)
}

// Default returns the first lesson of the catalog.
func Default() model.Lesson {
	return catalog[0]
}
