package lessons

import (
	"errors"
	"testing"

	"github.com/verte-zerg/typemaster/internal/keymap"
	"github.com/verte-zerg/typemaster/internal/model"
)

func TestCatalogOrder(t *testing.T) {
	want := []string{"1", "2", "3", "5", "6", "7", "8", "4"}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("expected %d lessons, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Fatalf("lesson %d: expected id %s, got %s", i, id, all[i].ID)
		}
	}
}

func TestCatalogIsReadOnly(t *testing.T) {
	all := All()
	all[0].Title = "changed"
	if Default().Title == "changed" {
		t.Fatalf("catalog must not be mutable through All")
	}
}

func TestLookup(t *testing.T) {
	l, err := Lookup("8")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if l.Type != model.LessonAdaptive || l.MinAccuracy != 92 || l.TimeLimitSec != 40 {
		t.Fatalf("unexpected lesson: %+v", l)
	}
	if _, err := Lookup("99"); !errors.Is(err, ErrUnknownLesson) {
		t.Fatalf("expected ErrUnknownLesson, got %v", err)
	}
}

func TestCatalogLessonsWellFormed(t *testing.T) {
	for _, l := range All() {
		if l.Type.IsFixedRow() && l.Content == "" {
			t.Fatalf("lesson %s: fixed-row lesson needs content", l.ID)
		}
		if l.Type == model.LessonFingerDrill {
			f, err := keymap.ParseFinger(l.FocusFinger)
			if err != nil {
				t.Fatalf("lesson %s: %v", l.ID, err)
			}
			if f == keymap.Thumb {
				t.Fatalf("lesson %s: thumb drill would be empty", l.ID)
			}
		}
	}
}
