package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/profile"
)

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("MovingAverage = %v, want %v", got, want)
	}
	if got := MovingAverage([]float64{1, 5}, 1); !reflect.DeepEqual(got, []float64{1, 5}) {
		t.Fatalf("window 1 must copy values, got %v", got)
	}
}

func TestSummarize(t *testing.T) {
	runs := []model.RunRecord{
		{WPM: 30, Accuracy: 90, Success: true, DurationMs: 30000},
		{WPM: 50, Accuracy: 100, TimedOut: true, DurationMs: 15000},
	}
	p := profile.Default()
	p.XP = 130
	p.Streak = 4
	s := Summarize(runs, p)
	if s.Runs != 2 || s.Successes != 1 || s.TimedOut != 1 {
		t.Fatalf("unexpected counts: %+v", s)
	}
	if s.AvgWPM != 40 || s.BestWPM != 50 || s.AvgAccuracy != 95 {
		t.Fatalf("unexpected averages: %+v", s)
	}
	if s.TimeSpent != 45*time.Second {
		t.Fatalf("unexpected time spent %s", s.TimeSpent)
	}
	if s.Level != 2 || s.NextLevelXP != 480 || s.Streak != 4 {
		t.Fatalf("unexpected profile fields: %+v", s)
	}
}
