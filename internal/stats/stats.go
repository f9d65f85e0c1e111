// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/profile"
)

// Summary aggregates a set of runs together with the profile counters.
type Summary struct {
	Runs        int
	Successes   int
	TimedOut    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	TimeSpent   time.Duration
	Level       int
	XP          int
	NextLevelXP int
	Streak      int
	TotalKeys   int
}

// Summarize computes a Summary.
func Summarize(runs []model.RunRecord, p profile.Profile) Summary {
	s := Summary{
		Runs:        len(runs),
		Level:       p.Level(),
		XP:          p.XP,
		NextLevelXP: p.NextLevelXP(),
		Streak:      p.Streak,
		TotalKeys:   p.TotalKeys,
	}
	if len(runs) == 0 {
		return s
	}
	var totalWPM, totalAcc float64
	for _, r := range runs {
		totalWPM += float64(r.WPM)
		totalAcc += float64(r.Accuracy)
		if r.WPM > s.BestWPM {
			s.BestWPM = r.WPM
		}
		if r.Success {
			s.Successes++
		}
		if r.TimedOut {
			s.TimedOut++
		}
		s.TimeSpent += time.Duration(r.DurationMs) * time.Millisecond
	}
	s.AvgWPM = totalWPM / float64(len(runs))
	s.AvgAccuracy = totalAcc / float64(len(runs))
	return s
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := range values {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// RenderSummary prints the summary block.
func RenderSummary(w io.Writer, s Summary) error {
	lines := []string{
		"Summary",
		fmt.Sprintf("Level: %d (%d XP, next level at %d XP)", s.Level, s.XP, s.NextLevelXP),
		fmt.Sprintf("Streak: %d day(s)", s.Streak),
		fmt.Sprintf("Total keys: %d", s.TotalKeys),
	}
	if s.Runs == 0 {
		lines = append(lines, "No runs found.")
	} else {
		lines = append(lines,
			fmt.Sprintf("Runs: %d (%d passed, %d timed out)", s.Runs, s.Successes, s.TimedOut),
			fmt.Sprintf("Avg WPM: %.1f", s.AvgWPM),
			fmt.Sprintf("Best WPM: %d", s.BestWPM),
			fmt.Sprintf("Avg Accuracy: %.1f%%", s.AvgAccuracy),
			fmt.Sprintf("Time practiced: %s", s.TimeSpent.Round(time.Second)),
		)
	}
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves plots WPM and accuracy smoothed over window runs.
func RenderCurves(w io.Writer, runs []model.RunRecord, window, width int) error {
	if len(runs) == 0 {
		return nil
	}
	wpms := make([]float64, len(runs))
	accs := make([]float64, len(runs))
	for i, r := range runs {
		wpms[i] = float64(r.WPM)
		accs[i] = float64(r.Accuracy)
	}
	curves := []Curve{
		{Name: "WPM", Values: MovingAverage(wpms, window), Color: wpmColor},
		{Name: "Accuracy %", Values: MovingAverage(accs, window), Color: accuracyColor},
	}
	if _, err := fmt.Fprintf(w, "Learning Curves (moving average over %d runs)\n", max(1, window)); err != nil {
		return err
	}
	plotWidth := PlotWidthFor(width)
	for _, c := range curves {
		if err := PlotCurve(w, c, plotWidth, curveHeight); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// RenderKeyTable prints per-key mistakes, most missed first.
func RenderKeyTable(w io.Writer, aggs []model.KeyAggregate, top int) error {
	aggs = TopKeys(aggs, top)
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No key mistakes recorded.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Most Missed Keys"); err != nil {
		return err
	}
	headers := []string{"Key", "Finger", "Mistakes", "Runs"}
	rows := KeyRows(aggs)
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// KeyRows formats aggregates as Key, Finger, Mistakes and Runs cells.
func KeyRows(aggs []model.KeyAggregate) [][]string {
	rows := make([][]string, 0, len(aggs))
	for _, agg := range aggs {
		rows = append(rows, []string{
			keyLabel(agg.Char),
			fingerLabel(agg.Char),
			fmt.Sprintf("%d", agg.Mistakes),
			fmt.Sprintf("%d", agg.Runs),
		})
	}
	return rows
}
