package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/profile"
)

// RunSource is the read side of the run history.
type RunSource interface {
	ListRuns(ctx context.Context, cfg model.StatsConfig) ([]model.RunRecord, error)
	KeyAggregates(ctx context.Context, runIDs []int64) ([]model.KeyAggregate, error)
}

// DefaultTopKeys limits the key table.
const DefaultTopKeys = 10

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs    []model.RunRecord
	Keys    []model.KeyAggregate
	Profile profile.Profile
	Summary Summary
}

// BuildReport loads and prepares data for stats rendering. Without any
// recorded runs the key table falls back to the profile's lifetime tally.
func BuildReport(ctx context.Context, src RunSource, p profile.Profile, cfg model.StatsConfig) (Report, error) {
	runs, err := src.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	keys, err := src.KeyAggregates(ctx, ids)
	if err != nil {
		return Report{}, err
	}
	if len(runs) == 0 {
		keys = ProfileKeys(p.KeyMistakes)
	}
	return Report{
		Runs:    runs,
		Keys:    keys,
		Profile: p,
		Summary: Summarize(runs, p),
	}, nil
}

// Render writes the full report sized to width columns.
func (r Report) Render(w io.Writer, window, width int) error {
	if err := RenderSummary(w, r.Summary); err != nil {
		return err
	}
	if err := RenderCurves(w, r.Runs, window, width); err != nil {
		return err
	}
	return RenderKeyTable(w, r.Keys, DefaultTopKeys)
}
