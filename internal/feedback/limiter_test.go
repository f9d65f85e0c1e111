package feedback

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memUsage struct {
	stamps  []time.Time
	loadErr error
	saveErr error
}

func (m *memUsage) LoadUsage(context.Context) ([]time.Time, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]time.Time(nil), m.stamps...), nil
}

func (m *memUsage) SaveUsage(_ context.Context, stamps []time.Time) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.stamps = append([]time.Time(nil), stamps...)
	return nil
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	usage := &memUsage{}
	rl := NewRateLimiter(2, usage, nil)

	if ok, _ := rl.Reserve(ctx, start); !ok {
		t.Fatalf("first request should pass")
	}
	if ok, _ := rl.Reserve(ctx, start.Add(10*time.Second)); !ok {
		t.Fatalf("second request should pass")
	}
	ok, wait := rl.Reserve(ctx, start.Add(20*time.Second))
	if ok {
		t.Fatalf("third request should be limited")
	}
	if wait != 40*time.Second {
		t.Fatalf("expected 40s wait, got %s", wait)
	}
	if len(usage.stamps) != 2 {
		t.Fatalf("rejected request must not be recorded, got %d stamps", len(usage.stamps))
	}

	if ok, _ := rl.Reserve(ctx, start.Add(60*time.Second)); !ok {
		t.Fatalf("oldest request should have left the window")
	}
}

func TestRateLimiterPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	usage := &memUsage{}
	if ok, _ := NewRateLimiter(1, usage, nil).Reserve(ctx, now); !ok {
		t.Fatalf("first request should pass")
	}
	if ok, _ := NewRateLimiter(1, usage, nil).Reserve(ctx, now.Add(time.Second)); ok {
		t.Fatalf("new limiter should see persisted usage")
	}
}

func TestRateLimiterFallsBackToMemory(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	usage := &memUsage{loadErr: errors.New("locked"), saveErr: errors.New("locked")}
	rl := NewRateLimiter(1, usage, nil)
	if ok, _ := rl.Reserve(ctx, now); !ok {
		t.Fatalf("first request should pass")
	}
	if ok, _ := rl.Reserve(ctx, now.Add(time.Second)); ok {
		t.Fatalf("memory fallback should still enforce the limit")
	}
}

func TestPruneDropsOldAndFutureStamps(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	got := prune([]time.Time{
		now.Add(-Window),
		now.Add(5 * time.Second),
		now.Add(-time.Second),
		now.Add(-30 * time.Second),
		{},
	}, now)
	if len(got) != 2 || !got[0].Equal(now.Add(-30*time.Second)) {
		t.Fatalf("unexpected pruned stamps: %v", got)
	}
}
