package feedback

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/verte-zerg/typemaster/internal/logger"
)

// Window is the sliding window the request budget applies to.
const Window = time.Minute

// UsageStore persists remote request timestamps across runs.
type UsageStore interface {
	LoadUsage(ctx context.Context) ([]time.Time, error)
	SaveUsage(ctx context.Context, stamps []time.Time) error
}

// RateLimiter admits at most Limit requests in any sliding Window.
// Timestamps live in the UsageStore; an in-memory copy is used when the
// store fails.
type RateLimiter struct {
	limit int
	store UsageStore
	log   *logger.Logger

	mu     sync.Mutex
	memory []time.Time
}

// NewRateLimiter builds a limiter. A nil store keeps timestamps in memory only.
func NewRateLimiter(limit int, store UsageStore, log *logger.Logger) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RateLimiter{limit: limit, store: store, log: log}
}

// Limit returns the per-window budget.
func (r *RateLimiter) Limit() int {
	return r.limit
}

// Reserve consumes one slot at now. When the budget is exhausted it
// reports false and how long until the oldest request leaves the window.
func (r *RateLimiter) Reserve(ctx context.Context, now time.Time) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stamps := prune(r.load(ctx), now)
	if len(stamps) >= r.limit {
		wait := Window - now.Sub(stamps[0])
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		r.save(ctx, stamps)
		return false, wait
	}
	stamps = append(stamps, now)
	r.save(ctx, stamps)
	return true, 0
}

func (r *RateLimiter) load(ctx context.Context) []time.Time {
	if r.store == nil {
		return r.memory
	}
	stamps, err := r.store.LoadUsage(ctx)
	if err != nil {
		r.log.Warn("failed to read ai usage, using memory", "error", err)
		return r.memory
	}
	return stamps
}

func (r *RateLimiter) save(ctx context.Context, stamps []time.Time) {
	r.memory = stamps
	if r.store == nil {
		return
	}
	if err := r.store.SaveUsage(ctx, stamps); err != nil {
		r.log.Warn("failed to save ai usage", "error", err)
	}
}

// prune keeps timestamps inside the window ending at now, oldest first.
func prune(stamps []time.Time, now time.Time) []time.Time {
	out := make([]time.Time, 0, len(stamps))
	for _, ts := range stamps {
		if ts.IsZero() || ts.After(now) {
			continue
		}
		if now.Sub(ts) < Window {
			out = append(out, ts)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
