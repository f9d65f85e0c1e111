package session

import (
	"sync"
	"time"
)

// PollInterval is the default timeout polling period.
const PollInterval = 200 * time.Millisecond

// Watchdog polls a session for an elapsed time limit until it is stopped
// or the session finishes. It only observes; the owner commits the timeout
// by calling CheckTimeout when Fired yields true.
type Watchdog struct {
	stop  chan struct{}
	fired chan bool
	once  sync.Once
}

// Watch starts polling s every interval.
func Watch(s *Session, interval time.Duration) *Watchdog {
	if interval <= 0 {
		interval = PollInterval
	}
	w := &Watchdog{
		stop:  make(chan struct{}),
		fired: make(chan bool, 1),
	}
	go w.run(s, interval)
	return w
}

// Fired yields true once the time limit elapsed, or false when the
// watchdog was stopped or the session finished another way.
func (w *Watchdog) Fired() <-chan bool {
	return w.fired
}

// Stop releases the watchdog. Safe to call more than once.
func (w *Watchdog) Stop() {
	w.once.Do(func() { close(w.stop) })
}

func (w *Watchdog) run(s *Session, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(w.fired)
	for {
		select {
		case <-w.stop:
			w.fired <- false
			return
		case <-ticker.C:
			if s.Expired() {
				w.fired <- true
				return
			}
			if s.State() == Finished {
				w.fired <- false
				return
			}
		}
	}
}
