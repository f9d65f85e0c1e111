// Package session implements the per-attempt typing state machine.
package session

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/verte-zerg/typemaster/internal/keymap"
	"github.com/verte-zerg/typemaster/internal/model"
)

// State is the lifecycle phase of a session.
type State int

const (
	Idle State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// FinishReason records which completion path won.
type FinishReason int

const (
	NotFinished FinishReason = iota
	ByLength
	ByTimeout
)

// Outcome describes the effect of one keystroke.
type Outcome struct {
	Accepted bool
	Correct  bool
	Finished bool
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Target      string
	Input       string
	State       State
	Reason      FinishReason
	Errors      int
	LeftKeys    int
	RightKeys   int
	LeftErrors  int
	RightErrors int
	StartedAt   time.Time
	EndedAt     time.Time
	TimeLimit   time.Duration
}

// NextChar returns the next expected character, or 0 when the target is fully typed.
func (s Snapshot) NextChar() rune {
	target := []rune(s.Target)
	n := len([]rune(s.Input))
	if n >= len(target) {
		return 0
	}
	return target[n]
}

// Session consumes keystrokes for one lesson attempt.
type Session struct {
	mu sync.Mutex

	target    []rune
	input     []rune
	timeLimit time.Duration
	clock     Clock

	state     State
	reason    FinishReason
	startedAt time.Time
	endedAt   time.Time

	errors      int
	leftKeys    int
	rightKeys   int
	leftErrors  int
	rightErrors int
	mistakes    map[string]int

	finalized atomic.Bool
	onFinish  func(model.RunStats)
}

// New creates an idle session. A zero timeLimit disables the timeout path.
func New(target string, timeLimit time.Duration, clock Clock) *Session {
	if clock == nil {
		clock = RealClock{}
	}
	return &Session{
		target:    []rune(target),
		timeLimit: timeLimit,
		clock:     clock,
		mistakes:  map[string]int{},
	}
}

// OnFinish registers the finalization callback. It runs exactly once, outside the session lock.
func (s *Session) OnFinish(fn func(model.RunStats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinish = fn
}

// Key dispatches a named key. Multi-character names other than
// "backspace" and "space" are ignored.
func (s *Session) Key(name string) Outcome {
	switch strings.ToLower(name) {
	case "backspace":
		return s.Backspace()
	case "space":
		return s.Press(' ')
	}
	runes := []rune(name)
	if len(runes) != 1 {
		return Outcome{}
	}
	return s.Press(runes[0])
}

// Backspace removes the last typed character. Errors are never decremented.
func (s *Session) Backspace() Outcome {
	s.mu.Lock()
	if s.state == Finished {
		s.mu.Unlock()
		return Outcome{}
	}
	s.start()
	if len(s.input) > 0 {
		s.input = s.input[:len(s.input)-1]
	}
	s.mu.Unlock()
	return Outcome{Accepted: true, Correct: true}
}

// Press consumes one printable character or space.
func (s *Session) Press(r rune) Outcome {
	s.mu.Lock()
	if s.state == Finished {
		s.mu.Unlock()
		return Outcome{}
	}
	n := len(s.input)
	if n >= len(s.target) {
		s.mu.Unlock()
		return Outcome{}
	}
	expected := s.target[n]
	typed := r
	if unicode.IsLower(expected) {
		typed = unicode.ToLower(typed)
	}
	s.start()
	s.input = append(s.input, typed)

	correct := typed == expected
	if !correct {
		s.errors++
		s.mistakes[string(unicode.ToLower(typed))]++
	}
	switch keymap.SideOf(typed) {
	case keymap.Left:
		s.leftKeys++
		if !correct {
			s.leftErrors++
		}
	case keymap.Right:
		s.rightKeys++
		if !correct {
			s.rightErrors++
		}
	}

	out := Outcome{Accepted: true, Correct: correct}
	var stats model.RunStats
	var won bool
	if len(s.input) == len(s.target) {
		stats, won = s.finish(ByLength)
		out.Finished = won
	}
	cb := s.onFinish
	s.mu.Unlock()

	if won && cb != nil {
		cb(stats)
	}
	return out
}

// Expired reports whether a running, time-limited session has used up its time.
func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired()
}

// CheckTimeout finishes the session when its time limit has elapsed.
// It returns true only for the call that committed the timeout.
func (s *Session) CheckTimeout() bool {
	s.mu.Lock()
	if !s.expired() {
		s.mu.Unlock()
		return false
	}
	stats, won := s.finish(ByTimeout)
	cb := s.onFinish
	s.mu.Unlock()

	if won && cb != nil {
		cb(stats)
	}
	return won
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed returns time since the first keystroke, frozen once finished.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed()
}

// Remaining returns the time left on a timed session, never negative.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timeLimit <= 0 {
		return 0
	}
	left := s.timeLimit - s.elapsed()
	if left < 0 {
		return 0
	}
	return left
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Target:      string(s.target),
		Input:       string(s.input),
		State:       s.state,
		Reason:      s.reason,
		Errors:      s.errors,
		LeftKeys:    s.leftKeys,
		RightKeys:   s.rightKeys,
		LeftErrors:  s.leftErrors,
		RightErrors: s.rightErrors,
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
		TimeLimit:   s.timeLimit,
	}
}

func (s *Session) start() {
	if s.state == Idle {
		s.state = Running
		s.startedAt = s.clock.Now()
	}
}

func (s *Session) expired() bool {
	if s.state != Running || s.timeLimit <= 0 {
		return false
	}
	return s.clock.Now().Sub(s.startedAt) >= s.timeLimit
}

func (s *Session) elapsed() time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	end := s.endedAt
	if end.IsZero() {
		end = s.clock.Now()
	}
	return end.Sub(s.startedAt)
}

// finish commits the terminal transition. Must be called with s.mu held.
func (s *Session) finish(reason FinishReason) (model.RunStats, bool) {
	if !s.finalized.CompareAndSwap(false, true) {
		return model.RunStats{}, false
	}
	s.state = Finished
	s.reason = reason
	s.endedAt = s.clock.Now()
	if s.startedAt.IsZero() {
		s.startedAt = s.endedAt
	}
	mistakes := make(map[string]int, len(s.mistakes))
	for k, v := range s.mistakes {
		mistakes[k] = v
	}
	return model.RunStats{
		StartedAt:   s.startedAt,
		EndedAt:     s.endedAt,
		CharsTyped:  len(s.input),
		Errors:      s.errors,
		LeftKeys:    s.leftKeys,
		RightKeys:   s.rightKeys,
		LeftErrors:  s.leftErrors,
		RightErrors: s.rightErrors,
		Mistakes:    mistakes,
		TimedOut:    reason == ByTimeout,
	}, true
}
