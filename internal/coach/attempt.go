package coach

import (
	"sync"

	"github.com/verte-zerg/typemaster/internal/feedback"
	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/session"
)

// Attempt is one run of one lesson.
type Attempt struct {
	ID        string
	Lesson    model.Lesson
	Session   *session.Session
	FocusKeys []string
	// Notice explains why local text replaced an AI story.
	Notice string
	Source feedback.Source

	mu       sync.Mutex
	result   *model.RunResult
	feedback string
}

// Result returns the scored result once the attempt finished.
func (a *Attempt) Result() (model.RunResult, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.result == nil {
		return model.RunResult{}, false
	}
	return *a.result, true
}

// FeedbackText returns the accepted feedback, or "" while it is pending.
func (a *Attempt) FeedbackText() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.feedback
}

func (a *Attempt) setResult(r model.RunResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.result = &r
}

func (a *Attempt) setFeedback(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.feedback = text
}
