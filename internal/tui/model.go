// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typemaster/internal/coach"
	"github.com/verte-zerg/typemaster/internal/lessons"
	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/session"
)

type screen int

const (
	screenMenu screen = iota
	screenLoading
	screenLesson
	screenResult
)

const tickInterval = 200 * time.Millisecond

// tickMsg drives the timer of one attempt.
type tickMsg struct {
	attemptID string
}

// preparedMsg carries an attempt built off the UI loop.
type preparedMsg struct {
	seq     int
	attempt *coach.Attempt
	err     error
}

type feedbackMsg coach.FeedbackEvent

// Options configure the typing UI.
type Options struct {
	// Lesson starts this lesson right away instead of showing the menu.
	Lesson string
	// Bell receives the error bell; defaults to stdout.
	Bell io.Writer
}

// Model implements the Bubble Tea typing UI.
type Model struct {
	ctx     context.Context
	coach   *coach.Coach
	bell    io.Writer
	initial string

	screen  screen
	items   []model.Lesson
	menu    table.Model
	attempt *coach.Attempt
	prepSeq int
	status  string

	width  int
	height int
}

// NewModel constructs a typing TUI model.
func NewModel(ctx context.Context, c *coach.Coach, opts Options) *Model {
	bell := opts.Bell
	if bell == nil {
		bell = os.Stdout
	}
	items := lessons.All()
	return &Model{
		ctx:     ctx,
		coach:   c,
		bell:    bell,
		initial: opts.Lesson,
		items:   items,
		menu:    newMenu(items, c.Profile()),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitFeedback(m.coach.Feedback())}
	if m.initial != "" {
		cmds = append(cmds, m.launch(m.initial))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menu.SetWidth(min(msg.Width, 70))
		return m, nil
	case tickMsg:
		return m, m.handleTick(msg)
	case preparedMsg:
		return m, m.handlePrepared(msg)
	case feedbackMsg:
		m.coach.AcceptFeedback(msg.AttemptID, msg.Text)
		return m, waitFeedback(m.coach.Feedback())
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.coach.Abandon()
			return m, tea.Quit
		}
		switch m.screen {
		case screenLesson:
			return m, m.updateLesson(msg)
		case screenResult:
			return m.updateResult(msg)
		case screenLoading:
			if msg.Type == tea.KeyEsc {
				m.toMenu()
			}
			return m, nil
		default:
			return m.updateMenu(msg)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.screen {
	case screenLoading:
		content = noticeStyle.Render("Preparing your story...")
	case screenLesson:
		content = m.lessonView()
	case screenResult:
		content = renderResult(m.attempt, m.coach.Profile())
	default:
		content = m.menuView()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter":
		i := m.menu.Cursor()
		if i < 0 || i >= len(m.items) {
			return m, nil
		}
		return m, m.launch(m.items[i].ID)
	case "t", "s":
		m.applySetting(msg.String())
		return m, nil
	}
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	return m, cmd
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter":
		return m, m.launch(m.attempt.Lesson.ID)
	case "esc":
		m.toMenu()
	case "t", "s":
		m.applySetting(msg.String())
	}
	return m, nil
}

func (m *Model) updateLesson(msg tea.KeyMsg) tea.Cmd {
	if msg.Paste {
		return nil
	}
	var outs []session.Outcome
	switch msg.Type {
	case tea.KeyEsc:
		m.toMenu()
		return nil
	case tea.KeyBackspace, tea.KeyDelete:
		outs = append(outs, m.coach.Backspace())
	case tea.KeySpace:
		outs = append(outs, m.coach.Key("space"))
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			outs = append(outs, m.coach.Press(r))
		}
	default:
		return nil
	}

	missed := false
	for _, out := range outs {
		if out.Accepted && !out.Correct {
			missed = true
		}
	}
	if m.attempt.Session.State() == session.Finished {
		m.screen = screenResult
		return nil
	}
	if missed && m.coach.Profile().Sound {
		return ringBell(m.bell)
	}
	return nil
}

func (m *Model) applySetting(key string) {
	switch key {
	case "t":
		p := m.coach.CycleTheme(m.ctx)
		m.status = "Theme: " + p.Theme
	case "s":
		p := m.coach.ToggleSound(m.ctx)
		m.status = "Sound off"
		if p.Sound {
			m.status = "Sound on"
		}
	}
}

// launch starts lessonID. AI stories are prepared off the UI loop.
func (m *Model) launch(lessonID string) tea.Cmd {
	lesson, err := lessons.Lookup(lessonID)
	if err != nil {
		m.status = err.Error()
		m.toMenu()
		return nil
	}
	m.status = ""
	if lesson.Type == model.LessonAIStory {
		m.coach.Abandon()
		m.attempt = nil
		m.screen = screenLoading
		m.prepSeq++
		return prepare(m.ctx, m.coach, lesson.ID, m.prepSeq)
	}
	a, err := m.coach.Launch(m.ctx, lesson.ID)
	if err != nil {
		m.status = err.Error()
		m.toMenu()
		return nil
	}
	return m.begin(a)
}

func (m *Model) begin(a *coach.Attempt) tea.Cmd {
	m.attempt = a
	m.screen = screenLesson
	return tick(a.ID)
}

func (m *Model) handlePrepared(msg preparedMsg) tea.Cmd {
	if m.screen != screenLoading || msg.seq != m.prepSeq {
		return nil
	}
	if msg.err != nil {
		m.status = fmt.Sprintf("failed to prepare lesson: %v", msg.err)
		m.toMenu()
		return nil
	}
	m.coach.Activate(msg.attempt)
	return m.begin(msg.attempt)
}

func (m *Model) handleTick(msg tickMsg) tea.Cmd {
	if m.screen != screenLesson || m.attempt == nil || m.attempt.ID != msg.attemptID {
		return nil
	}
	m.coach.CheckTimeout(msg.attemptID)
	if m.attempt.Session.State() == session.Finished {
		m.screen = screenResult
		return nil
	}
	return tick(msg.attemptID)
}

func (m *Model) toMenu() {
	m.coach.Abandon()
	m.attempt = nil
	m.screen = screenMenu
	m.menu.SetRows(menuRows(m.items, m.coach.Profile()))
}

func (m *Model) menuView() string {
	p := m.coach.Profile()
	header := fmt.Sprintf("Level %d · %d XP · streak %dd · theme %s", p.Level(), p.XP, p.Streak, p.Theme)
	lines := []string{
		titleStyle.Render("typemaster"),
		footerStyle.Render(header),
		"",
		m.menu.View(),
		"",
		footerStyle.Render("enter: start  t: theme  s: sound  q: quit"),
	}
	if m.status != "" {
		lines = append(lines, noticeStyle.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) lessonView() string {
	a := m.attempt
	snap := a.Session.Snapshot()
	width := 60
	if m.width > 0 {
		width = max(1, int(float64(m.width)*0.70))
	}

	lines := []string{titleStyle.Render(a.Lesson.Title)}
	if a.Notice != "" {
		lines = append(lines, noticeStyle.Render(a.Notice))
	}
	if len(a.FocusKeys) > 0 {
		lines = append(lines, coachStyle.Render("Focus keys: "+strings.Join(a.FocusKeys, " ")))
	}
	text := wrapGlyphs(buildGlyphs([]rune(snap.Target), []rune(snap.Input)), width)
	lines = append(lines,
		"",
		lipgloss.NewStyle().Width(width).Render(text),
		"",
		coachStyle.Render(coachLine(snap)),
		renderFooter(footerSegments(m.coach.Profile(), a.Lesson, snap, a.Session.Elapsed(), a.Session.Remaining())),
	)
	return strings.Join(lines, "\n")
}

func tick(attemptID string) tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{attemptID: attemptID}
	})
}

func prepare(ctx context.Context, c *coach.Coach, lessonID string, seq int) tea.Cmd {
	return func() tea.Msg {
		a, err := c.Prepare(ctx, lessonID)
		return preparedMsg{seq: seq, attempt: a, err: err}
	}
}

func waitFeedback(events <-chan coach.FeedbackEvent) tea.Cmd {
	return func() tea.Msg {
		return feedbackMsg(<-events)
	}
}

func ringBell(w io.Writer) tea.Cmd {
	return func() tea.Msg {
		_, _ = w.Write([]byte("\a"))
		return nil
	}
}
