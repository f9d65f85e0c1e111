// Package statsui provides the Bubble Tea stats browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typemaster/internal/lessons"
	"github.com/verte-zerg/typemaster/internal/model"
	"github.com/verte-zerg/typemaster/internal/profile"
	"github.com/verte-zerg/typemaster/internal/stats"
)

const (
	tabOverview = iota
	tabKeys
)

const (
	fieldLesson = iota
	fieldSince
	fieldLast
	fieldWindow
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	ctx     context.Context
	src     stats.RunSource
	profile profile.Profile
	cfg     model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	keys      table.Model

	filterMode  bool
	inputs      []textinput.Model
	filterIndex int
	filterError string

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(ctx context.Context, src stats.RunSource, p profile.Profile, cfg model.StatsConfig) *Model {
	if cfg.CurveWindow <= 0 {
		cfg.CurveWindow = 1
	}
	m := &Model{
		ctx:      ctx,
		src:      src,
		profile:  p,
		cfg:      cfg,
		tabs:     []string{"Overview", "Keys"},
		overview: viewport.New(0, 0),
		keys:     newKeyTable(),
		inputs: []textinput.Model{
			newInput("Lesson: "),
			newInput("Since (YYYY-MM-DD): "),
			newInput("Last: "),
			newInput("Curve window: "),
		},
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.render()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, nil
		case "right", "l", "tab":
			m.moveTab(1)
			return m, nil
		case "=":
			m.cfg.CurveWindow++
			m.render()
			return m, nil
		case "-":
			m.cfg.CurveWindow = max(1, m.cfg.CurveWindow-1)
			m.render()
			return m, nil
		case "/":
			return m, m.startFilter()
		}
		var cmd tea.Cmd
		if m.activeTab == tabKeys {
			m.keys, cmd = m.keys.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	var body string
	switch {
	case m.filterMode:
		body = m.filterView()
	case m.activeTab == tabKeys:
		body = m.keys.View()
	default:
		body = m.overview.View()
	}
	footer := m.helpLine()
	if m.errMsg != "" && !m.filterMode {
		footer += "\n" + errorStyle.Render(m.errMsg)
	}
	return strings.Join([]string{m.header(), body, footer}, "\n")
}

func (m *Model) refresh() {
	report, err := stats.BuildReport(m.ctx, m.src, m.profile, m.cfg)
	if err != nil {
		m.errMsg = fmt.Sprintf("failed to load stats: %v", err)
		m.report = stats.Report{Profile: m.profile}
	} else {
		m.errMsg = ""
		m.report = report
	}
	m.keys.SetRows(keyRows(m.report.Keys))
	m.render()
}

func (m *Model) render() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, m.cfg.CurveWindow, width))
}

func (m *Model) layout() {
	body := max(1, m.height-m.headerHeight()-2)
	m.overview.Width = m.width
	m.overview.Height = body
	m.keys.SetWidth(m.width)
	m.keys.SetHeight(body)
	for i := range m.inputs {
		m.inputs[i].Width = max(10, m.width-lipgloss.Width(m.inputs[i].Prompt)-2)
	}
}

func (m *Model) headerHeight() int {
	return lipgloss.Height(activeNavStyle.Render("X")) + 1
}

func (m *Model) moveTab(delta int) {
	m.activeTab = (m.activeTab + delta + len(m.tabs)) % len(m.tabs)
	if m.activeTab == tabKeys {
		m.keys.Focus()
	} else {
		m.keys.Blur()
	}
}

func (m *Model) header() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return tabs + "\n" + headerStyle.Render(filterSummary(m.cfg))
}

func (m *Model) helpLine() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	return headerStyle.Render("Nav: left/right  Scroll: up/down  Window: -/=  Filters: /  Quit: q")
}

func filterSummary(cfg model.StatsConfig) string {
	lesson := cfg.LessonID
	if lesson == "" {
		lesson = "any"
	}
	since := "any"
	if cfg.Since != nil {
		since = cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if cfg.Last > 0 {
		last = strconv.Itoa(cfg.Last)
	}
	return fmt.Sprintf("Filters: lesson=%s  since=%s  last=%s  window=%d", lesson, since, last, cfg.CurveWindow)
}

func (m *Model) startFilter() tea.Cmd {
	m.filterMode = true
	m.filterError = ""
	m.inputs[fieldLesson].SetValue(m.cfg.LessonID)
	m.inputs[fieldSince].SetValue("")
	if m.cfg.Since != nil {
		m.inputs[fieldSince].SetValue(m.cfg.Since.Format("2006-01-02"))
	}
	m.inputs[fieldLast].SetValue("")
	if m.cfg.Last > 0 {
		m.inputs[fieldLast].SetValue(strconv.Itoa(m.cfg.Last))
	}
	m.inputs[fieldWindow].SetValue(strconv.Itoa(m.cfg.CurveWindow))
	return m.focusInput(0)
}

func (m *Model) focusInput(i int) tea.Cmd {
	m.filterIndex = (i + len(m.inputs)) % len(m.inputs)
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.filterIndex {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterMode = false
		return m, nil
	case "tab", "down":
		return m, m.focusInput(m.filterIndex + 1)
	case "shift+tab", "up":
		return m, m.focusInput(m.filterIndex - 1)
	case "enter":
		cfg, err := parseFilters(m.inputs)
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.filterIndex], cmd = m.inputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) filterView() string {
	lines := []string{"Filters (enter to apply, esc to cancel)"}
	for _, input := range m.inputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func parseFilters(inputs []textinput.Model) (model.StatsConfig, error) {
	var cfg model.StatsConfig
	cfg.LessonID = strings.TrimSpace(inputs[fieldLesson].Value())
	if cfg.LessonID != "" {
		if _, err := lessons.Lookup(cfg.LessonID); err != nil {
			return model.StatsConfig{}, err
		}
	}
	if v := strings.TrimSpace(inputs[fieldSince].Value()); v != "" {
		since, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("since must be YYYY-MM-DD")
		}
		cfg.Since = &since
	}
	if v := strings.TrimSpace(inputs[fieldLast].Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return model.StatsConfig{}, fmt.Errorf("last must be >= 0")
		}
		cfg.Last = n
	}
	cfg.CurveWindow = 1
	if v := strings.TrimSpace(inputs[fieldWindow].Value()); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return model.StatsConfig{}, fmt.Errorf("curve window must be > 0")
		}
		cfg.CurveWindow = n
	}
	return cfg, nil
}

func renderOverview(r stats.Report, window, width int) string {
	s := r.Summary
	cards := []string{
		metricCard("Level", fmt.Sprintf("%d", s.Level)),
		metricCard("XP", fmt.Sprintf("%d/%d", s.XP, s.NextLevelXP)),
		metricCard("Streak", fmt.Sprintf("%dd", s.Streak)),
		metricCard("Runs", fmt.Sprintf("%d", s.Runs)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", s.AvgWPM)),
		metricCard("Best WPM", fmt.Sprintf("%d", s.BestWPM)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", s.AvgAccuracy)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[:3]...)
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3:]...)
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	if len(r.Runs) == 0 {
		return summary + "\n\nNo runs found."
	}
	var buf bytes.Buffer
	if err := stats.RenderCurves(&buf, r.Runs, window, width); err != nil {
		return summary + "\n\n" + fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func newKeyTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Key", Width: 8},
			{Title: "Finger", Width: 13},
			{Title: "Mistakes", Width: 9},
			{Title: "Runs", Width: 6},
		}),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func keyRows(aggs []model.KeyAggregate) []table.Row {
	cells := stats.KeyRows(stats.TopKeys(aggs, 0))
	rows := make([]table.Row, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, table.Row(c))
	}
	return rows
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	return input
}
