// Package tui is the terminal dashboard. The same model runs locally, against
// a remote API, or inside an SSH session.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"levelup/internal/models"
)

const (
	refreshInterval = 30 * time.Second
	meterWidth      = 20
)

type Backend interface {
	Dashboard(ctx context.Context) (models.Dashboard, error)
	ToggleHabit(ctx context.Context, id string) (models.ToggleResult, error)
	CompleteObjective(ctx context.Context, id string) (models.CompleteResult, error)
	RegenerateObjectives(ctx context.Context) ([]models.DailyObjective, error)
}

type styles struct {
	title  lipgloss.Style
	level  lipgloss.Style
	meter  lipgloss.Style
	muted  lipgloss.Style
	done   lipgloss.Style
	cursor lipgloss.Style
	status lipgloss.Style
	err    lipgloss.Style
	border lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("31")),
		level:  r.NewStyle().Foreground(lipgloss.Color("35")),
		meter:  r.NewStyle().Foreground(lipgloss.Color("35")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("8")),
		done:   r.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8")),
		cursor: r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		status: r.NewStyle().Foreground(lipgloss.Color("42")),
		err:    r.NewStyle().Foreground(lipgloss.Color("196")),
		border: r.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
	}
}

type Model struct {
	ctx     context.Context
	backend Backend
	logger  *log.Logger
	styles  styles

	width    int
	height   int
	viewport viewport.Model
	ready    bool

	dash   models.Dashboard
	loaded bool
	cursor int
	busy   bool
	status string
	err    error
}

func New(ctx context.Context, backend Backend, renderer *lipgloss.Renderer, logger *log.Logger) Model {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return Model{
		ctx:     ctx,
		backend: backend,
		logger:  logger.WithPrefix("tui"),
		styles:  newStyles(renderer),
	}
}

type dashboardMsg struct{ dash models.Dashboard }

type actionMsg struct{ status string }

type errMsg struct{ err error }

type tickMsg struct{}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m Model) fetch() tea.Cmd {
	return func() tea.Msg {
		d, err := m.backend.Dashboard(m.ctx)
		if err != nil {
			return errMsg{fmt.Errorf("error loading dashboard: %w", err)}
		}
		return dashboardMsg{d}
	}
}

func (m Model) toggle(h models.Habit) tea.Cmd {
	return func() tea.Msg {
		res, err := m.backend.ToggleHabit(m.ctx, h.ID)
		if err != nil {
			return errMsg{fmt.Errorf("error toggling %q: %w", h.Name, err)}
		}
		status := fmt.Sprintf("%s: not done", h.Name)
		if res.Habit.Completed {
			status = fmt.Sprintf("%s: done, +%d XP", h.Name, res.XPAwarded)
		}
		if res.LevelUp {
			status += fmt.Sprintf(" · level %d!", res.Profile.Level)
		}
		return actionMsg{status}
	}
}

func (m Model) complete(o models.DailyObjective) tea.Cmd {
	return func() tea.Msg {
		res, err := m.backend.CompleteObjective(m.ctx, o.ID)
		if err != nil {
			return errMsg{fmt.Errorf("error completing objective: %w", err)}
		}
		if res.AlreadyCompleted {
			return actionMsg{"objective already completed"}
		}
		status := fmt.Sprintf("objective completed, +%d XP", res.XPAwarded)
		if res.LevelUp {
			status += fmt.Sprintf(" · level %d!", res.Profile.Level)
		}
		return actionMsg{status}
	}
}

func (m Model) regenerate() tea.Cmd {
	return func() tea.Msg {
		if _, err := m.backend.RegenerateObjectives(m.ctx); err != nil {
			return errMsg{fmt.Errorf("error generating objectives: %w", err)}
		}
		return actionMsg{"new objectives"}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetch(), tick())
}

// items is the number of selectable rows: habits first, then objectives.
func (m Model) items() int {
	return len(m.dash.Habits) + len(m.dash.Objectives)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < m.items()-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case " ", "enter", "x":
			if cmd := m.activate(); cmd != nil {
				m.busy = true
				cmds = append(cmds, cmd)
			}
		case "g":
			if !m.busy {
				m.busy = true
				m.status = "asking the coach..."
				cmds = append(cmds, m.regenerate())
			}
		case "r":
			cmds = append(cmds, m.fetch())
		}
	case dashboardMsg:
		m.dash = msg.dash
		m.loaded = true
		m.err = nil
		if n := m.items(); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
	case actionMsg:
		m.busy = false
		m.status = msg.status
		m.err = nil
		cmds = append(cmds, m.fetch())
	case errMsg:
		m.busy = false
		m.err = msg.err
		m.logger.Error("dashboard error", "err", msg.err)
	case tickMsg:
		cmds = append(cmds, m.fetch(), tick())
	}

	if m.ready {
		m.viewport.SetContent(m.renderContent())
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m Model) activate() tea.Cmd {
	if m.busy || m.items() == 0 {
		return nil
	}
	if m.cursor < len(m.dash.Habits) {
		return m.toggle(m.dash.Habits[m.cursor])
	}
	o := m.dash.Objectives[m.cursor-len(m.dash.Habits)]
	if o.Completed {
		return nil
	}
	return m.complete(o)
}

func (m Model) renderMeter(progress int) string {
	filled := progress * meterWidth / 100
	return m.styles.meter.Render(strings.Repeat("█", filled)) +
		m.styles.muted.Render(strings.Repeat("░", meterWidth-filled))
}

func (m Model) renderContent() string {
	if !m.loaded {
		if m.err != nil {
			return m.styles.err.Render(m.err.Error())
		}
		return "loading..."
	}

	d := m.dash
	title := m.styles.title.Render("LevelUp · " + d.Profile.Name)
	level := m.styles.level.Render(fmt.Sprintf("Level %d %s · %d XP · streak %d",
		d.Level.Level, d.Level.Title, d.Profile.XP, d.Profile.Streak))
	meter := fmt.Sprintf("%s %d XP to next level", m.renderMeter(d.Level.Progress), d.Level.XPToNextLevel)

	habitRows := make([][]string, 0, len(d.Habits))
	for i, h := range d.Habits {
		name := h.Name
		if h.Completed {
			name = m.styles.done.Render(name)
		}
		habitRows = append(habitRows, []string{m.marker(i), check(h.Completed), name, h.Category, fmt.Sprintf("%d", h.Streak)})
	}
	habitTable := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("", "", "Habit", "Category", "Streak").
		Rows(habitRows...).
		Render()
	if len(d.Habits) == 0 {
		habitTable = m.styles.muted.Render("no habits yet")
	}

	objRows := make([][]string, 0, len(d.Objectives))
	for i, o := range d.Objectives {
		text := o.Text
		if o.Completed {
			text = m.styles.done.Render(text)
		}
		objRows = append(objRows, []string{m.marker(len(d.Habits) + i), check(o.Completed), text, fmt.Sprintf("+%d XP", o.XPReward)})
	}
	objTable := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("", "", "Objective", "Reward").
		Rows(objRows...).
		Render()

	footer := m.styles.muted.Render("j/k move · space toggle · g new objectives · r refresh · q quit")
	if m.err != nil {
		footer = m.styles.err.Render(m.err.Error()) + "\n" + footer
	} else if m.status != "" {
		footer = m.styles.status.Render(m.status) + "\n" + footer
	}

	body := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		level,
		meter,
		"",
		m.styles.muted.Render(d.Motivation),
		"",
		habitTable,
		objTable,
		footer,
	)
	return m.styles.border.Render(body)
}

func (m Model) marker(i int) string {
	if i == m.cursor {
		return m.styles.cursor.Render(">")
	}
	return " "
}

func check(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.viewport.View()
}
