package tui

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"levelup/internal/models"
)

type fakeBackend struct {
	dash        models.Dashboard
	dashErr     error
	toggled     []string
	completed   []string
	regenerated int
}

func (f *fakeBackend) Dashboard(context.Context) (models.Dashboard, error) {
	return f.dash, f.dashErr
}

func (f *fakeBackend) ToggleHabit(_ context.Context, id string) (models.ToggleResult, error) {
	f.toggled = append(f.toggled, id)
	return models.ToggleResult{
		Habit:     models.Habit{ID: id, Completed: true},
		Profile:   models.UserProfile{Level: 2},
		XPAwarded: 10,
		LevelUp:   true,
	}, nil
}

func (f *fakeBackend) CompleteObjective(_ context.Context, id string) (models.CompleteResult, error) {
	f.completed = append(f.completed, id)
	return models.CompleteResult{XPAwarded: 20}, nil
}

func (f *fakeBackend) RegenerateObjectives(context.Context) ([]models.DailyObjective, error) {
	f.regenerated++
	return nil, nil
}

func testDashboard() models.Dashboard {
	return models.Dashboard{
		Profile:    models.UserProfile{Name: "Ada", Level: 1, XP: 40},
		Level:      models.LevelInfo{Level: 1, Title: "Novice", Progress: 40, XPToNextLevel: 60},
		Motivation: "Courage",
		Habits: []models.Habit{
			{ID: "h1", Name: "Run", Category: "health"},
			{ID: "h2", Name: "Read", Category: "mindset", Completed: true},
		},
		Objectives: []models.DailyObjective{
			{ID: "o1", Text: "Walk", XPReward: 15},
			{ID: "o2", Text: "Call", XPReward: 20, Completed: true},
		},
	}
}

func newTestModel(t *testing.T, b Backend) Model {
	t.Helper()
	m := New(context.Background(), b, lipgloss.NewRenderer(&bytes.Buffer{}), log.New(&bytes.Buffer{}))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return next.(Model)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, b *fakeBackend) Model {
	t.Helper()
	m := newTestModel(t, b)
	msg := m.fetch()()
	m, _ = update(t, m, msg)
	return m
}

func TestRendersDashboard(t *testing.T) {
	m := loaded(t, &fakeBackend{dash: testDashboard()})
	view := m.View()
	for _, want := range []string{"Ada", "Level 1 Novice", "60 XP to next level", "Courage", "Run", "Read", "Walk", "+15 XP"} {
		assert.Contains(t, view, want)
	}
}

func TestLoadingAndErrorStates(t *testing.T) {
	m := New(context.Background(), &fakeBackend{}, nil, log.New(&bytes.Buffer{}))
	assert.Equal(t, "loading...", m.View())

	b := &fakeBackend{dashErr: errors.New("unreachable")}
	m = newTestModel(t, b)
	m, _ = update(t, m, m.fetch()())
	assert.Contains(t, m.View(), "unreachable")
}

func TestCursorMovement(t *testing.T) {
	m := loaded(t, &fakeBackend{dash: testDashboard()})
	assert.Equal(t, 0, m.cursor)

	m, _ = update(t, m, key("k"))
	assert.Equal(t, 0, m.cursor, "cursor stops at the top")

	for i := 0; i < 10; i++ {
		m, _ = update(t, m, key("j"))
	}
	assert.Equal(t, 3, m.cursor, "cursor stops at the last objective")
}

func TestToggleHabit(t *testing.T) {
	b := &fakeBackend{dash: testDashboard()}
	m := loaded(t, b)

	m, cmd := update(t, m, key(" "))
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	// The returned batch also carries the viewport command; run the action
	// directly.
	msg := m.toggle(m.dash.Habits[0])()
	assert.Equal(t, []string{"h1"}, b.toggled)

	m, _ = update(t, m, msg)
	assert.False(t, m.busy)
	assert.Contains(t, m.status, "+10 XP")
	assert.Contains(t, m.status, "level 2")
}

func TestCompleteObjectiveSkipsCompleted(t *testing.T) {
	b := &fakeBackend{dash: testDashboard()}
	m := loaded(t, b)

	m.cursor = 3
	assert.Nil(t, m.activate(), "completed objectives are not resubmitted")

	m.cursor = 2
	cmd := m.activate()
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, []string{"o1"}, b.completed)
	assert.Equal(t, actionMsg{"objective completed, +20 XP"}, msg)
}

func TestBusyBlocksActions(t *testing.T) {
	b := &fakeBackend{dash: testDashboard()}
	m := loaded(t, b)
	m.busy = true
	assert.Nil(t, m.activate())

	m, _ = update(t, m, key("g"))
	assert.Equal(t, 0, b.regenerated)
}

func TestRegenerate(t *testing.T) {
	b := &fakeBackend{dash: testDashboard()}
	m := loaded(t, b)

	m, _ = update(t, m, key("g"))
	assert.True(t, m.busy)
	assert.Equal(t, "asking the coach...", m.status)

	msg := m.regenerate()()
	assert.Equal(t, 1, b.regenerated)
	m, _ = update(t, m, msg)
	assert.Equal(t, "new objectives", m.status)
}

func TestCursorClampedWhenListShrinks(t *testing.T) {
	b := &fakeBackend{dash: testDashboard()}
	m := loaded(t, b)
	m.cursor = 3

	b.dash.Objectives = nil
	m, _ = update(t, m, m.fetch()())
	assert.Equal(t, 1, m.cursor)
}

func TestQuit(t *testing.T) {
	m := loaded(t, &fakeBackend{dash: testDashboard()})
	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
