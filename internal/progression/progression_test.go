package progression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"levelup/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var refDay = time.Date(2024, time.March, 10, 9, 30, 0, 0, time.UTC)

func newTestHabit(t *testing.T) models.Habit {
	t.Helper()
	h, err := NewHabit("Drink water", "health", refDay)
	require.NoError(t, err)
	return h
}

// ============================================================
// XP and levels
// ============================================================

func TestAwardXP(t *testing.T) {
	base := models.DefaultUserProfile()
	base.XP = 40
	base.TotalXP = 240
	base.Level = LevelForXP(base.XP)

	for _, amount := range []int{0, 1, 10, 59, 60, 61, 160, 1000} {
		got := AwardXP(base, amount)
		assert.Equal(t, base.TotalXP+amount, got.TotalXP, "amount=%d", amount)
		assert.Equal(t, base.XP+amount, got.XP, "amount=%d", amount)
		assert.Equal(t, got.XP/100+1, got.Level, "amount=%d", amount)
	}
}

func TestAwardXPIgnoresNegative(t *testing.T) {
	p := AwardXP(models.DefaultUserProfile(), -20)
	assert.Equal(t, 0, p.XP)
	assert.Equal(t, 0, p.TotalXP)
	assert.Equal(t, 1, p.Level)
}

func TestLevelUpAcrossBoundary(t *testing.T) {
	p := models.DefaultUserProfile()
	p.XP = 95
	p.TotalXP = 95
	o := models.DailyObjective{ID: "o1", XPReward: 15}

	_, p, ok := CompleteObjective(o, p)
	require.True(t, ok)
	assert.Equal(t, 110, p.XP)
	assert.Equal(t, 2, p.Level)
}

func TestLevelMeters(t *testing.T) {
	assert.Equal(t, 0, LevelProgress(0))
	assert.Equal(t, 100, XPToNextLevel(0))
	assert.Equal(t, 10, LevelProgress(210))
	assert.Equal(t, 90, XPToNextLevel(210))
	assert.Equal(t, 3, LevelForXP(210))

	info := LevelInfo(models.UserProfile{XP: 1234})
	assert.Equal(t, 13, info.Level)
	assert.Equal(t, "Explorateur", info.Title)
	assert.Equal(t, 34, info.Progress)
}

func TestLevelTitle(t *testing.T) {
	cases := map[int]string{
		1: "Novice", 4: "Novice", 5: "Apprenti", 10: "Explorateur",
		15: "Guerrier", 25: "Sage", 49: "Sage", 50: "Maître Zen",
	}
	for level, want := range cases {
		assert.Equal(t, want, LevelTitle(level), "level %d", level)
	}
}

// ============================================================
// Habits
// ============================================================

func TestNewHabit(t *testing.T) {
	h, err := NewHabit("  Read  ", "MINDSET", refDay)
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, "Read", h.Name)
	assert.Equal(t, "mindset", h.Category)
	assert.Equal(t, 0, h.Streak)
	assert.False(t, h.Completed)
	assert.Empty(t, h.CompletedDates)
	assert.Equal(t, refDay, h.CreatedAt)

	other, err := NewHabit("Read", "juggling", refDay)
	require.NoError(t, err)
	assert.Equal(t, "health", other.Category)
	assert.NotEqual(t, h.ID, other.ID)

	_, err = NewHabit("   ", "health", refDay)
	assert.ErrorIs(t, err, models.ErrEmptyHabitName)
}

func TestToggleHabitCompletion(t *testing.T) {
	h := newTestHabit(t)
	today := DateKey(refDay)

	done, xp := ToggleHabitCompletion(h, today)
	assert.True(t, done.Completed)
	assert.Equal(t, 1, done.Streak)
	assert.Equal(t, []string{today}, done.CompletedDates)
	assert.Equal(t, HabitXPReward, xp)

	undone, xp := ToggleHabitCompletion(done, today)
	assert.False(t, undone.Completed)
	assert.Equal(t, 0, undone.Streak)
	assert.Empty(t, undone.CompletedDates)
	assert.Equal(t, 0, xp, "uncompleting never revokes or awards XP")
}

func TestToggleRoundTripRestoresState(t *testing.T) {
	h := newTestHabit(t)
	h.Streak = 4
	h.CompletedDates = []string{"2024-03-07", "2024-03-08", "2024-03-09"}
	original := append([]string(nil), h.CompletedDates...)

	on, _ := ToggleHabitCompletion(h, "2024-03-10")
	off, _ := ToggleHabitCompletion(on, "2024-03-10")

	assert.Equal(t, 4, off.Streak)
	assert.ElementsMatch(t, original, off.CompletedDates)
	assert.Equal(t, original, h.CompletedDates, "input habit must not be mutated")
}

func TestToggleAlwaysFlips(t *testing.T) {
	h := newTestHabit(t)
	today := DateKey(refDay)
	state := h
	for i := 0; i < 5; i++ {
		next, _ := ToggleHabitCompletion(state, today)
		assert.NotEqual(t, state.Completed, next.Completed)
		state = next
	}
}

func TestToggleDoesNotDuplicateDate(t *testing.T) {
	h := newTestHabit(t)
	today := DateKey(refDay)
	h.CompletedDates = []string{today}

	on, xp := ToggleHabitCompletion(h, today)
	assert.Equal(t, []string{today}, on.CompletedDates)
	assert.Equal(t, HabitXPReward, xp)
}

func TestToggleStreakFloorsAtZero(t *testing.T) {
	h := newTestHabit(t)
	h.Completed = true

	off, _ := ToggleHabitCompletion(h, DateKey(refDay))
	assert.Equal(t, 0, off.Streak)
}

func TestSyncCompleted(t *testing.T) {
	h := newTestHabit(t)
	h.Completed = true
	h.CompletedDates = []string{"2024-03-09"}

	assert.False(t, SyncCompleted(h, "2024-03-10").Completed)
	assert.True(t, SyncCompleted(h, "2024-03-09").Completed)
}

func TestRollingCompletionRate(t *testing.T) {
	var everyDay []string
	for i := 0; i < 7; i++ {
		everyDay = append(everyDay, DateKey(refDay.AddDate(0, 0, -i)))
	}
	assert.Equal(t, 100.0, RollingCompletionRate(everyDay, 7, refDay))
	assert.Equal(t, 0.0, RollingCompletionRate(nil, 7, refDay))

	outside := []string{DateKey(refDay.AddDate(0, 0, -7)), DateKey(refDay.AddDate(0, 0, 1))}
	assert.Equal(t, 0.0, RollingCompletionRate(outside, 7, refDay))

	partial := []string{DateKey(refDay), DateKey(refDay.AddDate(0, 0, -6))}
	assert.InDelta(t, 2.0/7.0*100, RollingCompletionRate(partial, 7, refDay), 1e-9)

	assert.Equal(t, 0.0, RollingCompletionRate(everyDay, 0, refDay))
}

// ============================================================
// Objectives
// ============================================================

func TestGenerateObjectiveBatch(t *testing.T) {
	batch := GenerateObjectiveBatch([]string{"a", "b", "c"}, refDay)
	require.Len(t, batch, 3)

	ids := map[string]bool{}
	for i, o := range batch {
		assert.Equal(t, []string{"a", "b", "c"}[i], o.Text)
		assert.Equal(t, []int{15, 20, 25}[i], o.XPReward)
		assert.False(t, o.Completed)
		assert.Equal(t, refDay, o.CreatedAt)
		ids[o.ID] = true
	}
	assert.Len(t, ids, 3)

	assert.Empty(t, GenerateObjectiveBatch(nil, refDay))
}

func TestCompleteObjectiveIsIdempotent(t *testing.T) {
	p := models.DefaultUserProfile()
	o := GenerateObjectiveBatch([]string{"x"}, refDay)[0]

	o, p, ok := CompleteObjective(o, p)
	require.True(t, ok)
	assert.True(t, o.Completed)
	assert.Equal(t, 15, p.XP)
	assert.Equal(t, 15, p.TotalXP)

	o2, p2, ok := CompleteObjective(o, p)
	assert.False(t, ok)
	assert.Equal(t, o, o2)
	assert.Equal(t, p, p2)
}

// Every objective completion bumps the profile streak, whichever surface
// triggers it.
func TestCompleteObjectiveIncrementsProfileStreak(t *testing.T) {
	p := models.DefaultUserProfile()
	p.Streak = 2
	_, p, _ = CompleteObjective(models.DailyObjective{ID: "o", XPReward: 20}, p)
	assert.Equal(t, 3, p.Streak)
}

func TestObjectiveDifficulty(t *testing.T) {
	assert.Equal(t, models.DifficultyEasy, ObjectiveDifficulty(15))
	assert.Equal(t, models.DifficultyMedium, ObjectiveDifficulty(20))
	assert.Equal(t, models.DifficultyHard, ObjectiveDifficulty(25))
}

// ============================================================
// Stats
// ============================================================

func TestWeeklyStats(t *testing.T) {
	a := newTestHabit(t)
	a.CompletedDates = []string{"2024-03-10", "2024-03-08"}
	b := newTestHabit(t)
	b.CompletedDates = []string{"2024-03-10"}

	stats := WeeklyStats([]models.Habit{a, b}, refDay, 7)
	require.Len(t, stats, 7)
	assert.Equal(t, "2024-03-04", stats[0].Date)
	assert.Equal(t, "2024-03-10", stats[6].Date)
	assert.Equal(t, 2, stats[6].Completed)
	assert.Equal(t, 100.0, stats[6].Percentage)
	assert.Equal(t, 1, stats[4].Completed)
	assert.Equal(t, 50.0, stats[4].Percentage)

	empty := WeeklyStats(nil, refDay, 7)
	require.Len(t, empty, 7)
	assert.Equal(t, 0.0, empty[6].Percentage)
}

func TestTopHabitsAndTotals(t *testing.T) {
	mk := func(name string, streak int, dates ...string) models.Habit {
		h := newTestHabit(t)
		h.Name = name
		h.Streak = streak
		h.CompletedDates = dates
		return h
	}
	habits := []models.Habit{
		mk("a", 1, "2024-03-10"),
		mk("b", 5, "2024-03-09", "2024-03-10"),
		mk("c", 3),
		mk("d", 5),
	}

	top := TopHabits(habits, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"b", "d", "c"}, []string{top[0].Name, top[1].Name, top[2].Name})
	assert.Equal(t, "a", habits[0].Name, "input order is preserved")

	assert.Equal(t, 3, TotalCompletions(habits))
	assert.Equal(t, 4, AverageStreak(habits)) // 14/4 = 3.5 rounds to 4
	assert.Equal(t, 2, CompletedOn(habits, "2024-03-10"))
	assert.Equal(t, 0, AverageStreak(nil))
	assert.Empty(t, TopHabits(nil, 3))
}

func TestBestStreakAndSuccessRate(t *testing.T) {
	habits := []models.Habit{
		{Name: "a", Streak: 2, CompletedDates: []string{"2024-03-09", "2024-03-10"}},
		{Name: "b", Streak: 7, CompletedDates: []string{"2024-03-10"}},
		{Name: "c", Streak: 0},
		{Name: "d", Streak: 4},
	}
	assert.Equal(t, 7, BestStreak(habits))
	assert.Equal(t, 3, SuccessRate(habits, SuccessRateDays)) // 3/120 = 2.5% rounds to 3
	assert.Equal(t, 25, SuccessRate(habits[:1], 8))

	assert.Equal(t, 0, BestStreak(nil))
	assert.Equal(t, 0, SuccessRate(nil, SuccessRateDays))
	assert.Equal(t, 0, SuccessRate(habits, 0))
}
