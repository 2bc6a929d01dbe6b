package progression

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"levelup/internal/models"
)

// DateKey formats t as the calendar day used in Habit.CompletedDates.
func DateKey(t time.Time) string {
	return t.Format(models.DateLayout)
}

func NewHabit(name, category string, now time.Time) (models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Habit{}, models.ErrEmptyHabitName
	}
	cat := models.Category(strings.ToLower(strings.TrimSpace(category)))
	if !cat.IsValid() {
		cat = models.CategoryHealth
	}
	return models.Habit{
		ID:             uuid.NewString(),
		Name:           name,
		Category:       string(cat),
		CompletedDates: []string{},
		CreatedAt:      now,
	}, nil
}

// ToggleHabitCompletion flips the habit's completion for today. It returns
// the XP earned by the flip: HabitXPReward on incomplete -> complete, zero on
// the way back. XP is never revoked.
func ToggleHabitCompletion(h models.Habit, today string) (models.Habit, int) {
	dates := slices.Clone(h.CompletedDates)
	if dates == nil {
		dates = []string{}
	}

	if !h.Completed {
		h.Completed = true
		if !slices.Contains(dates, today) {
			dates = append(dates, today)
		}
		h.CompletedDates = dates
		h.Streak++
		return h, HabitXPReward
	}

	h.Completed = false
	h.CompletedDates = slices.DeleteFunc(dates, func(d string) bool { return d == today })
	h.Streak = max(0, h.Streak-1)
	return h, 0
}

// SyncCompleted re-derives the "completed today" flag from CompletedDates.
func SyncCompleted(h models.Habit, today string) models.Habit {
	h.Completed = h.CompletedOn(today)
	return h
}

// RollingCompletionRate returns the percentage of the windowDays calendar
// days ending at ref (inclusive) that appear in dates.
func RollingCompletionRate(dates []string, windowDays int, ref time.Time) float64 {
	if windowDays <= 0 {
		return 0
	}
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	count := 0
	for i := 0; i < windowDays; i++ {
		if _, ok := set[DateKey(ref.AddDate(0, 0, -i))]; ok {
			count++
		}
	}
	return float64(count) / float64(windowDays) * 100
}
