package progression

import (
	"math"
	"slices"
	"time"

	"levelup/internal/models"
)

// SuccessRateDays is the span SuccessRate measures against.
const SuccessRateDays = 30

// WeeklyStats returns one entry per day for the days ending at ref, oldest
// first. Percentage is the share of habits completed on that day.
func WeeklyStats(habits []models.Habit, ref time.Time, days int) []models.DayStat {
	if days <= 0 {
		return []models.DayStat{}
	}
	out := make([]models.DayStat, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := DateKey(ref.AddDate(0, 0, -i))
		done := CompletedOn(habits, date)
		pct := 0.0
		if len(habits) > 0 {
			pct = float64(done) / float64(len(habits)) * 100
		}
		out = append(out, models.DayStat{Date: date, Completed: done, Percentage: pct})
	}
	return out
}

func CompletedOn(habits []models.Habit, date string) int {
	n := 0
	for _, h := range habits {
		if h.CompletedOn(date) {
			n++
		}
	}
	return n
}

// TopHabits returns up to n habits with the longest streaks. The input is
// not reordered.
func TopHabits(habits []models.Habit, n int) []models.Habit {
	sorted := slices.Clone(habits)
	slices.SortStableFunc(sorted, func(a, b models.Habit) int { return b.Streak - a.Streak })
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []models.Habit{}
	}
	return sorted
}

func TotalCompletions(habits []models.Habit) int {
	total := 0
	for _, h := range habits {
		total += len(h.CompletedDates)
	}
	return total
}

func AverageStreak(habits []models.Habit) int {
	if len(habits) == 0 {
		return 0
	}
	sum := 0
	for _, h := range habits {
		sum += h.Streak
	}
	return int(math.Round(float64(sum) / float64(len(habits))))
}

func BestStreak(habits []models.Habit) int {
	best := 0
	for _, h := range habits {
		best = max(best, h.Streak)
	}
	return best
}

// SuccessRate is every recorded completion as a rounded percentage of one
// completion per habit per day over days. No habits or days gives 0.
func SuccessRate(habits []models.Habit, days int) int {
	if len(habits) == 0 || days <= 0 {
		return 0
	}
	possible := float64(len(habits) * days)
	return int(math.Round(float64(TotalCompletions(habits)) / possible * 100))
}
