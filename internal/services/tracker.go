package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"levelup/internal/models"
	"levelup/internal/progression"
	"levelup/internal/store"
)

var (
	ErrHabitNotFound     = errors.New("habit not found")
	ErrObjectiveNotFound = errors.New("objective not found")
)

const (
	DefaultProgressWindow = 7
	DefaultStatsDays      = 7
	TopHabitsCount        = 3
)

type ObjectiveCoach interface {
	GenerateDailyObjectives(ctx context.Context, profile models.UserProfile) []string
	GenerateMotivationalMessage(ctx context.Context, stats models.MotivationStats) string
}

// Tracker owns the in-memory copy of every collection. Each mutation is
// written back to the store before the lock is released. The lock is never
// held across a coach call.
type Tracker struct {
	mu     sync.Mutex
	store  *store.Store
	coach  ObjectiveCoach
	logger *log.Logger
	now    func() time.Time

	loaded     bool
	day        string
	profile    models.UserProfile
	habits     []models.Habit
	objectives []models.DailyObjective
	motivation string

	// regenSeq fences objective regeneration: only the latest request may
	// install its batch.
	regenSeq uint64

	savedTotals *statsTotals
}

func NewTracker(st *store.Store, coach ObjectiveCoach, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	return &Tracker{
		store:  st,
		coach:  coach,
		logger: logger.WithPrefix("tracker"),
		now:    time.Now,
	}
}

// Load reads every collection and, when no objectives are stored, asks the
// coach for a first batch.
func (t *Tracker) Load(ctx context.Context) {
	t.mu.Lock()
	t.loadLocked(ctx)
	empty := len(t.objectives) == 0
	t.mu.Unlock()

	if empty {
		if _, err := t.RegenerateObjectives(ctx); err != nil {
			t.logger.Warn("initial objectives not generated", "err", err)
		}
	}
}

func (t *Tracker) loadLocked(ctx context.Context) {
	today := progression.DateKey(t.now())
	if !t.loaded {
		t.profile = t.store.Profile.Load(ctx)
		t.habits = t.store.Habits.Load(ctx)
		t.objectives = t.store.Objectives.Load(ctx)
		t.loaded = true
		t.day = ""
	}
	if t.day == today {
		return
	}

	changed := false
	for i, h := range t.habits {
		synced := progression.SyncCompleted(h, today)
		if synced.Completed != h.Completed {
			changed = true
		}
		t.habits[i] = synced
	}
	t.day = today
	if changed {
		t.store.Habits.Save(ctx, t.habits)
	}
}

func (t *Tracker) Dashboard(ctx context.Context) models.Dashboard {
	t.mu.Lock()
	t.loadLocked(ctx)
	motivation := t.motivation
	t.mu.Unlock()

	if motivation == "" {
		motivation = t.RefreshMotivation(ctx)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return models.Dashboard{
		Profile:    cloneProfile(t.profile),
		Level:      progression.LevelInfo(t.profile),
		Habits:     cloneHabits(t.habits),
		Objectives: slices.Clone(t.objectives),
		Motivation: motivation,
	}
}

func (t *Tracker) Profile(ctx context.Context) models.UserProfile {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked(ctx)
	return cloneProfile(t.profile)
}

// Habits lists habits, optionally restricted to one category.
func (t *Tracker) Habits(ctx context.Context, category string) []models.Habit {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked(ctx)

	if category == "" {
		return cloneHabits(t.habits)
	}
	out := []models.Habit{}
	for _, h := range t.habits {
		if strings.EqualFold(h.Category, category) {
			out = append(out, cloneHabit(h))
		}
	}
	return out
}

func (t *Tracker) Objectives(ctx context.Context) []models.DailyObjective {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked(ctx)
	return slices.Clone(t.objectives)
}

func (t *Tracker) AddHabit(ctx context.Context, name, category string) (models.Habit, error) {
	h, err := progression.NewHabit(name, category, t.now())
	if err != nil {
		return models.Habit{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked(ctx)

	t.habits = append(t.habits, h)
	t.store.Habits.Save(ctx, t.habits)
	t.logger.Info("habit added", "id", h.ID, "name", h.Name, "category", h.Category)
	return cloneHabit(h), nil
}

// ToggleHabit flips today's completion of the habit. XP is only awarded on
// the way to completed.
func (t *Tracker) ToggleHabit(ctx context.Context, id string) (models.ToggleResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked(ctx)

	i := slices.IndexFunc(t.habits, func(h models.Habit) bool { return h.ID == id })
	if i < 0 {
		return models.ToggleResult{}, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}

	h, xp := progression.ToggleHabitCompletion(t.habits[i], t.day)
	t.habits[i] = h
	t.store.Habits.Save(ctx, t.habits)

	before := t.profile.Level
	if xp > 0 {
		t.profile = progression.AwardXP(t.profile, xp)
		t.store.Profile.Save(ctx, t.profile)
	}

	return models.ToggleResult{
		Habit:     cloneHabit(h),
		Profile:   cloneProfile(t.profile),
		XPAwarded: xp,
		LevelUp:   t.profile.Level > before,
	}, nil
}

// HabitProgress returns the completion rate of a habit over the window days
// ending at ref. A non-positive window means DefaultProgressWindow, a zero ref
// means today. The result carries the window and day actually used.
func (t *Tracker) HabitProgress(ctx context.Context, id string, window int, ref time.Time) (models.HabitProgress, error) {
	if window <= 0 {
		window = DefaultProgressWindow
	}
	if ref.IsZero() {
		ref = t.now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked(ctx)

	i := slices.IndexFunc(t.habits, func(h models.Habit) bool { return h.ID == id })
	if i < 0 {
		return models.HabitProgress{}, fmt.Errorf("%w: %s", ErrHabitNotFound, id)
	}
	return models.HabitProgress{
		HabitID: id,
		Window:  window,
		Date:    progression.DateKey(ref),
		Rate:    progression.RollingCompletionRate(t.habits[i].CompletedDates, window, ref),
	}, nil
}

func (t *Tracker) CompleteObjective(ctx context.Context, id string) (models.CompleteResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked(ctx)

	i := slices.IndexFunc(t.objectives, func(o models.DailyObjective) bool { return o.ID == id })
	if i < 0 {
		return models.CompleteResult{}, fmt.Errorf("%w: %s", ErrObjectiveNotFound, id)
	}

	before := t.profile
	o, p, changed := progression.CompleteObjective(t.objectives[i], t.profile)
	if !changed {
		return models.CompleteResult{
			Objective:        o,
			Profile:          cloneProfile(t.profile),
			AlreadyCompleted: true,
		}, nil
	}

	t.objectives[i] = o
	t.profile = p
	t.store.Objectives.Save(ctx, t.objectives)
	t.store.Profile.Save(ctx, t.profile)

	return models.CompleteResult{
		Objective: o,
		Profile:   cloneProfile(p),
		XPAwarded: p.XP - before.XP,
		LevelUp:   p.Level > before.Level,
	}, nil
}

// RegenerateObjectives replaces the current batch with a fresh one from the
// coach. When a newer regeneration started in the meantime, this result is
// dropped and the current batch is returned instead.
func (t *Tracker) RegenerateObjectives(ctx context.Context) ([]models.DailyObjective, error) {
	t.mu.Lock()
	t.loadLocked(ctx)
	t.regenSeq++
	seq := t.regenSeq
	profile := cloneProfile(t.profile)
	t.mu.Unlock()

	texts := t.coach.GenerateDailyObjectives(ctx, profile)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("error regenerating objectives: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if seq != t.regenSeq {
		t.logger.Debug("dropping stale objective batch", "seq", seq, "latest", t.regenSeq)
		return slices.Clone(t.objectives), nil
	}

	t.objectives = progression.GenerateObjectiveBatch(texts, t.now())
	t.store.Objectives.Save(ctx, t.objectives)
	return slices.Clone(t.objectives), nil
}

func (t *Tracker) RefreshMotivation(ctx context.Context) string {
	t.mu.Lock()
	t.loadLocked(ctx)
	stats := models.MotivationStats{
		Level:  t.profile.Level,
		XP:     t.profile.XP,
		Streak: t.profile.Streak,
	}
	t.mu.Unlock()

	msg := t.coach.GenerateMotivationalMessage(ctx, stats)

	t.mu.Lock()
	t.motivation = msg
	t.mu.Unlock()
	return msg
}

func (t *Tracker) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.UserProfile, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked(ctx)

	p := cloneProfile(t.profile)
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return models.UserProfile{}, models.ErrEmptyProfileName
		}
		p.Name = name
	}
	if update.Notifications != nil {
		p.Preferences.Notifications = *update.Notifications
	}
	if update.Difficulty != nil {
		d, err := models.ParseDifficulty(string(*update.Difficulty))
		if err != nil {
			return models.UserProfile{}, err
		}
		p.Preferences.Difficulty = d
	}
	if update.Categories != nil {
		cats := make([]string, 0, len(update.Categories))
		for _, c := range update.Categories {
			cat := models.Category(strings.ToLower(strings.TrimSpace(c)))
			if !cat.IsValid() {
				return models.UserProfile{}, fmt.Errorf("%w: %q", models.ErrInvalidCategory, c)
			}
			if !slices.Contains(cats, string(cat)) {
				cats = append(cats, string(cat))
			}
		}
		p.Preferences.Categories = cats
	}

	t.profile = p
	t.store.Profile.Save(ctx, t.profile)
	return cloneProfile(p), nil
}

// Stats summarises the last days calendar days. A snapshot of the totals is
// kept under the stats key and rewritten only when they change.
func (t *Tracker) Stats(ctx context.Context, days int) models.StatsSummary {
	if days <= 0 {
		days = DefaultStatsDays
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.loadLocked(ctx)

	now := t.now()
	summary := models.StatsSummary{
		Level:            t.profile.Level,
		TotalXP:          t.profile.TotalXP,
		Streak:           t.profile.Streak,
		Weekly:           progression.WeeklyStats(t.habits, now, days),
		TopHabits:        cloneHabits(progression.TopHabits(t.habits, TopHabitsCount)),
		TotalCompletions: progression.TotalCompletions(t.habits),
		AverageStreak:    progression.AverageStreak(t.habits),
		CompletedToday:   progression.CompletedOn(t.habits, t.day),
		BestStreak:       progression.BestStreak(t.habits),
		SuccessRate:      progression.SuccessRate(t.habits, progression.SuccessRateDays),
		ActiveHabits:     len(t.habits),
	}

	totals := statsTotals{
		completions:   summary.TotalCompletions,
		averageStreak: summary.AverageStreak,
		bestStreak:    summary.BestStreak,
		successRate:   summary.SuccessRate,
		habits:        summary.ActiveHabits,
	}
	if t.savedTotals != nil && *t.savedTotals == totals {
		return summary
	}
	t.store.Stats.Save(ctx, models.Stats{
		"updatedAt":        now.Format(time.RFC3339),
		"totalCompletions": totals.completions,
		"averageStreak":    totals.averageStreak,
		"bestStreak":       totals.bestStreak,
		"successRate":      totals.successRate,
		"habitCount":       totals.habits,
	})
	t.savedTotals = &totals
	return summary
}

// statsTotals is the part of the stats snapshot that decides whether it needs
// rewriting.
type statsTotals struct {
	completions   int
	averageStreak int
	bestStreak    int
	successRate   int
	habits        int
}

func cloneHabit(h models.Habit) models.Habit {
	h.CompletedDates = slices.Clone(h.CompletedDates)
	if h.CompletedDates == nil {
		h.CompletedDates = []string{}
	}
	return h
}

func cloneHabits(habits []models.Habit) []models.Habit {
	out := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		out = append(out, cloneHabit(h))
	}
	return out
}

func cloneProfile(p models.UserProfile) models.UserProfile {
	p.Preferences.Categories = slices.Clone(p.Preferences.Categories)
	return p
}
