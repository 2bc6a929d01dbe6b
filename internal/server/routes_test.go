package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"levelup/internal/database"
	"levelup/internal/models"
	"levelup/internal/progression"
	"levelup/internal/services"
	"levelup/internal/store"
)

type stubCoach struct{}

func (stubCoach) GenerateDailyObjectives(context.Context, models.UserProfile) []string {
	return []string{"Walk", "Stretch", "Read"}
}

func (stubCoach) GenerateMotivationalMessage(context.Context, models.MotivationStats) string {
	return "Bravo"
}

func newTestHandler(t *testing.T) (http.Handler, *services.Tracker) {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := log.New(&bytes.Buffer{})
	tracker := services.NewTracker(store.New(db, logger), stubCoach{}, logger)
	tracker.Load(context.Background())
	return New(8080, db, tracker, logger).RegisterRoutes(), tracker
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	health := decode[map[string]string](t, rec)
	assert.Equal(t, "up", health["status"])
	assert.NotEmpty(t, health["keys"])
}

func TestDashboard(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := do(t, h, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	d := decode[models.Dashboard](t, rec)
	assert.Equal(t, "Utilisateur", d.Profile.Name)
	assert.Equal(t, "Bravo", d.Motivation)
	assert.Len(t, d.Objectives, 3)
	assert.NotNil(t, d.Habits)
}

func TestHabitLifecycle(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPost, "/api/habits", `{"name":"Run","category":"health"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	habit := decode[models.Habit](t, rec)
	assert.Equal(t, "Run", habit.Name)

	rec = do(t, h, http.MethodPost, "/api/habits/"+habit.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.ToggleResult](t, rec)
	assert.True(t, res.Habit.Completed)
	assert.Equal(t, 10, res.XPAwarded)

	rec = do(t, h, http.MethodGet, "/api/habits?category=health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Habit](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/habits?category=social", "")
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/habits/"+habit.ID+"/progress?window=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decode[models.HabitProgress](t, rec)
	assert.Equal(t, 100.0, progress.Rate)
	assert.Equal(t, 1, progress.Window)
	assert.Equal(t, habit.ID, progress.HabitID)
	assert.Equal(t, progression.DateKey(time.Now()), progress.Date)

	rec = do(t, h, http.MethodGet, "/api/habits/"+habit.ID+"/progress?window=2&date=2001-01-02", "")
	require.Equal(t, http.StatusOK, rec.Code)
	progress = decode[models.HabitProgress](t, rec)
	assert.Equal(t, "2001-01-02", progress.Date)
	assert.Equal(t, 2, progress.Window)
	assert.Equal(t, 0.0, progress.Rate)

	rec = do(t, h, http.MethodGet, "/api/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.StatsSummary](t, rec)
	assert.Equal(t, 1, stats.ActiveHabits)
	assert.Equal(t, 1, stats.BestStreak)
	assert.Equal(t, 3, stats.SuccessRate) // 1/30
}

func TestHabitErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	cases := []struct {
		method, target, body string
		code                 int
	}{
		{http.MethodPost, "/api/habits", `{"name":"  "}`, http.StatusBadRequest},
		{http.MethodPost, "/api/habits", `not json`, http.StatusBadRequest},
		{http.MethodPost, "/api/habits/missing/toggle", "", http.StatusNotFound},
		{http.MethodGet, "/api/habits/missing/progress", "", http.StatusNotFound},
		{http.MethodGet, "/api/habits/x/progress?window=abc", "", http.StatusBadRequest},
		{http.MethodGet, "/api/habits/x/progress?date=10-03-2024", "", http.StatusBadRequest},
		{http.MethodPost, "/api/objectives/missing/complete", "", http.StatusNotFound},
		{http.MethodGet, "/api/stats?days=-1", "", http.StatusBadRequest},
		{http.MethodPatch, "/api/profile", `{"difficulty":"insane"}`, http.StatusBadRequest},
		{http.MethodPatch, "/api/profile", `{"categories":["cooking"]}`, http.StatusBadRequest},
		{http.MethodDelete, "/api/habits", "", http.StatusMethodNotAllowed},
	}
	for _, c := range cases {
		rec := do(t, h, c.method, c.target, c.body)
		assert.Equal(t, c.code, rec.Code, "%s %s", c.method, c.target)
		if c.code != http.StatusMethodNotAllowed {
			assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
		}
	}
}

func TestObjectives(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/objectives", "")
	objs := decode[[]models.DailyObjective](t, rec)
	require.Len(t, objs, 3)

	rec = do(t, h, http.MethodPost, "/api/objectives/"+objs[0].ID+"/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[models.CompleteResult](t, rec)
	assert.Equal(t, 15, res.XPAwarded)
	assert.Equal(t, 1, res.Profile.Streak)

	rec = do(t, h, http.MethodPost, "/api/objectives/"+objs[0].ID+"/complete", "")
	assert.True(t, decode[models.CompleteResult](t, rec).AlreadyCompleted)

	rec = do(t, h, http.MethodPost, "/api/objectives/generate", "")
	require.Equal(t, http.StatusOK, rec.Code)
	fresh := decode[[]models.DailyObjective](t, rec)
	require.Len(t, fresh, 3)
	assert.NotEqual(t, objs[0].ID, fresh[0].ID)
	assert.False(t, fresh[0].Completed)
}

func TestProfile(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodPatch, "/api/profile", `{"name":"Ada","difficulty":"hard"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[models.UserProfile](t, rec)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, models.DifficultyHard, p.Preferences.Difficulty)

	rec = do(t, h, http.MethodGet, "/api/profile", "")
	assert.Equal(t, p, decode[models.UserProfile](t, rec))
}

func TestMotivationAndStats(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/motivation", "")
	assert.Equal(t, "Bravo", decode[map[string]string](t, rec)["message"])

	rec = do(t, h, http.MethodGet, "/api/stats?days=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[models.StatsSummary](t, rec)
	assert.Len(t, s.Weekly, 3)
	assert.Equal(t, 1, s.Level)
}

func TestWebDashboard(t *testing.T) {
	h, tracker := newTestHandler(t)
	_, err := tracker.AddHabit(context.Background(), "Meditate", "mindset")
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/web", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Meditate")
	assert.Contains(t, rec.Body.String(), "Bravo")
}

func TestWebForms(t *testing.T) {
	h, tracker := newTestHandler(t)
	ctx := context.Background()

	form := url.Values{"name": {"Journal"}, "category": {"mindset"}}
	req := httptest.NewRequest(http.MethodPost, "/web/habits", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/web", rec.Header().Get("Location"))

	habits := tracker.Habits(ctx, "")
	require.Len(t, habits, 1)

	rec = do(t, h, http.MethodPost, "/web/habits/"+habits[0].ID+"/toggle", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, tracker.Habits(ctx, "")[0].Completed)

	objs := tracker.Objectives(ctx)
	rec = do(t, h, http.MethodPost, "/web/objectives/"+objs[2].ID+"/complete", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 35, tracker.Profile(ctx).XP)

	rec = do(t, h, http.MethodPost, "/web/objectives/generate", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = do(t, h, http.MethodPost, "/web/habits/missing/toggle", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
