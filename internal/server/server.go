package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"levelup/internal/models"
)

type HealthChecker interface {
	Health() map[string]string
}

// Tracker is the application state served over HTTP. *services.Tracker
// satisfies it.
type Tracker interface {
	Dashboard(ctx context.Context) models.Dashboard
	Profile(ctx context.Context) models.UserProfile
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (models.UserProfile, error)
	Habits(ctx context.Context, category string) []models.Habit
	AddHabit(ctx context.Context, name, category string) (models.Habit, error)
	ToggleHabit(ctx context.Context, id string) (models.ToggleResult, error)
	HabitProgress(ctx context.Context, id string, window int, ref time.Time) (models.HabitProgress, error)
	Objectives(ctx context.Context) []models.DailyObjective
	RegenerateObjectives(ctx context.Context) ([]models.DailyObjective, error)
	CompleteObjective(ctx context.Context, id string) (models.CompleteResult, error)
	RefreshMotivation(ctx context.Context) string
	Stats(ctx context.Context, days int) models.StatsSummary
}

type Server struct {
	port int

	db      HealthChecker
	tracker Tracker
	logger  *log.Logger
}

func New(port int, db HealthChecker, tracker Tracker, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		port:    port,
		db:      db,
		tracker: tracker,
		logger:  logger.WithPrefix("http"),
	}
}

func NewServer(port int, db HealthChecker, tracker Tracker, logger *log.Logger) *http.Server {
	s := New(port, db, tracker, logger)

	// Declare Server config. Objective generation waits on the coach, so the
	// write timeout leaves room for a slow completion.
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	return server
}
