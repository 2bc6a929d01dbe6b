package tui

import (
	"context"

	"levelup/internal/models"
	"levelup/internal/services"
)

// Local adapts an in-process tracker to Backend.
type Local struct {
	Tracker *services.Tracker
}

func (l Local) Dashboard(ctx context.Context) (models.Dashboard, error) {
	return l.Tracker.Dashboard(ctx), nil
}

func (l Local) ToggleHabit(ctx context.Context, id string) (models.ToggleResult, error) {
	return l.Tracker.ToggleHabit(ctx, id)
}

func (l Local) CompleteObjective(ctx context.Context, id string) (models.CompleteResult, error) {
	return l.Tracker.CompleteObjective(ctx, id)
}

func (l Local) RegenerateObjectives(ctx context.Context) ([]models.DailyObjective, error) {
	return l.Tracker.RegenerateObjectives(ctx)
}
