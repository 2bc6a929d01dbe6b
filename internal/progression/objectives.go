package progression

import (
	"time"

	"github.com/google/uuid"

	"levelup/internal/models"
)

// GenerateObjectiveBatch builds a fresh batch from texts. Rewards grow by
// ObjectiveXPStep per position, starting at BaseObjectiveXP.
func GenerateObjectiveBatch(texts []string, now time.Time) []models.DailyObjective {
	batch := make([]models.DailyObjective, 0, len(texts))
	for i, text := range texts {
		batch = append(batch, models.DailyObjective{
			ID:        uuid.NewString(),
			Text:      text,
			Completed: false,
			XPReward:  BaseObjectiveXP + ObjectiveXPStep*i,
			CreatedAt: now,
		})
	}
	return batch
}

// CompleteObjective marks o completed, awards its reward and bumps the
// profile streak. Completing an already-completed objective changes nothing
// and reports false.
func CompleteObjective(o models.DailyObjective, p models.UserProfile) (models.DailyObjective, models.UserProfile, bool) {
	if o.Completed {
		return o, p, false
	}
	o.Completed = true
	p = AwardXP(p, o.XPReward)
	p.Streak++
	return o, p, true
}

func ObjectiveDifficulty(xpReward int) models.Difficulty {
	switch {
	case xpReward <= 15:
		return models.DifficultyEasy
	case xpReward <= 20:
		return models.DifficultyMedium
	default:
		return models.DifficultyHard
	}
}
