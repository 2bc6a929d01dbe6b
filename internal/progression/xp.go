// Package progression holds the pure rules for XP, levels, streaks and
// completion state. Nothing here performs I/O.
package progression

import "levelup/internal/models"

const (
	XPPerLevel      = 100
	HabitXPReward   = 10
	BaseObjectiveXP = 15
	ObjectiveXPStep = 5
)

func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// LevelProgress is the position inside the current level, 0..99.
func LevelProgress(xp int) int {
	if xp < 0 {
		return 0
	}
	return xp % XPPerLevel
}

func XPToNextLevel(xp int) int {
	return XPPerLevel - LevelProgress(xp)
}

// AwardXP adds amount to both the current and lifetime totals and re-derives
// the level. Negative amounts are ignored.
func AwardXP(p models.UserProfile, amount int) models.UserProfile {
	if amount < 0 {
		amount = 0
	}
	p.XP += amount
	p.TotalXP += amount
	p.Level = LevelForXP(p.XP)
	return p
}

// LevelTitle names a level in French, the coach's default language.
func LevelTitle(level int) string {
	switch {
	case level >= 50:
		return "Maître Zen"
	case level >= 25:
		return "Sage"
	case level >= 15:
		return "Guerrier"
	case level >= 10:
		return "Explorateur"
	case level >= 5:
		return "Apprenti"
	default:
		return "Novice"
	}
}

func LevelInfo(p models.UserProfile) models.LevelInfo {
	level := LevelForXP(p.XP)
	return models.LevelInfo{
		Level:         level,
		Title:         LevelTitle(level),
		Progress:      LevelProgress(p.XP),
		XPToNextLevel: XPToNextLevel(p.XP),
	}
}
