package models

import (
	"errors"
	"fmt"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var (
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrEmptyProfileName  = errors.New("profile name is required")
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(s)
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return d, nil
}

type Preferences struct {
	Notifications bool       `json:"notifications"`
	Difficulty    Difficulty `json:"difficulty"`
	Categories    []string   `json:"categories"`
}

// UserProfile is the single profile record of an installation. Level is
// always derived from XP; XP itself is never reset on level-up.
type UserProfile struct {
	Name        string      `json:"name"`
	Level       int         `json:"level"`
	XP          int         `json:"xp"`
	TotalXP     int         `json:"totalXp"`
	Streak      int         `json:"streak"`
	Preferences Preferences `json:"preferences"`
}

func DefaultUserProfile() UserProfile {
	return UserProfile{
		Name:    "Utilisateur",
		Level:   1,
		XP:      0,
		TotalXP: 0,
		Streak:  0,
		Preferences: Preferences{
			Notifications: true,
			Difficulty:    DifficultyMedium,
			Categories: []string{
				string(CategoryHealth),
				string(CategoryProductivity),
				string(CategoryMindset),
			},
		},
	}
}

func (p UserProfile) Validate() error {
	if p.Level < 1 {
		return fmt.Errorf("level must be >= 1, got %d", p.Level)
	}
	if p.XP < 0 || p.TotalXP < 0 || p.Streak < 0 {
		return fmt.Errorf("negative counters: xp=%d totalXp=%d streak=%d", p.XP, p.TotalXP, p.Streak)
	}
	if !p.Preferences.Difficulty.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, p.Preferences.Difficulty)
	}
	return nil
}

// ProfileUpdate carries the user-editable parts of a profile. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Name          *string     `json:"name,omitempty"`
	Notifications *bool       `json:"notifications,omitempty"`
	Difficulty    *Difficulty `json:"difficulty,omitempty"`
	Categories    []string    `json:"categories,omitempty"`
}

// MotivationStats is the subset of the profile sent to the coach.
type MotivationStats struct {
	Level  int `json:"level"`
	XP     int `json:"xp"`
	Streak int `json:"streak"`
}
