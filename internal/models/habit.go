package models

import (
	"errors"
	"fmt"
	"time"
)

type Category string

const (
	CategoryHealth       Category = "health"
	CategoryProductivity Category = "productivity"
	CategoryMindset      Category = "mindset"
	CategorySocial       Category = "social"
	CategoryCreativity   Category = "creativity"
)

var Categories = []Category{
	CategoryHealth,
	CategoryProductivity,
	CategoryMindset,
	CategorySocial,
	CategoryCreativity,
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// DateLayout is the format of every entry in Habit.CompletedDates.
const DateLayout = time.DateOnly

var (
	ErrEmptyHabitName  = errors.New("habit name is required")
	ErrInvalidCategory = errors.New("invalid category")
)

type Habit struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Streak         int       `json:"streak"`
	Completed      bool      `json:"completed"`
	CompletedDates []string  `json:"completedDates"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (h Habit) CompletedOn(date string) bool {
	for _, d := range h.CompletedDates {
		if d == date {
			return true
		}
	}
	return false
}

func (h Habit) Validate() error {
	if h.ID == "" {
		return errors.New("habit id is empty")
	}
	if h.Name == "" {
		return fmt.Errorf("habit %s: %w", h.ID, ErrEmptyHabitName)
	}
	if h.Streak < 0 {
		return fmt.Errorf("habit %s: negative streak %d", h.ID, h.Streak)
	}
	seen := make(map[string]struct{}, len(h.CompletedDates))
	for _, d := range h.CompletedDates {
		if _, err := time.Parse(DateLayout, d); err != nil {
			return fmt.Errorf("habit %s: bad completion date %q: %w", h.ID, d, err)
		}
		if _, dup := seen[d]; dup {
			return fmt.Errorf("habit %s: duplicate completion date %s", h.ID, d)
		}
		seen[d] = struct{}{}
	}
	return nil
}

// HabitFilter narrows a habit listing. Tags are used for query encoding.
type HabitFilter struct {
	Category string `url:"category,omitempty"`
}

type ProgressOptions struct {
	Window int    `url:"window,omitempty"`
	Date   string `url:"date,omitempty"`
}

type HabitProgress struct {
	HabitID string  `json:"habitId"`
	Window  int     `json:"window"`
	Date    string  `json:"date"`
	Rate    float64 `json:"rate"`
}

type NewHabitRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}
