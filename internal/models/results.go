package models

type ToggleResult struct {
	Habit     Habit       `json:"habit"`
	Profile   UserProfile `json:"profile"`
	XPAwarded int         `json:"xpAwarded"`
	LevelUp   bool        `json:"levelUp"`
}

type CompleteResult struct {
	Objective DailyObjective `json:"objective"`
	Profile   UserProfile    `json:"profile"`
	XPAwarded int            `json:"xpAwarded"`
	LevelUp   bool           `json:"levelUp"`
	// AlreadyCompleted is set when the call was a no-op.
	AlreadyCompleted bool `json:"alreadyCompleted"`
}

type LevelInfo struct {
	Level         int    `json:"level"`
	Title         string `json:"title"`
	Progress      int    `json:"progress"`
	XPToNextLevel int    `json:"xpToNextLevel"`
}

type Dashboard struct {
	Profile    UserProfile      `json:"profile"`
	Level      LevelInfo        `json:"level"`
	Habits     []Habit          `json:"habits"`
	Objectives []DailyObjective `json:"objectives"`
	Motivation string           `json:"motivation"`
}

type DayStat struct {
	Date       string  `json:"date"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

type StatsOptions struct {
	Days int `url:"days,omitempty"`
}

type StatsSummary struct {
	Level            int       `json:"level"`
	TotalXP          int       `json:"totalXp"`
	Streak           int       `json:"streak"`
	Weekly           []DayStat `json:"weekly"`
	TopHabits        []Habit   `json:"topHabits"`
	TotalCompletions int       `json:"totalCompletions"`
	AverageStreak    int       `json:"averageStreak"`
	CompletedToday   int       `json:"completedToday"`
	BestStreak       int       `json:"bestStreak"`
	SuccessRate      int       `json:"successRate"`
	ActiveHabits     int       `json:"activeHabits"`
}
