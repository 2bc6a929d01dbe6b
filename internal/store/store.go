// Package store persists the tracker's collections as whole JSON blobs under
// fixed keys. Loads never fail: missing, unreadable or invalid data yields
// the collection's default. Saves never fail either; errors are logged and
// the caller's in-memory copy stays authoritative until the next write.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"

	"levelup/internal/models"
)

const (
	ProfileKey    = "userProfile"
	HabitsKey     = "habits"
	ObjectivesKey = "objectives"
	StatsKey      = "stats"
)

// KV is the raw key/value backend. database.Service satisfies it.
type KV interface {
	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
}

// Collection is one JSON document stored under a single key.
type Collection[T any] struct {
	key      string
	kv       KV
	logger   *log.Logger
	fallback func() T
	validate func(T) error
}

func (c *Collection[T]) Key() string { return c.key }

func (c *Collection[T]) Load(ctx context.Context) T {
	raw, ok, err := c.kv.GetValue(ctx, c.key)
	if err != nil {
		c.logger.Error("error reading collection", "key", c.key, "err", err)
		return c.fallback()
	}
	if !ok {
		return c.fallback()
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		c.logger.Error("error decoding collection", "key", c.key, "err", err)
		return c.fallback()
	}
	if c.validate != nil {
		if err := c.validate(v); err != nil {
			c.logger.Warn("discarding invalid collection", "key", c.key, "err", err)
			return c.fallback()
		}
	}
	return v
}

func (c *Collection[T]) Save(ctx context.Context, v T) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("error encoding collection", "key", c.key, "err", err)
		return
	}
	if err := c.kv.SetValue(ctx, c.key, string(data)); err != nil {
		c.logger.Error("error saving collection", "key", c.key, "err", err)
	}
}

type Store struct {
	Profile    *Collection[models.UserProfile]
	Habits     *Collection[[]models.Habit]
	Objectives *Collection[[]models.DailyObjective]
	Stats      *Collection[models.Stats]
}

func New(kv KV, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("store")

	return &Store{
		Profile: &Collection[models.UserProfile]{
			key:      ProfileKey,
			kv:       kv,
			logger:   logger,
			fallback: models.DefaultUserProfile,
			validate: models.UserProfile.Validate,
		},
		Habits: &Collection[[]models.Habit]{
			key:      HabitsKey,
			kv:       kv,
			logger:   logger,
			fallback: func() []models.Habit { return []models.Habit{} },
			validate: validateHabits,
		},
		Objectives: &Collection[[]models.DailyObjective]{
			key:      ObjectivesKey,
			kv:       kv,
			logger:   logger,
			fallback: func() []models.DailyObjective { return []models.DailyObjective{} },
			validate: validateObjectives,
		},
		Stats: &Collection[models.Stats]{
			key:      StatsKey,
			kv:       kv,
			logger:   logger,
			fallback: func() models.Stats { return models.Stats{} },
			validate: func(s models.Stats) error {
				if s == nil {
					return fmt.Errorf("stats is null")
				}
				return nil
			},
		},
	}
}

func validateHabits(habits []models.Habit) error {
	if habits == nil {
		return fmt.Errorf("habits is null")
	}
	ids := make(map[string]struct{}, len(habits))
	for _, h := range habits {
		if err := h.Validate(); err != nil {
			return err
		}
		if _, dup := ids[h.ID]; dup {
			return fmt.Errorf("duplicate habit id %s", h.ID)
		}
		ids[h.ID] = struct{}{}
	}
	return nil
}

func validateObjectives(objectives []models.DailyObjective) error {
	if objectives == nil {
		return fmt.Errorf("objectives is null")
	}
	for _, o := range objectives {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	return nil
}
