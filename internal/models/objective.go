package models

import (
	"errors"
	"fmt"
	"time"
)

type DailyObjective struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	XPReward  int       `json:"xpReward"`
	CreatedAt time.Time `json:"createdAt"`
}

func (o DailyObjective) Validate() error {
	if o.ID == "" {
		return errors.New("objective id is empty")
	}
	if o.XPReward < 0 {
		return fmt.Errorf("objective %s: negative xp reward %d", o.ID, o.XPReward)
	}
	return nil
}

// Stats is the opaque blob stored under the "stats" key.
type Stats map[string]any
