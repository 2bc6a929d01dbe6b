package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"levelup/clients/groq"
	"levelup/internal/models"
)

const ObjectivesPerBatch = 3

var FallbackObjectives = [ObjectivesPerBatch]string{
	"Boire 8 verres d'eau aujourd'hui",
	"Méditer 10 minutes ce matin",
	"Lire 20 pages d'un livre inspirant",
}

const FallbackMotivation = "Continue comme ça, tu es sur la bonne voie !"

// Completer is satisfied by *groq.Client.
type Completer interface {
	Complete(ctx context.Context, req groq.ChatRequest) (string, error)
}

type CoachOptions struct {
	Language string
	Timeout  time.Duration
}

type Coach struct {
	completer Completer
	logger    *log.Logger
	language  string
	timeout   time.Duration
}

func NewCoach(completer Completer, logger *log.Logger, opts CoachOptions) *Coach {
	if logger == nil {
		logger = log.Default()
	}
	if opts.Language == "" {
		opts.Language = "French"
	}
	return &Coach{
		completer: completer,
		logger:    logger.WithPrefix("coach"),
		language:  opts.Language,
		timeout:   opts.Timeout,
	}
}

// A numeric marker needs trailing whitespace so times and decimals survive.
var listMarker = regexp.MustCompile(`^(?:[-*•]+\s*|\d+[.)]\s+)`)

// GenerateDailyObjectives always returns exactly ObjectivesPerBatch entries.
// Missing lines are filled from FallbackObjectives in order.
func (c *Coach) GenerateDailyObjectives(ctx context.Context, profile models.UserProfile) []string {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		c.logger.Error("error encoding profile", "err", err)
		return fallbackObjectives()
	}

	prompt := fmt.Sprintf(`You are a personal development coach. Generate %d personalised daily objectives for this user.

Profile: %s

The objectives must be:
- achievable within one day
- suited to the user's level
- varied (physical, mental, productivity)
- motivating and precise

Write them in %s. Return only the %d objectives, one per line, without numbering.`,
		ObjectivesPerBatch, profileJSON, c.language, ObjectivesPerBatch)

	content, err := c.complete(ctx, prompt, 0.7, 200)
	if err != nil {
		c.logger.Error("error generating objectives", "err", err)
		return fallbackObjectives()
	}

	objectives := parseObjectives(content)
	if len(objectives) < ObjectivesPerBatch {
		c.logger.Warn("coach returned too few objectives", "got", len(objectives))
		objectives = append(objectives, FallbackObjectives[len(objectives):]...)
	}
	return objectives
}

func fallbackObjectives() []string {
	out := make([]string, ObjectivesPerBatch)
	copy(out, FallbackObjectives[:])
	return out
}

func parseObjectives(content string) []string {
	out := make([]string, 0, ObjectivesPerBatch)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(listMarker.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == ObjectivesPerBatch {
			break
		}
	}
	return out
}

func (c *Coach) GenerateMotivationalMessage(ctx context.Context, stats models.MotivationStats) string {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		c.logger.Error("error encoding stats", "err", err)
		return FallbackMotivation
	}

	prompt := fmt.Sprintf(`You are a motivational coach. Write a personalised message for this user based on their stats.

Stats: %s

The message must be:
- encouraging and positive
- based on their recent progress
- short (50 words at most)
- written in %s

Return only the message.`, statsJSON, c.language)

	content, err := c.complete(ctx, prompt, 0.8, 100)
	if err != nil {
		c.logger.Error("error generating motivation", "err", err)
		return FallbackMotivation
	}
	msg := strings.TrimSpace(content)
	if msg == "" {
		return FallbackMotivation
	}
	return msg
}

func (c *Coach) complete(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	if c.completer == nil {
		return "", fmt.Errorf("no completer configured")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.completer.Complete(ctx, groq.ChatRequest{
		Messages:    []groq.Message{{Role: groq.RoleUser, Content: prompt}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
}
