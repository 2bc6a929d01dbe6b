package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"levelup/clients/groq"
	"levelup/internal/config"
	"levelup/internal/database"
	"levelup/internal/services"
	"levelup/internal/store"
)

type app struct {
	cfg     config.Config
	logger  *log.Logger
	db      database.Service
	tracker *services.Tracker
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// openApp wires config, storage, coach and tracker. Logs go to logOut.
func openApp(ctx context.Context, logOut io.Writer) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if logOut == nil {
		logOut = os.Stderr
	}
	logger := newLogger(logOut, cfg.LogLevel)

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening database: %w", err)
	}
	logger.Debug("database opened", "path", cfg.DatabaseURL)

	groqClient := groq.NewClient(cfg.GroqAPIKey, cfg.GroqAPIURL, cfg.GroqModel)
	if !groqClient.Configured() {
		logger.Warn("GROQ_API_KEY is not set, the coach will use its default texts")
	}
	coach := services.NewCoach(groqClient, logger, services.CoachOptions{
		Language: cfg.CoachLanguage,
		Timeout:  cfg.GroqTimeout,
	})

	tracker := services.NewTracker(store.New(db, logger), coach, logger)
	tracker.Load(ctx)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", "err", err)
		}
	}
	return &app{cfg: cfg, logger: logger, db: db, tracker: tracker}, cleanup, nil
}
