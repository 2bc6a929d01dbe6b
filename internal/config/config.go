package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"

	"levelup/clients/groq"
	"levelup/internal/database"
)

type Config struct {
	Port           int
	DatabaseURL    string
	GroqAPIKey     string
	GroqAPIURL     string
	GroqModel      string
	GroqTimeout    time.Duration
	CoachLanguage  string
	SSHAddr        string
	SSHHostKeyPath string
	LogLevel       log.Level
	RemoteAPIURL   string
}

// Load reads the environment (and a .env file, if present) and fills in
// defaults for everything that is unset.
func Load() (Config, error) {
	cfg := Config{
		Port:           8080,
		DatabaseURL:    os.Getenv("DB_URL"),
		GroqAPIKey:     os.Getenv("GROQ_API_KEY"),
		GroqAPIURL:     getenv("GROQ_API_URL", groq.DefaultURL),
		GroqModel:      getenv("GROQ_MODEL", groq.DefaultModel),
		GroqTimeout:    30 * time.Second,
		CoachLanguage:  getenv("COACH_LANGUAGE", "French"),
		SSHAddr:        getenv("SSH_ADDR", ":23234"),
		SSHHostKeyPath: getenv("SSH_HOST_KEY_PATH", ".ssh/id_ed25519"),
		LogLevel:       log.InfoLevel,
		RemoteAPIURL:   os.Getenv("LEVELUP_API_URL"),
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("GROQ_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid GROQ_TIMEOUT %q: %w", v, err)
		}
		cfg.GroqTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		lvl, err := log.ParseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL %q: %w", v, err)
		}
		cfg.LogLevel = lvl
	}

	if cfg.DatabaseURL == "" {
		path, err := database.DefaultDBPath()
		if err != nil {
			return cfg, fmt.Errorf("no DB_URL and no user config dir: %w", err)
		}
		cfg.DatabaseURL = path
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
