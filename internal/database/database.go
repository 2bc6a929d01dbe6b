package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error

	Init() error

	GetValue(ctx context.Context, key string) (string, bool, error)
	SetValue(ctx context.Context, key, value string) error
	Keys(ctx context.Context) ([]string, error)
}

type service struct {
	db    *sql.DB
	dburl string
}

// New opens the sqlite database at dburl and creates the tables it needs.
// Use ":memory:" for a throwaway database.
func New(dburl string) (Service, error) {
	if dburl != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dburl), 0o755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dburl)
	if err != nil {
		// This will not be a connection error, but a DSN parse error or
		// another initialization error.
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// Every connection to ":memory:" is its own database, and there is only
	// one writer anyway.
	db.SetMaxOpenConns(1)

	s := &service{db: db, dburl: dburl}
	if err := s.Init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	keys, err := s.Keys(ctx)
	if err != nil {
		stats["keys_error"] = err.Error()
	} else {
		stats["keys"] = strconv.Itoa(len(keys))
	}

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	return s.db.Close()
}

// Create initial tables in the database
func (s *service) Init() error {
	_, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	)
	if err != nil {
		return fmt.Errorf("error initializing database: %w", err)
	}
	return nil
}

// GetValue returns the raw value stored under key. The bool is false when
// the key has never been written.
func (s *service) GetValue(ctx context.Context, key string) (string, bool, error) {
	var value string
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("error retrieving %q: %w", key, err)
	}
	return value, true, nil
}

func (s *service) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("error writing %q: %w", key, err)
	}
	return nil
}

func (s *service) Keys(ctx context.Context) ([]string, error) {
	keys := make([]string, 0)
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM kv ORDER BY key`)
	if err != nil {
		return keys, fmt.Errorf("error listing keys: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return keys, fmt.Errorf("error scanning key row: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// DefaultDBPath returns <user config dir>/levelup/levelup.db.
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "levelup", "levelup.db"), nil
}
