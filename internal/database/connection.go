package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported driver names
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config describes which store to open
type Config struct {
	// Type is "sqlite" or "postgres"
	Type string
	// Path is the SQLite database file, or ":memory:"
	Path string
	// URL is the PostgreSQL connection string
	URL string
}

// Connect opens the configured database and initializes the schema
func Connect(cfg Config) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch cfg.Type {
	case "postgres":
		if cfg.URL == "" {
			return nil, fmt.Errorf("postgres connection string is empty")
		}
		db, err = sqlx.Connect(DriverPostgres, cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	case "sqlite", "":
		db, err = openSQLite(cfg.Path)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	if err := InitializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func openSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		path = filepath.Join("data", "wordbook.db")
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect(DriverSQLite, path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite doesn't support multiple writers, and every connection to
	// ":memory:" would get its own empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// InitializeSchema creates necessary tables if they don't exist
func InitializeSchema(db *sqlx.DB) error {
	statements := sqliteSchema
	if db.DriverName() == DriverPostgres {
		statements = postgresSchema
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS saved_words (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		word TEXT NOT NULL,
		phonetic TEXT,
		definition TEXT NOT NULL,
		part_of_speech TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_saved_words_user ON saved_words (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS word_progress (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		saved_word_id TEXT NOT NULL,
		easiness_factor REAL NOT NULL DEFAULT 2.5,
		interval_days INTEGER NOT NULL DEFAULT 0,
		repetitions INTEGER NOT NULL DEFAULT 0,
		next_review_at TIMESTAMP NOT NULL,
		last_reviewed_at TIMESTAMP,
		times_correct INTEGER NOT NULL DEFAULT 0,
		times_incorrect INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY (saved_word_id) REFERENCES saved_words(id) ON DELETE CASCADE,
		UNIQUE(user_id, saved_word_id)
	)`,
	`CREATE TABLE IF NOT EXISTS learning_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_type TEXT NOT NULL,
		words_studied INTEGER NOT NULL DEFAULT 0,
		words_correct INTEGER NOT NULL DEFAULT 0,
		duration_seconds INTEGER,
		completed_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_learning_sessions_user ON learning_sessions (user_id, completed_at)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS saved_words (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		word TEXT NOT NULL,
		phonetic TEXT,
		definition TEXT NOT NULL,
		part_of_speech TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_saved_words_user ON saved_words (user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS word_progress (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		saved_word_id TEXT NOT NULL REFERENCES saved_words(id) ON DELETE CASCADE,
		easiness_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
		interval_days INTEGER NOT NULL DEFAULT 0,
		repetitions INTEGER NOT NULL DEFAULT 0,
		next_review_at TIMESTAMPTZ NOT NULL,
		last_reviewed_at TIMESTAMPTZ,
		times_correct INTEGER NOT NULL DEFAULT 0,
		times_incorrect INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, saved_word_id)
	)`,
	`CREATE TABLE IF NOT EXISTS learning_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		session_type TEXT NOT NULL,
		words_studied INTEGER NOT NULL DEFAULT 0,
		words_correct INTEGER NOT NULL DEFAULT 0,
		duration_seconds INTEGER,
		completed_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_learning_sessions_user ON learning_sessions (user_id, completed_at)`,
}
