package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Config holds database configuration. An empty or ":memory:" path
// selects a process-lifetime in-memory database.
type Config struct {
	Path string
}

// DB wraps sql.DB with the application's connection settings.
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// New opens the database. In-memory databases use a shared cache and a
// single connection: without those, every pooled connection would see
// its own empty database.
func New(cfg Config, logger *zap.Logger) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", cfg.Path)
	inMemory := cfg.Path == "" || cfg.Path == ":memory:"
	if inMemory {
		dsn = "file:expense_agent?mode=memory&cache=shared"
	}

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if inMemory {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{DB: sqlDB, logger: logger}
	logger.Info("Database connection established",
		zap.String("path", cfg.Path),
		zap.Bool("in_memory", inMemory))
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.logger.Info("Closing database connection")
	return db.DB.Close()
}
