package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"galaxy-server/internal/shared/config"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

type DB struct {
	*sql.DB
	Driver string
}

type Tx struct {
	*sql.Tx
}

// Executor is satisfied by both *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (db *DB) BeginTxContext(ctx context.Context) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx}, nil
}

// Connect opens the database described by the global configuration.
func Connect() (*DB, error) {
	return Open(config.GlobalConfig.Database)
}

// Open opens and pings the database described by cfg.
func Open(cfg config.DatabaseConfig) (*DB, error) {
	logger := slog.With("component", "database", "operation", "connect", "driver", cfg.Driver)
	logger.Debug("Initializing database connection")

	if cfg.Driver == "sqlite3" {
		logger.Info("Connecting to database", "path", cfg.Path)
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	} else {
		logger.Info("Connecting to database",
			"host", cfg.Host,
			"port", cfg.Port,
			"user", cfg.User,
			"database", cfg.Name,
			"sslmode", cfg.SSLMode,
			"max_open_conns", cfg.MaxOpenConns,
			"max_idle_conns", cfg.MaxIdleConns,
		)
	}

	sqlDB, err := sql.Open(cfg.Driver, cfg.DSN())
	if err != nil {
		logger.Error("Failed to open database connection", "error", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.Driver == "sqlite3" {
		// SQLite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	logger.Debug("Testing database connection with ping")
	if err := sqlDB.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		if closeErr := sqlDB.Close(); closeErr != nil {
			logger.Error("Failed to close database after ping failure", "close_error", closeErr, "ping_error", err)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Database connection established successfully")

	return &DB{DB: sqlDB, Driver: cfg.Driver}, nil
}
