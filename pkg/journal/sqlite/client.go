// Package sqlite provides a SQLite session journal.
//
// SQLite is file-based and needs no server, which makes it the default
// backend for local use.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/emma-labs/emma-go/pkg/memory"
)

// Client implements journal.Journal using SQLite as the backend.
type Client struct {
	db *sql.DB
}

// Config contains configuration for creating a SQLite journal.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string
}

// NewClient creates a new SQLite journal client.
//
// Parameters:
//   - cfg: Configuration containing the database path
//
// Returns:
//   - *Client: The SQLite client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteJournal: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteJournal: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewSQLiteJournal: %w", err)
	}

	client := &Client{db: db}
	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the journal table structure.
func (c *Client) initTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			role TEXT NOT NULL,
			text TEXT NOT NULL,
			at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id INTEGER NOT NULL,
			category TEXT NOT NULL,
			keyword TEXT,
			content TEXT NOT NULL,
			source_text TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			stored INTEGER NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("initTables: %w", err)
		}
	}
	return nil
}

// AppendTurn records one conversation message.
func (c *Client) AppendTurn(ctx context.Context, role, text string, at time.Time) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO turns (role, text, at) VALUES (?, ?, ?)`,
		role, text, at)
	if err != nil {
		return fmt.Errorf("AppendTurn: %w", err)
	}
	return nil
}

// AppendRecord records one extraction outcome.
func (c *Client) AppendRecord(ctx context.Context, rec *memory.Record, stored bool) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO records (record_id, category, keyword, content, source_text, created_at, stored)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Category), rec.Keyword, rec.Content, rec.SourceText, rec.CreatedAt, stored)
	if err != nil {
		return fmt.Errorf("AppendRecord: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}
