// Package postgres provides a PostgreSQL session journal.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/emma-labs/emma-go/pkg/memory"
)

// Client implements journal.Journal using PostgreSQL as the backend.
type Client struct {
	db *sql.DB
}

// Config contains PostgreSQL configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewClient creates a new PostgreSQL journal client.
func NewClient(cfg *Config) (*Client, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresJournal: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewPostgresJournal: %w", err)
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
			id BIGSERIAL PRIMARY KEY,
			role VARCHAR(16) NOT NULL,
			text TEXT NOT NULL,
			at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			id BIGSERIAL PRIMARY KEY,
			record_id BIGINT NOT NULL,
			category VARCHAR(32) NOT NULL,
			keyword VARCHAR(64),
			content TEXT NOT NULL,
			source_text TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			stored BOOLEAN NOT NULL
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
		`INSERT INTO turns (role, text, at) VALUES ($1, $2, $3)`,
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
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
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
