// Package mysql provides a MySQL-compatible session journal.
//
// Any MySQL-protocol database works, including MariaDB and OceanBase.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/emma-labs/emma-go/pkg/memory"
)

// Client implements journal.Journal using MySQL as the backend.
type Client struct {
	db *sql.DB
}

// Config contains MySQL configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// NewClient creates a new MySQL journal client.
func NewClient(cfg *Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLJournal: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLJournal: %w", err)
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
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			role VARCHAR(16) NOT NULL,
			text TEXT NOT NULL,
			at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS records (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			record_id BIGINT NOT NULL,
			category VARCHAR(32) NOT NULL,
			keyword VARCHAR(64),
			content TEXT NOT NULL,
			source_text TEXT NOT NULL,
			created_at DATETIME NOT NULL,
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
