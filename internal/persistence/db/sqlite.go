package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const DefaultBusyTimeout = 5 * time.Second

// Open opens (or creates) the local auth database and brings its schema up to
// date. The database is tiny: one table mapping backend accounts to Telegram
// chats and their bearer tokens.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		path, DefaultBusyTimeout.Milliseconds())

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// The store has one writer (the login flow) and many readers (in-flight
	// deliveries); a single connection serializes writes, WAL keeps reads
	// non-blocking.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	if err := Migrate(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return conn, nil
}

// Migrate creates the user_tokens table and, for databases created before the
// notification relay existed, adds the telegram_id column without touching
// existing rows.
func Migrate(ctx context.Context, conn *sql.DB) error {
	_, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS user_tokens (
			user_id INTEGER PRIMARY KEY,
			token   TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_tokens table: %w", err)
	}

	hasColumn, err := columnExists(ctx, conn, "user_tokens", "telegram_id")
	if err != nil {
		return err
	}
	if !hasColumn {
		if _, err := conn.ExecContext(ctx,
			`ALTER TABLE user_tokens ADD COLUMN telegram_id INTEGER`); err != nil {
			return fmt.Errorf("failed to add telegram_id column: %w", err)
		}
	}

	return nil
}

func columnExists(ctx context.Context, conn *sql.DB, table, column string) (bool, error) {
	rows, err := conn.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s schema: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}

	return false, rows.Err()
}
