package storage

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens a SQLite database connection at the given path.
// It enables foreign keys and sets connection pool settings.
func New(path string) (*sql.DB, error) {
	// _foreign_keys applies the pragma to every pooled connection, not just the first one.
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// Enable foreign keys (disabled by default in SQLite)
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, err
	}

	// SQLite serializes writers; a single connection keeps the store synchronous.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			genre TEXT NOT NULL DEFAULT '',
			target_word_count INTEGER NOT NULL DEFAULT 0,
			writing_template TEXT NOT NULL DEFAULT '',
			template_applied_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			project_id INTEGER NOT NULL,
			parent_item_id TEXT,
			item_type TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			content TEXT,
			metadata TEXT,
			order_index INTEGER NOT NULL DEFAULT 0,
			depth_level INTEGER NOT NULL DEFAULT 0,
			word_count INTEGER NOT NULL DEFAULT 0,
			color TEXT,
			icon TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
			FOREIGN KEY (parent_item_id) REFERENCES items(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_project ON items(project_id);`,
		`CREATE INDEX IF NOT EXISTS idx_items_parent ON items(parent_item_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

// parseTimestamp parses a SQLite DATETIME value.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err == nil {
		return t, nil
	}
	// Try alternative format (SQLite might use different format)
	return time.Parse(time.RFC3339, s)
}
