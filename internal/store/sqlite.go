// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides user/tool/content persistence with automatic schema creation

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT,
			password_hash TEXT NOT NULL,
			first_name TEXT,
			last_name TEXT,
			external_features INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);

		CREATE TABLE IF NOT EXISTS user_tools (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			tool_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			icon TEXT DEFAULT 'bi bi-gear',
			type TEXT NOT NULL,
			executable_path TEXT,
			website_url TEXT,
			protocol_url TEXT,
			parameters TEXT,
			is_enabled INTEGER NOT NULL DEFAULT 1,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,

			UNIQUE(username, tool_id),
			CHECK (type IN ('executable', 'script', 'website', 'protocol', 'client_service'))
		);

		CREATE INDEX IF NOT EXISTS idx_user_tools_username ON user_tools(username);

		CREATE TABLE IF NOT EXISTS tool_usage (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			tool_id TEXT NOT NULL,
			source TEXT NOT NULL,
			tool_type TEXT NOT NULL,
			ts TEXT NOT NULL,

			CHECK (source IN ('server', 'user'))
		);

		CREATE INDEX IF NOT EXISTS idx_tool_usage_ts ON tool_usage(ts DESC);
		CREATE INDEX IF NOT EXISTS idx_tool_usage_username ON tool_usage(username);

		CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			description TEXT,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS posts (
			id TEXT PRIMARY KEY,
			category_id TEXT,
			author TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			tags_json TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category_id);
		CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(created_at DESC);

		CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			post_id TEXT NOT NULL,
			author TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TEXT NOT NULL,

			FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_comments_post ON comments(post_id);

		CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			filename TEXT NOT NULL,
			uploader TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS chat_messages (
			id TEXT PRIMARY KEY,
			author TEXT NOT NULL,
			body TEXT NOT NULL,
			image TEXT,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_chat_created ON chat_messages(created_at);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
