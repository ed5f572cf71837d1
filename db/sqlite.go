package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB

	// ftsErr is non-nil when the FTS5 module is unavailable in this
	// build; search operations return it, everything else still works
	ftsErr error
}

// New opens the database at dbPath and idempotently ensures the schema
// exists. Safe to call on every process start.
func New(dbPath string) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: failed to create database directory: %v", ErrInit, err)
	}

	// Foreign keys must be on for cascading deletes to work
	conn, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrInit, err)
	}

	// SQLite works best with a single connection; this also serializes
	// writers so ordinal assignment never races at the driver level.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	if err := db.migrateSearch(); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// SearchAvailable reports whether full-text search is usable in this
// build. False when go-sqlite3 was compiled without the fts5 module.
func (db *DB) SearchAvailable() bool {
	return db.ftsErr == nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs database migrations
func (db *DB) migrate() error {
	migrations := []string{
		// Conversations table
		`CREATE TABLE IF NOT EXISTS conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Messages table; ordinal is the display position within a
		// conversation and must stay unique and gapless per conversation
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(conversation_id) REFERENCES conversations(id) ON DELETE CASCADE,
			UNIQUE(conversation_id, ordinal)
		)`,

		// Feedback table, at most one row per message
		`CREATE TABLE IF NOT EXISTS feedback (
			message_id INTEGER PRIMARY KEY,
			rating TEXT NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			auto_score REAL,
			client_id TEXT NOT NULL DEFAULT '',
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(message_id) REFERENCES messages(id) ON DELETE CASCADE
		)`,

		// Sample prompt/reference pairs; prompt uniqueness is enforced
		// so repeated seeding or duplicate adds cannot pile up rows
		`CREATE TABLE IF NOT EXISTS sample_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			prompt TEXT NOT NULL UNIQUE,
			reference TEXT NOT NULL
		)`,

		// Indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_ordinal ON messages(conversation_id, ordinal)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_created_at ON conversations(created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			return fmt.Errorf("%w: migration failed: %v\nSQL: %s", ErrInit, err, migration)
		}
	}

	return nil
}

// migrateSearch sets up the optional full-text search index. The fts5
// module is only compiled into go-sqlite3 under the sqlite_fts5 build
// tag; without it search is disabled and the core schema stays usable.
func (db *DB) migrateSearch() error {
	migrations := []string{
		// External-content FTS5 table over messages
		`CREATE VIRTUAL TABLE IF NOT EXISTS messages_fts USING fts5(
			content,
			conversation_id UNINDEXED,
			content=messages,
			content_rowid=id
		)`,

		// Triggers to keep FTS in sync; deletion uses the 'delete'
		// command required for external-content tables
		`CREATE TRIGGER IF NOT EXISTS messages_ai AFTER INSERT ON messages BEGIN
			INSERT INTO messages_fts(rowid, content, conversation_id)
			VALUES (new.id, new.content, new.conversation_id);
		END`,

		`CREATE TRIGGER IF NOT EXISTS messages_ad AFTER DELETE ON messages BEGIN
			INSERT INTO messages_fts(messages_fts, rowid, content, conversation_id)
			VALUES ('delete', old.id, old.content, old.conversation_id);
		END`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			if strings.Contains(err.Error(), "no such module: fts5") {
				db.ftsErr = fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
				return nil
			}
			return fmt.Errorf("%w: search migration failed: %v\nSQL: %s", ErrInit, err, migration)
		}
	}

	return nil
}

// DBStats represents database statistics
type DBStats struct {
	ConversationCount int64
	MessageCount      int64
	FeedbackCount     int64
	SampleCount       int64
	DBSizeBytes       int64
}

// GetStats returns database statistics
func (db *DB) GetStats() (*DBStats, error) {
	stats := &DBStats{}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM conversations", &stats.ConversationCount},
		{"SELECT COUNT(*) FROM messages", &stats.MessageCount},
		{"SELECT COUNT(*) FROM feedback", &stats.FeedbackCount},
		{"SELECT COUNT(*) FROM sample_entries", &stats.SampleCount},
	}
	for _, c := range counts {
		if err := db.conn.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	// Database size is page_count * page_size
	var pageCount, pageSize int64
	if err := db.conn.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("failed to get page count: %w", err)
	}
	if err := db.conn.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("failed to get page size: %w", err)
	}
	stats.DBSizeBytes = pageCount * pageSize

	return stats, nil
}

// Vacuum optimizes the database file
func (db *DB) Vacuum() error {
	_, err := db.conn.Exec("VACUUM")
	if err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}
