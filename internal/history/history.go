// Package history stores a journal of API calls in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/postboard/internal/migrations"
	"github.com/studiowebux/postboard/internal/types"
)

// DefaultLimit is the number of entries Load returns when no limit is given
const DefaultLimit = 50

const timestampLayout = "2006-01-02 15:04:05"

// Manager owns the journal database
type Manager struct {
	db *sql.DB

	// closed guards Record calls racing with Close on exit
	mu     sync.RWMutex
	closed bool
}

// NewManager opens (or creates) the journal at dbPath and migrates it
func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// Record appends one call to the journal
func (m *Manager) Record(rec types.CallRecord) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("history database is closed")
	}

	query := `
		INSERT INTO calls (
			timestamp, request_id, operation, method, url, post_id,
			status, duration_ms, request_size, response_size, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var postID sql.NullInt64
	if rec.PostID != 0 {
		postID = sql.NullInt64{Int64: int64(rec.PostID), Valid: true}
	}
	var errText sql.NullString
	if rec.Error != "" {
		errText = sql.NullString{String: rec.Error, Valid: true}
	}

	_, err := m.db.Exec(query,
		time.Now().Local().Format(timestampLayout),
		rec.RequestID,
		string(rec.Operation),
		rec.Method,
		rec.URL,
		postID,
		rec.Status,
		rec.Duration,
		rec.RequestSize,
		rec.ResponseSize,
		errText,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	return nil
}

// Load returns the most recent entries, newest first
func (m *Manager) Load(limit int) ([]types.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := `
		SELECT id, timestamp, request_id, operation, method, url, post_id,
		       status, duration_ms, request_size, response_size, error
		FROM calls
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// LoadForPost returns every entry that addressed the given post id, newest first
func (m *Manager) LoadForPost(postID int) ([]types.HistoryEntry, error) {
	query := `
		SELECT id, timestamp, request_id, operation, method, url, post_id,
		       status, duration_ms, request_size, response_size, error
		FROM calls
		WHERE post_id = ?
		ORDER BY id DESC
	`

	rows, err := m.db.Query(query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for post %d: %w", postID, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Clear deletes every journal entry
func (m *Manager) Clear() error {
	if _, err := m.db.Exec("DELETE FROM calls"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close closes the database
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}

func scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	var entries []types.HistoryEntry

	for rows.Next() {
		var (
			entry     types.HistoryEntry
			operation string
			postID    sql.NullInt64
			errText   sql.NullString
		)

		if err := rows.Scan(
			&entry.ID,
			&entry.Timestamp,
			&entry.RequestID,
			&operation,
			&entry.Method,
			&entry.URL,
			&postID,
			&entry.Status,
			&entry.Duration,
			&entry.RequestSize,
			&entry.ResponseSize,
			&errText,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Operation = types.Operation(operation)
		if postID.Valid {
			entry.PostID = int(postID.Int64)
		}
		if errText.Valid {
			entry.Error = errText.String
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}

	return entries, nil
}
