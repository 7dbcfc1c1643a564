// Package history records executed request/response pairs in a local
// SQLite database.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"reqchain/internal/types"
)

// Entry is one recorded execution.
type Entry struct {
	ID         int64
	Timestamp  time.Time
	File       string
	Name       string
	Method     string
	URL        string
	Status     int
	StatusText string
	Duration   int64
	Failed     bool
}

type Manager struct {
	db *sql.DB
}

// NewManager opens (creating if needed) the history database at dbPath.
func NewManager(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	m := &Manager{db: db}
	if err := m.initSchema(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		request_file TEXT NOT NULL,
		request_name TEXT,
		method TEXT NOT NULL,
		url TEXT NOT NULL,
		status INTEGER NOT NULL,
		status_text TEXT NOT NULL,
		response_headers TEXT,
		response_body TEXT,
		duration_ms INTEGER NOT NULL,
		failed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_history_request_file ON history(request_file);
	`
	if _, err := m.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize history schema: %w", err)
	}
	return nil
}

// Save records one execution. Failures to persist history never fail the
// run; callers log and continue.
func (m *Manager) Save(file string, resp *types.Response, failed bool) error {
	headers, err := json.Marshal(resp.Headers)
	if err != nil {
		headers = []byte("{}")
	}

	name, method, url := "", "", ""
	if resp.Request != nil {
		name, method, url = resp.Request.Name, resp.Request.Method, resp.Request.URL
	}

	_, err = m.db.Exec(`
		INSERT INTO history (timestamp, request_file, request_name, method, url, status, status_text, response_headers, response_body, duration_ms, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), file, name, method, url,
		resp.Status, resp.StatusText, string(headers), resp.Body, resp.Duration, failed,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// Recent returns the latest entries, newest first.
func (m *Manager) Recent(limit int) ([]Entry, error) {
	rows, err := m.db.Query(`
		SELECT id, timestamp, request_file, request_name, method, url, status, status_text, duration_ms, failed
		FROM history ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.File, &e.Name, &e.Method, &e.URL, &e.Status, &e.StatusText, &e.Duration, &e.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close releases the database handle.
func (m *Manager) Close() error {
	return m.db.Close()
}
