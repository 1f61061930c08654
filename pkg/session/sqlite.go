package session

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sessionSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id           TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	ended_at     TEXT NOT NULL,
	final_score  REAL NOT NULL,
	data         TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at);
`

// SQLiteHistory persists finalized sessions in a SQLite database. The full
// session is stored as a JSON document; id, timestamps and final score are
// lifted into columns for querying.
type SQLiteHistory struct {
	db *sql.DB
}

// NewSQLiteHistory opens the database at dbPath and runs migrations.
func NewSQLiteHistory(dbPath string) (*SQLiteHistory, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(sessionSchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteHistory{db: db}, nil
}

// Append inserts the session and trims rows beyond HistoryCap, oldest first.
func (h *SQLiteHistory) Append(s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO sessions (id, started_at, ended_at, final_score, data)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID,
		s.StartTime.UTC().Format(time.RFC3339Nano),
		s.EndTime.UTC().Format(time.RFC3339Nano),
		s.FinalScore,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	_, err = tx.Exec(
		`DELETE FROM sessions WHERE id NOT IN (
			SELECT id FROM sessions ORDER BY started_at DESC LIMIT ?
		)`, HistoryCap,
	)
	if err != nil {
		return fmt.Errorf("trim history: %w", err)
	}

	return tx.Commit()
}

// Recent returns the newest limit sessions, oldest first.
func (h *SQLiteHistory) Recent(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = HistoryCap
	}

	rows, err := h.db.Query(
		`SELECT data FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var s Session
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return nil, fmt.Errorf("unmarshal session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows come back newest first; callers expect oldest first.
	for i, j := 0, len(sessions)-1; i < j; i, j = i+1, j-1 {
		sessions[i], sessions[j] = sessions[j], sessions[i]
	}
	return sessions, nil
}

// Close closes the underlying database connection.
func (h *SQLiteHistory) Close() error {
	return h.db.Close()
}

var _ HistoryStore = (*SQLiteHistory)(nil)
