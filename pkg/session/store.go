package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/speakcoach/go-speakcoach/internal/log"
	"github.com/speakcoach/go-speakcoach/pkg/storage"
)

// HistoryCap bounds how many finalized sessions are kept; the oldest are
// dropped first.
const HistoryCap = 100

// HistoryStore persists finalized sessions.
type HistoryStore interface {
	// Append adds a finalized session to the history.
	Append(s Session) error

	// Recent returns up to limit sessions, oldest first. A non-positive limit
	// returns everything.
	Recent(limit int) ([]Session, error)

	// Close releases any resources held by the store.
	Close() error
}

// JSONHistory keeps the session history as a single JSON array in a blob
// store. Corrupt stored data is treated as an empty history rather than a
// fatal error, so one bad write never bricks the coach.
type JSONHistory struct {
	mu    sync.Mutex
	store storage.Store
}

// NewJSONHistory creates a history backed by the given blob store.
func NewJSONHistory(store storage.Store) *JSONHistory {
	return &JSONHistory{store: store}
}

// Append loads the current history, adds the session, trims to HistoryCap and
// writes the array back.
func (h *JSONHistory) Append(s Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions := h.load()
	sessions = append(sessions, s)
	if len(sessions) > HistoryCap {
		sessions = sessions[len(sessions)-HistoryCap:]
	}

	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := h.store.Save(data); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Recent returns the newest limit sessions, oldest first.
func (h *JSONHistory) Recent(limit int) ([]Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions := h.load()
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[len(sessions)-limit:]
	}
	return sessions, nil
}

// Close closes the underlying store.
func (h *JSONHistory) Close() error {
	return h.store.Close()
}

func (h *JSONHistory) load() []Session {
	data, err := h.store.Load()
	if err != nil {
		log.Warn("session history unreadable, starting empty", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		log.Warn("session history corrupt, starting empty", "error", err)
		return nil
	}
	return sessions
}

var _ HistoryStore = (*JSONHistory)(nil)
