package store

import (
	"time"

	"github.com/randalmurphal/voxlog"
)

// Store is the interface for session and transcript operations.
type Store interface {
	// Lifecycle
	CreateSession(title string, languageHints []string) (string, error)
	AppendTranscript(sessionID string, event voxlog.TranscriptionEvent) error
	Rename(sessionID, newTitle string) error
	Delete(sessionID string) error

	// Retrieval
	TranscriptRows(sessionID string) ([]voxlog.TranscriptRow, error)
	ListSessions() ([]SessionMeta, error)

	// Maintenance
	Close() error
}

// SessionMeta is the listing view of a session.
type SessionMeta struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"createdAt"`
	RowCount      int       `json:"rowCount"`
	LanguageHints []string  `json:"languageHints,omitempty"`
}
