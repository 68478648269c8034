package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	_ "modernc.org/sqlite"

	"github.com/randalmurphal/voxlog"
	"github.com/randalmurphal/voxlog/notify"
	"github.com/randalmurphal/voxlog/speaker"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id             TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	created_at     INTEGER NOT NULL,
	language_hints TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS speaker_profiles (
	session_id    TEXT NOT NULL,
	speaker_key   TEXT NOT NULL,
	display_name  TEXT NOT NULL,
	avatar_symbol TEXT NOT NULL,
	palette_index INTEGER NOT NULL,
	ordinal       INTEGER NOT NULL,
	PRIMARY KEY (session_id, speaker_key)
);
CREATE TABLE IF NOT EXISTS transcript_rows (
	session_id    TEXT NOT NULL,
	seq           INTEGER NOT NULL,
	speaker_key   TEXT NOT NULL,
	display_name  TEXT NOT NULL,
	avatar_symbol TEXT NOT NULL,
	palette_index INTEGER NOT NULL,
	text          TEXT NOT NULL,
	language_code TEXT NOT NULL,
	start_offset  REAL,
	end_offset    REAL,
	sample_rate   INTEGER NOT NULL DEFAULT 0,
	display_time  TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	PRIMARY KEY (session_id, seq)
);
`

// SQLiteStore provides the Store contract over a SQLite database.
// It offers the same per-session serialization and read-your-writes
// guarantees as FileStore; each append commits in one transaction.
type SQLiteStore struct {
	db           *sql.DB
	avatarSeed   int64
	defaultTitle string
	notifier     notify.Notifier

	mu      sync.RWMutex
	handles map[string]*sqliteHandle
}

// sqliteHandle caches the resolver and row counter for one session.
type sqliteHandle struct {
	mu       sync.Mutex
	resolver *speaker.Resolver
	rowCount int
	deleted  bool
}

// OpenSQLite opens (creating if needed) a SQLite-backed session store.
func OpenSQLite(path string, cfg Config) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, &voxlog.StorageError{Op: "open", Path: path, Err: err}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &voxlog.StorageError{Op: "open", Path: path, Err: err}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, &voxlog.StorageError{Op: "migrate", Path: path, Err: err}
	}

	seed := cfg.AvatarSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}

	return &SQLiteStore{
		db:           db,
		avatarSeed:   seed,
		defaultTitle: cfg.defaultTitle(),
		notifier:     notifier,
		handles:      make(map[string]*sqliteHandle),
	}, nil
}

// CreateSession allocates a new session row. An empty or whitespace-only
// title is replaced with the default title.
func (s *SQLiteStore) CreateSession(title string, languageHints []string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = s.defaultTitle
	}

	id, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate session ID: %w", err)
	}
	id = "ses_" + id

	hints, err := json.Marshal(languageHints)
	if err != nil {
		return "", fmt.Errorf("encode language hints: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO sessions (id, title, created_at, language_hints)
		VALUES (?, ?, ?, ?)
	`, id, title, time.Now().UnixNano(), string(hints))
	if err != nil {
		return "", &voxlog.StorageError{Op: "save", Path: "sessions", Err: err}
	}

	s.mu.Lock()
	s.handles[id] = &sqliteHandle{resolver: speaker.NewResolver(s.avatarSeed ^ seedHash(id))}
	s.mu.Unlock()

	s.notify(notify.EventSessionCreated, id, "session created")
	return id, nil
}

// AppendTranscript resolves the speaker, then inserts the row (and, on
// first sight, the speaker binding) in a single transaction.
func (s *SQLiteStore) AppendTranscript(sessionID string, event voxlog.TranscriptionEvent) error {
	h, err := s.handle(sessionID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.deleted {
		return voxlog.ErrSessionNotFound
	}

	profile, isNew := h.resolver.Resolve(event.SpeakerID)

	now := time.Now()
	seq := h.rowCount + 1

	tx, err := s.db.Begin()
	if err != nil {
		return s.rollbackResolve(h, event.SpeakerID, isNew, "append", err)
	}

	if isNew {
		_, err = tx.Exec(`
			INSERT INTO speaker_profiles
				(session_id, speaker_key, display_name, avatar_symbol, palette_index, ordinal)
			VALUES (?, ?, ?, ?, ?, ?)
		`, sessionID, event.SpeakerID, profile.DisplayName, profile.AvatarSymbol,
			profile.PaletteIndex, h.resolver.Len()-1)
		if err != nil {
			tx.Rollback()
			return s.rollbackResolve(h, event.SpeakerID, isNew, "append", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO transcript_rows
			(session_id, seq, speaker_key, display_name, avatar_symbol, palette_index,
			 text, language_code, start_offset, end_offset, sample_rate, display_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sessionID, seq, event.SpeakerID, profile.DisplayName, profile.AvatarSymbol,
		profile.PaletteIndex, event.Text, event.LanguageCode,
		nullFloat(event.StartOffset), nullFloat(event.EndOffset), event.SampleRate,
		voxlog.DisplayTime(event.StartOffset, now), now.UnixNano())
	if err != nil {
		tx.Rollback()
		return s.rollbackResolve(h, event.SpeakerID, isNew, "append", err)
	}

	if err := tx.Commit(); err != nil {
		return s.rollbackResolve(h, event.SpeakerID, isNew, "append", err)
	}

	h.rowCount = seq
	s.notify(notify.EventTranscriptAppended, sessionID, "row appended")
	return nil
}

// rollbackResolve undoes a speculative speaker assignment after a failed write.
func (s *SQLiteStore) rollbackResolve(h *sqliteHandle, key string, isNew bool, op string, err error) error {
	if isNew {
		h.resolver.Remove(key)
	}
	return &voxlog.StorageError{Op: op, Path: "transcript_rows", Err: err}
}

// TranscriptRows returns the session's rows in append order.
func (s *SQLiteStore) TranscriptRows(sessionID string) ([]voxlog.TranscriptRow, error) {
	if _, err := s.handle(sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT seq, speaker_key, display_name, avatar_symbol, palette_index,
		       text, language_code, start_offset, end_offset, sample_rate,
		       display_time, created_at
		FROM transcript_rows
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, &voxlog.StorageError{Op: "load", Path: "transcript_rows", Err: err}
	}
	defer rows.Close()

	var result []voxlog.TranscriptRow
	for rows.Next() {
		var r voxlog.TranscriptRow
		var start, end sql.NullFloat64
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.SpeakerID, &r.DisplayName, &r.AvatarSymbol,
			&r.PaletteIndex, &r.Text, &r.LanguageCode, &start, &end,
			&r.SampleRate, &r.Time, &createdAt); err != nil {
			return nil, &voxlog.StorageError{Op: "load", Path: "transcript_rows", Err: err}
		}
		if start.Valid {
			v := start.Float64
			r.StartOffset = &v
		}
		if end.Valid {
			v := end.Float64
			r.EndOffset = &v
		}
		r.CreatedAt = time.Unix(0, createdAt)
		result = append(result, r)
	}
	return result, rows.Err()
}

// Rename updates the session title. Empty or whitespace-only titles are
// rejected with ErrEmptyTitle.
func (s *SQLiteStore) Rename(sessionID, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return voxlog.ErrEmptyTitle
	}

	res, err := s.db.Exec(`UPDATE sessions SET title = ? WHERE id = ?`, newTitle, sessionID)
	if err != nil {
		return &voxlog.StorageError{Op: "save", Path: "sessions", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return voxlog.ErrSessionNotFound
	}

	s.notify(notify.EventSessionRenamed, sessionID, "session renamed")
	return nil
}

// Delete removes the session, its rows, and its speaker bindings.
// Deleting a session that does not exist is a no-op.
func (s *SQLiteStore) Delete(sessionID string) error {
	s.mu.Lock()
	h := s.handles[sessionID]
	delete(s.handles, sessionID)
	s.mu.Unlock()

	if h != nil {
		h.mu.Lock()
		h.deleted = true
		h.mu.Unlock()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &voxlog.StorageError{Op: "delete", Path: "sessions", Err: err}
	}
	for _, stmt := range []string{
		`DELETE FROM transcript_rows WHERE session_id = ?`,
		`DELETE FROM speaker_profiles WHERE session_id = ?`,
		`DELETE FROM sessions WHERE id = ?`,
	} {
		if _, err := tx.Exec(stmt, sessionID); err != nil {
			tx.Rollback()
			return &voxlog.StorageError{Op: "delete", Path: "sessions", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &voxlog.StorageError{Op: "delete", Path: "sessions", Err: err}
	}

	s.notify(notify.EventSessionDeleted, sessionID, "session deleted")
	return nil
}

// ListSessions returns metadata for all sessions, most recent first.
func (s *SQLiteStore) ListSessions() ([]SessionMeta, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.title, s.created_at, s.language_hints,
		       (SELECT COUNT(*) FROM transcript_rows r WHERE r.session_id = s.id)
		FROM sessions s
		ORDER BY s.created_at DESC
	`)
	if err != nil {
		return nil, &voxlog.StorageError{Op: "list", Path: "sessions", Err: err}
	}
	defer rows.Close()

	var results []SessionMeta
	for rows.Next() {
		var m SessionMeta
		var createdAt int64
		var hints string
		if err := rows.Scan(&m.ID, &m.Title, &createdAt, &hints, &m.RowCount); err != nil {
			return nil, &voxlog.StorageError{Op: "list", Path: "sessions", Err: err}
		}
		m.CreatedAt = time.Unix(0, createdAt)
		if err := json.Unmarshal([]byte(hints), &m.LanguageHints); err != nil {
			return nil, &voxlog.StorageError{Op: "list", Path: "sessions", Err: err}
		}
		results = append(results, m)
	}
	return results, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// handle returns the cached per-session unit, rebuilding resolver state
// from the speaker_profiles table after a restart.
func (s *SQLiteStore) handle(sessionID string) (*sqliteHandle, error) {
	s.mu.RLock()
	h, ok := s.handles[sessionID]
	s.mu.RUnlock()
	if ok {
		return h, nil
	}

	var exists int
	err := s.db.QueryRow(`SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return nil, voxlog.ErrSessionNotFound
	}
	if err != nil {
		return nil, &voxlog.StorageError{Op: "load", Path: "sessions", Err: err}
	}

	profiles := make(map[string]speaker.Profile)
	rows, err := s.db.Query(`
		SELECT speaker_key, display_name, avatar_symbol, palette_index
		FROM speaker_profiles
		WHERE session_id = ?
		ORDER BY ordinal ASC
	`, sessionID)
	if err != nil {
		return nil, &voxlog.StorageError{Op: "load", Path: "speaker_profiles", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var p speaker.Profile
		if err := rows.Scan(&key, &p.DisplayName, &p.AvatarSymbol, &p.PaletteIndex); err != nil {
			return nil, &voxlog.StorageError{Op: "load", Path: "speaker_profiles", Err: err}
		}
		profiles[key] = p
	}
	if err := rows.Err(); err != nil {
		return nil, &voxlog.StorageError{Op: "load", Path: "speaker_profiles", Err: err}
	}

	var count int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM transcript_rows WHERE session_id = ?`, sessionID,
	).Scan(&count); err != nil {
		return nil, &voxlog.StorageError{Op: "load", Path: "transcript_rows", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[sessionID]; ok {
		return h, nil
	}
	h = &sqliteHandle{
		resolver: speaker.Restore(s.avatarSeed^seedHash(sessionID), profiles),
		rowCount: count,
	}
	s.handles[sessionID] = h
	return h, nil
}

func (s *SQLiteStore) notify(t notify.EventType, sessionID, msg string) {
	s.notifier.Notify(context.Background(), notify.Event{
		Type:      t,
		SessionID: sessionID,
		Message:   msg,
		Severity:  notify.SeverityInfo,
		Timestamp: time.Now(),
	})
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
