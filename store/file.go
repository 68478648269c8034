package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/voxlog"
	"github.com/randalmurphal/voxlog/notify"
	"github.com/randalmurphal/voxlog/speaker"
)

// Config holds configuration for session storage.
type Config struct {
	// BaseDir is the root of the durable store.
	BaseDir string

	// AvatarSeed seeds avatar selection so tests can assert determinism.
	// Zero means seed from the clock.
	AvatarSeed int64

	// DefaultTitle is substituted when a session is created with an
	// empty title. Empty means voxlog.DefaultTitle.
	DefaultTitle string

	// Notifier receives store lifecycle events. Nil disables notifications.
	Notifier notify.Notifier
}

func (c Config) defaultTitle() string {
	if c.DefaultTitle != "" {
		return c.DefaultTitle
	}
	return voxlog.DefaultTitle
}

// FileStore stores one durable JSON record per session.
//
// Operations on the same session are serialized through a per-session
// lock; operations on different sessions proceed in parallel. A durable
// write completes (or fails, rolling back the in-memory change) before
// any mutating call returns.
type FileStore struct {
	baseDir      string
	avatarSeed   int64
	defaultTitle string
	notifier     notify.Notifier

	mu      sync.RWMutex
	handles map[string]*sessionHandle
}

// sessionHandle is the exclusive-access unit for one session.
type sessionHandle struct {
	mu       sync.Mutex
	sess     *voxlog.Session
	resolver *speaker.Resolver
	deleted  bool
}

// NewFileStore creates a file-based session store rooted at cfg.BaseDir.
// Sessions already on disk are picked up lazily on first access.
func NewFileStore(cfg Config) (*FileStore, error) {
	sessionsDir := filepath.Join(cfg.BaseDir, "sessions")
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, &voxlog.StorageError{Op: "init", Path: sessionsDir, Err: err}
	}

	seed := cfg.AvatarSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.NopNotifier{}
	}

	return &FileStore{
		baseDir:      cfg.BaseDir,
		avatarSeed:   seed,
		defaultTitle: cfg.defaultTitle(),
		notifier:     notifier,
		handles:      make(map[string]*sessionHandle),
	}, nil
}

// BaseDir returns the root directory of the store.
func (s *FileStore) BaseDir() string {
	return s.baseDir
}

// CreateSession allocates a new session and persists its empty record.
// An empty or whitespace-only title is replaced with the default title.
func (s *FileStore) CreateSession(title string, languageHints []string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = s.defaultTitle
	}

	id, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate session ID: %w", err)
	}
	id = "ses_" + id

	sess := voxlog.NewSession(id, title, languageHints)
	if err := sess.Save(s.baseDir); err != nil {
		return "", err
	}

	h := &sessionHandle{
		sess:     sess,
		resolver: speaker.NewResolver(s.avatarSeed ^ seedHash(id)),
	}

	s.mu.Lock()
	s.handles[id] = h
	s.mu.Unlock()

	s.notify(notify.EventSessionCreated, id, "session created", nil)
	return id, nil
}

// AppendTranscript resolves the event's speaker, appends a row, and
// persists the session. On a storage failure the in-memory state is
// rolled back and the error returned; the row sequence never advances
// without a matching durable write.
func (s *FileStore) AppendTranscript(sessionID string, event voxlog.TranscriptionEvent) error {
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
	row := voxlog.TranscriptRow{
		ID:           len(h.sess.Rows) + 1,
		SpeakerID:    event.SpeakerID,
		DisplayName:  profile.DisplayName,
		AvatarSymbol: profile.AvatarSymbol,
		PaletteIndex: profile.PaletteIndex,
		Text:         event.Text,
		LanguageCode: event.LanguageCode,
		StartOffset:  event.StartOffset,
		EndOffset:    event.EndOffset,
		SampleRate:   event.SampleRate,
		Time:         voxlog.DisplayTime(event.StartOffset, now),
		CreatedAt:    now,
	}

	h.sess.Rows = append(h.sess.Rows, row)
	if isNew {
		h.sess.Speakers[event.SpeakerID] = profile
	}

	if err := h.sess.Save(s.baseDir); err != nil {
		h.sess.Rows = h.sess.Rows[:len(h.sess.Rows)-1]
		if isNew {
			delete(h.sess.Speakers, event.SpeakerID)
			h.resolver.Remove(event.SpeakerID)
		}
		return err
	}

	s.notify(notify.EventTranscriptAppended, sessionID, "row appended", map[string]any{
		"row_id":  row.ID,
		"speaker": row.DisplayName,
	})
	return nil
}

// TranscriptRows returns a snapshot of the session's rows in append order.
func (s *FileStore) TranscriptRows(sessionID string) ([]voxlog.TranscriptRow, error) {
	h, err := s.handle(sessionID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.deleted {
		return nil, voxlog.ErrSessionNotFound
	}

	rows := make([]voxlog.TranscriptRow, len(h.sess.Rows))
	copy(rows, h.sess.Rows)
	return rows, nil
}

// Rename updates the session title. Empty or whitespace-only titles are
// rejected with ErrEmptyTitle.
func (s *FileStore) Rename(sessionID, newTitle string) error {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return voxlog.ErrEmptyTitle
	}

	h, err := s.handle(sessionID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.deleted {
		return voxlog.ErrSessionNotFound
	}

	previous := h.sess.Title
	h.sess.Title = newTitle
	if err := h.sess.Save(s.baseDir); err != nil {
		h.sess.Title = previous
		return err
	}

	s.notify(notify.EventSessionRenamed, sessionID, "session renamed", map[string]any{
		"title": newTitle,
	})
	return nil
}

// Delete removes the session and all its durable state. Deleting a
// session that does not exist is a no-op.
func (s *FileStore) Delete(sessionID string) error {
	s.mu.Lock()
	h := s.handles[sessionID]
	delete(s.handles, sessionID)
	s.mu.Unlock()

	if h != nil {
		h.mu.Lock()
		h.deleted = true
		h.mu.Unlock()
	}

	dir := voxlog.SessionDir(s.baseDir, sessionID)
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return &voxlog.StorageError{Op: "delete", Path: dir, Err: err}
	}

	s.notify(notify.EventSessionDeleted, sessionID, "session deleted", nil)
	return nil
}

// ListSessions returns metadata for all sessions, most recent first.
func (s *FileStore) ListSessions() ([]SessionMeta, error) {
	sessionsDir := filepath.Join(s.baseDir, "sessions")
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &voxlog.StorageError{Op: "list", Path: sessionsDir, Err: err}
	}

	var results []SessionMeta
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		h, err := s.handle(entry.Name())
		if err != nil {
			continue
		}

		h.mu.Lock()
		if !h.deleted {
			results = append(results, SessionMeta{
				ID:            h.sess.ID,
				Title:         h.sess.Title,
				CreatedAt:     h.sess.CreatedAt,
				RowCount:      len(h.sess.Rows),
				LanguageHints: h.sess.LanguageHints,
			})
		}
		h.mu.Unlock()
	}

	// Sort by creation time (newest first)
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	return results, nil
}

// Close implements Store. The file store holds no open resources.
func (s *FileStore) Close() error {
	return nil
}

// handle returns the exclusive-access unit for a session, loading the
// session from disk on first access after a restart.
func (s *FileStore) handle(sessionID string) (*sessionHandle, error) {
	s.mu.RLock()
	h, ok := s.handles[sessionID]
	s.mu.RUnlock()
	if ok {
		return h, nil
	}

	sess, err := voxlog.LoadSession(s.baseDir, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[sessionID]; ok {
		return h, nil
	}

	h = &sessionHandle{
		sess:     sess,
		resolver: speaker.Restore(s.avatarSeed^seedHash(sessionID), sess.Speakers),
	}
	s.handles[sessionID] = h
	return h, nil
}

// seedHash derives a per-session avatar seed component so distinct
// sessions draw independent symbol sequences from one store seed.
func seedHash(sessionID string) int64 {
	hash := fnv.New64a()
	hash.Write([]byte(sessionID))
	return int64(hash.Sum64())
}

func (s *FileStore) notify(t notify.EventType, sessionID, msg string, meta map[string]any) {
	s.notifier.Notify(context.Background(), notify.Event{
		Type:      t,
		SessionID: sessionID,
		Message:   msg,
		Severity:  notify.SeverityInfo,
		Timestamp: time.Now(),
		Metadata:  meta,
	})
}
