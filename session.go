package voxlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/randalmurphal/voxlog/speaker"
)

// DefaultTitle is substituted when a session is created with an empty
// or whitespace-only title.
const DefaultTitle = "New Session"

// Session is a named conversation: an ordered, append-only sequence of
// transcript rows plus the speaker bindings resolved while ingesting them.
type Session struct {
	ID            string                     `json:"id"`
	Title         string                     `json:"title"`
	CreatedAt     time.Time                  `json:"createdAt"`
	LanguageHints []string                   `json:"languageHints,omitempty"`
	Speakers      map[string]speaker.Profile `json:"speakers"`
	Rows          []TranscriptRow            `json:"rows"`
}

// TranscriptRow is one attributed utterance. Rows are immutable once
// appended; insertion order is display order.
type TranscriptRow struct {
	ID           int       `json:"id"`
	SpeakerID    string    `json:"speakerId"`
	DisplayName  string    `json:"speakerDisplayName"`
	AvatarSymbol string    `json:"avatarSymbol"`
	PaletteIndex int       `json:"avatarPaletteIndex"`
	Text         string    `json:"text"`
	LanguageCode string    `json:"languageCode"`
	StartOffset  *float64  `json:"startOffset,omitempty"`
	EndOffset    *float64  `json:"endOffset,omitempty"`
	SampleRate   int       `json:"sampleRate,omitempty"`
	Time         string    `json:"time"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewSession creates an empty session.
func NewSession(id, title string, languageHints []string) *Session {
	return &Session{
		ID:            id,
		Title:         title,
		CreatedAt:     time.Now(),
		LanguageHints: languageHints,
		Speakers:      make(map[string]speaker.Profile),
		Rows:          make([]TranscriptRow, 0),
	}
}

// RowCount returns the number of rows.
func (s *Session) RowCount() int {
	return len(s.Rows)
}

// LastRow returns the last row or nil.
func (s *Session) LastRow() *TranscriptRow {
	if len(s.Rows) == 0 {
		return nil
	}
	return &s.Rows[len(s.Rows)-1]
}

// RowsBySpeaker returns all rows attributed to the given speaker key.
func (s *Session) RowsBySpeaker(speakerID string) []TranscriptRow {
	var result []TranscriptRow
	for _, row := range s.Rows {
		if row.SpeakerID == speakerID {
			result = append(result, row)
		}
	}
	return result
}

// DisplayTime formats the display timestamp for a row: the audio offset
// as m:ss (or h:mm:ss) when available, wall clock otherwise.
func DisplayTime(startOffset *float64, now time.Time) string {
	if startOffset == nil {
		return now.Format("15:04:05")
	}

	total := int(*startOffset)
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// compressionThreshold is the size above which session records are compressed
const compressionThreshold = 100 * 1024 // 100KB

// SessionDir returns the durable directory for a session ID.
func SessionDir(baseDir, id string) string {
	return filepath.Join(baseDir, "sessions", id)
}

// Save writes the session record to disk. The record is written to a
// temporary file and renamed over the previous copy, so a failed write
// never corrupts the prior durable state.
func (s *Session) Save(baseDir string) error {
	dir := SessionDir(baseDir, s.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &StorageError{Op: "save", Path: dir, Err: err}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return &StorageError{Op: "save", Path: dir, Err: err}
	}

	if len(data) > compressionThreshold {
		return s.saveCompressed(dir, data)
	}

	path := filepath.Join(dir, "session.json")
	if err := writeAtomic(path, data, false); err != nil {
		return &StorageError{Op: "save", Path: path, Err: err}
	}

	// Remove compressed version if it exists
	os.Remove(filepath.Join(dir, "session.json.gz"))
	return nil
}

func (s *Session) saveCompressed(dir string, data []byte) error {
	path := filepath.Join(dir, "session.json.gz")
	if err := writeAtomic(path, data, true); err != nil {
		return &StorageError{Op: "save", Path: path, Err: err}
	}

	os.Remove(filepath.Join(dir, "session.json"))
	return nil
}

// writeAtomic writes data to a temporary sibling of path and renames it
// into place.
func writeAtomic(path string, data []byte, compress bool) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".session-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	var werr error
	if compress {
		gz := gzip.NewWriter(tmp)
		_, werr = gz.Write(data)
		if cerr := gz.Close(); werr == nil {
			werr = cerr
		}
	} else {
		_, werr = tmp.Write(data)
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpName)
		return werr
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// LoadSession reads a session record from disk.
func LoadSession(baseDir, id string) (*Session, error) {
	dir := SessionDir(baseDir, id)

	// Try compressed first
	data, err := loadCompressed(filepath.Join(dir, "session.json.gz"))
	if err != nil {
		data, err = os.ReadFile(filepath.Join(dir, "session.json"))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ErrSessionNotFound
			}
			return nil, &StorageError{Op: "load", Path: dir, Err: err}
		}
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &StorageError{Op: "load", Path: dir, Err: err}
	}
	if s.Speakers == nil {
		s.Speakers = make(map[string]speaker.Profile)
	}

	return &s, nil
}

func loadCompressed(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	return io.ReadAll(gz)
}
