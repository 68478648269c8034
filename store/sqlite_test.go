package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/randalmurphal/voxlog"
)

func newTestSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voxlog.sqlite")
	s, err := OpenSQLite(path, Config{AvatarSeed: 42})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteStore_AppendRollbackOnStorageFailure(t *testing.T) {
	s, _ := newTestSQLite(t)
	id, _ := s.CreateSession("Flaky disk", nil)

	if err := s.AppendTranscript(id, event("Speaker A", "first")); err != nil {
		t.Fatalf("append 1: %v", err)
	}

	// Hide the rows table so the insert fails mid-transaction.
	if _, err := s.db.Exec(`ALTER TABLE transcript_rows RENAME TO transcript_rows_hidden`); err != nil {
		t.Fatal(err)
	}

	err := s.AppendTranscript(id, event("Speaker B", "lost chunk"))
	if !voxlog.IsStorageError(err) {
		t.Fatalf("err = %v, want a StorageError", err)
	}

	if _, err := s.db.Exec(`ALTER TABLE transcript_rows_hidden RENAME TO transcript_rows`); err != nil {
		t.Fatal(err)
	}

	// The row sequence did not advance.
	rows, err := s.TranscriptRows(id)
	if err != nil {
		t.Fatalf("TranscriptRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1 after failed append", len(rows))
	}

	// The transaction carried the speaker insert with it.
	var bound int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM speaker_profiles WHERE session_id = ? AND speaker_key = ?`,
		id, "Speaker B",
	).Scan(&bound); err != nil {
		t.Fatal(err)
	}
	if bound != 0 {
		t.Error("rolled-back speaker binding was persisted")
	}

	// Speaker B's speculative binding was undone in memory too, so the
	// next new speaker takes the very next palette slot after Speaker A.
	if err := s.AppendTranscript(id, event("Speaker C", "second")); err != nil {
		t.Fatalf("append after recovery: %v", err)
	}

	rows, err = s.TranscriptRows(id)
	if err != nil {
		t.Fatalf("TranscriptRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1].ID != 2 {
		t.Errorf("row seq = %d, want 2", rows[1].ID)
	}
	if rows[1].PaletteIndex != rows[0].PaletteIndex+1 {
		t.Errorf("Speaker C PaletteIndex = %d, want %d (slot from rolled-back binding)",
			rows[1].PaletteIndex, rows[0].PaletteIndex+1)
	}
}

func TestSQLiteStore_SpeakerStability(t *testing.T) {
	s, _ := newTestSQLite(t)
	id, err := s.CreateSession("Meeting", []string{"en"})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	for _, text := range []string{"one", "two", "three"} {
		if err := s.AppendTranscript(id, event("Speaker A", text)); err != nil {
			t.Fatalf("append %q: %v", text, err)
		}
	}

	rows, err := s.TranscriptRows(id)
	if err != nil {
		t.Fatalf("TranscriptRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].AvatarSymbol != rows[0].AvatarSymbol ||
			rows[i].PaletteIndex != rows[0].PaletteIndex {
			t.Errorf("row %d binding differs: %+v vs %+v", i, rows[i], rows[0])
		}
	}
}

func TestSQLiteStore_OrderPreservation(t *testing.T) {
	s, _ := newTestSQLite(t)
	id, _ := s.CreateSession("Order", nil)

	late, early := 3.0, 1.0
	ev1 := event("A", "late")
	ev1.StartOffset = &late
	ev2 := event("A", "early")
	ev2.StartOffset = &early

	s.AppendTranscript(id, ev1)
	s.AppendTranscript(id, ev2)

	rows, _ := s.TranscriptRows(id)
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].StartOffset == nil || *rows[0].StartOffset != 3.0 {
		t.Errorf("row 0 StartOffset = %v, want 3", rows[0].StartOffset)
	}
}

func TestSQLiteStore_RoundTripReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "voxlog.sqlite")

	s, err := OpenSQLite(path, Config{AvatarSeed: 7})
	if err != nil {
		t.Fatal(err)
	}
	id, _ := s.CreateSession("Persist", nil)
	for i := 0; i < 4; i++ {
		if err := s.AppendTranscript(id, event("Speaker A", fmt.Sprintf("u%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	before, _ := s.TranscriptRows(id)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenSQLite(path, Config{AvatarSeed: 7})
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	after, err := reopened.TranscriptRows(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Fatalf("rows = %d, want %d", len(after), len(before))
	}
	for i := range before {
		if after[i].Text != before[i].Text || after[i].AvatarSymbol != before[i].AvatarSymbol {
			t.Errorf("row %d differs: %+v vs %+v", i, after[i], before[i])
		}
	}

	// A new append keeps the persisted binding.
	if err := reopened.AppendTranscript(id, event("Speaker A", "again")); err != nil {
		t.Fatal(err)
	}
	rows, _ := reopened.TranscriptRows(id)
	if rows[len(rows)-1].AvatarSymbol != before[0].AvatarSymbol {
		t.Errorf("binding lost across reopen")
	}
}

func TestSQLiteStore_RenameAndDelete(t *testing.T) {
	s, _ := newTestSQLite(t)
	id, _ := s.CreateSession("Old", nil)

	if err := s.Rename(id, "New"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if err := s.Rename(id, " "); !errors.Is(err, voxlog.ErrEmptyTitle) {
		t.Errorf("empty rename: err = %v, want ErrEmptyTitle", err)
	}
	if err := s.Rename("ses_missing", "x"); !voxlog.IsNotFound(err) {
		t.Errorf("missing rename: err = %v, want ErrSessionNotFound", err)
	}

	s.AppendTranscript(id, event("A", "hi"))
	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.TranscriptRows(id); !voxlog.IsNotFound(err) {
		t.Errorf("rows after delete: err = %v, want ErrSessionNotFound", err)
	}
	if err := s.Delete(id); err != nil {
		t.Errorf("re-delete should be a no-op: %v", err)
	}

	metas, _ := s.ListSessions()
	if len(metas) != 0 {
		t.Errorf("sessions after delete = %d, want 0", len(metas))
	}
}

func TestSQLiteStore_ListSessions_NewestFirst(t *testing.T) {
	s, _ := newTestSQLite(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, _ := s.CreateSession(fmt.Sprintf("S%d", i), nil)
		ids = append(ids, id)
		time.Sleep(2 * time.Millisecond)
	}

	metas, err := s.ListSessions()
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 3 {
		t.Fatalf("sessions = %d, want 3", len(metas))
	}
	if metas[0].ID != ids[2] {
		t.Errorf("first listed = %s, want %s", metas[0].ID, ids[2])
	}
	if metas[0].RowCount != 0 {
		t.Errorf("RowCount = %d, want 0", metas[0].RowCount)
	}
}

func TestSQLiteStore_ConcurrentSessionIsolation(t *testing.T) {
	s, _ := newTestSQLite(t)

	idA, _ := s.CreateSession("A", nil)
	idB, _ := s.CreateSession("B", nil)

	const perSession = 15
	var wg sync.WaitGroup
	wg.Add(2)
	for _, pair := range []struct{ id, spk string }{{idA, "Speaker A"}, {idB, "Speaker B"}} {
		go func(id, spk string) {
			defer wg.Done()
			for i := 0; i < perSession; i++ {
				if err := s.AppendTranscript(id, event(spk, fmt.Sprintf("%s-%d", spk, i))); err != nil {
					t.Errorf("append %s: %v", id, err)
					return
				}
			}
		}(pair.id, pair.spk)
	}
	wg.Wait()

	rowsA, _ := s.TranscriptRows(idA)
	rowsB, _ := s.TranscriptRows(idB)
	if len(rowsA) != perSession || len(rowsB) != perSession {
		t.Fatalf("rows = %d/%d, want %d each", len(rowsA), len(rowsB), perSession)
	}
	for i, r := range rowsA {
		if r.SpeakerID != "Speaker A" {
			t.Errorf("session A row %d cross-contaminated: %+v", i, r)
		}
	}
}
