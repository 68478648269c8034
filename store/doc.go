// Package store provides durable session and transcript storage.
//
// Core types:
//   - Store: Interface for session lifecycle, transcript append/read,
//     rename, delete, and listing
//   - FileStore: One atomic JSON record per session on disk
//   - SQLiteStore: Same contract over a SQLite database
//   - SessionMeta: Listing view (id, title, created, row count)
//
// Both implementations serialize operations per session while letting
// unrelated sessions proceed in parallel, and complete (or roll back)
// the durable write before a mutating call returns.
//
// Example usage:
//
//	st, err := store.NewFileStore(store.Config{BaseDir: ".voxlog"})
//	id, err := st.CreateSession("Standup", []string{"en", "th"})
//	err = st.AppendTranscript(id, voxlog.TranscriptionEvent{
//	    SpeakerID: "Speaker A",
//	    Text:      "Good morning",
//	})
//	rows, err := st.TranscriptRows(id)
package store
