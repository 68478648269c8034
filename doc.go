// Package voxlog provides durable storage and run validation for live
// speech-transcription sessions.
//
// The root package holds the shared data model (Session, TranscriptRow,
// TranscriptionEvent) and its durable format. Behavior lives in
// subpackages by domain:
//
//   - store: Session stores (file-backed JSON, SQLite)
//   - speaker: Raw-label to avatar identity resolution
//   - preflight: Run validation and prompt synthesis
//   - share: Signed read-only session share tokens
//   - view: Transcript rendering and export
//   - config: Hierarchical configuration resolution
//   - notify: Notification services (log, webhook)
//   - testutil: Test utilities and fixtures
//
// # Quick Start
//
//	import (
//	    "github.com/randalmurphal/voxlog"
//	    "github.com/randalmurphal/voxlog/preflight"
//	    "github.com/randalmurphal/voxlog/store"
//	)
//
//	// Validate the run before starting the pipeline
//	run, err := preflight.Prepare(preflight.Request{
//	    LanguageCodes:          []string{"th", "en"},
//	    RemainingCreditSeconds: 1800,
//	})
//
//	// Ingest pipeline events into a session
//	st, _ := store.NewFileStore(store.Config{BaseDir: ".voxlog"})
//	id, _ := st.CreateSession("Standup", run.LanguageCodes)
//	_ = st.AppendTranscript(id, voxlog.TranscriptionEvent{
//	    SpeakerID: "Speaker A",
//	    Text:      "Good morning",
//	})
//
// See individual package documentation for detailed usage.
package voxlog
