package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// =============================================================================
// Event Type Tests
// =============================================================================

func TestEventTypes(t *testing.T) {
	// Verify all event types are unique
	types := []EventType{
		EventSessionCreated,
		EventTranscriptAppended,
		EventSessionRenamed,
		EventSessionDeleted,
		EventRunPrepared,
		EventRunRejected,
	}

	seen := make(map[EventType]bool)
	for _, et := range types {
		if seen[et] {
			t.Errorf("duplicate event type: %s", et)
		}
		seen[et] = true
	}
}

// =============================================================================
// NopNotifier Tests
// =============================================================================

func TestNopNotifier(t *testing.T) {
	n := NopNotifier{}
	err := n.Notify(context.Background(), Event{
		Type:    EventSessionCreated,
		Message: "ignored",
	})
	if err != nil {
		t.Errorf("NopNotifier.Notify() = %v, want nil", err)
	}
}

// =============================================================================
// LogNotifier Tests
// =============================================================================

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	n := NewLogNotifier(logger)
	err := n.Notify(context.Background(), Event{
		Type:      EventSessionDeleted,
		SessionID: "ses_abc",
		Message:   "session deleted",
		Severity:  SeverityWarning,
	})
	if err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "session deleted") {
		t.Errorf("log output missing message: %q", out)
	}
	if !strings.Contains(out, "ses_abc") {
		t.Errorf("log output missing session ID: %q", out)
	}
	if !strings.Contains(out, "WARN") {
		t.Errorf("log output missing level: %q", out)
	}
}

func TestLogNotifier_NilLoggerUsesDefault(t *testing.T) {
	n := NewLogNotifier(nil)
	if n.Logger == nil {
		t.Error("Logger should default to slog.Default()")
	}
}

// =============================================================================
// MultiNotifier Tests
// =============================================================================

type recordingNotifier struct {
	events []Event
	err    error
}

func (r *recordingNotifier) Notify(ctx context.Context, event Event) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMultiNotifier_FansOut(t *testing.T) {
	a := &recordingNotifier{}
	b := &recordingNotifier{}

	n := NewMultiNotifier(a, b)
	event := Event{Type: EventSessionRenamed, SessionID: "ses_1"}

	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("events delivered = %d/%d, want 1/1", len(a.events), len(b.events))
	}
}

func TestMultiNotifier_ContinuesAfterFailure(t *testing.T) {
	failing := &recordingNotifier{err: errors.New("boom")}
	ok := &recordingNotifier{}

	n := NewMultiNotifier(failing, ok)
	n.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	err := n.Notify(context.Background(), Event{Type: EventRunRejected})
	if err == nil {
		t.Error("expected last error to propagate")
	}
	if len(ok.events) != 1 {
		t.Errorf("second notifier got %d events, want 1", len(ok.events))
	}
}

// =============================================================================
// WebhookNotifier Tests
// =============================================================================

func TestWebhookNotifier(t *testing.T) {
	var received Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("unmarshal body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, map[string]string{"Authorization": "Bearer tok"})
	event := Event{
		Type:      EventTranscriptAppended,
		SessionID: "ses_wh",
		Message:   "row appended",
		Severity:  SeverityInfo,
		Timestamp: time.Now(),
	}

	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify() = %v", err)
	}
	if received.SessionID != "ses_wh" {
		t.Errorf("received SessionID = %q, want %q", received.SessionID, "ses_wh")
	}
}

func TestWebhookNotifier_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, nil)
	err := n.Notify(context.Background(), Event{Type: EventSessionCreated})
	if err == nil {
		t.Error("expected error for 500 response")
	}
}

// =============================================================================
// Context Injection Tests
// =============================================================================

func TestNotifierContext(t *testing.T) {
	if NotifierFromContext(context.Background()) != nil {
		t.Error("empty context should return nil notifier")
	}

	n := NopNotifier{}
	ctx := WithNotifier(context.Background(), n)

	if NotifierFromContext(ctx) == nil {
		t.Error("notifier should be retrievable from context")
	}
}

func TestMustNotifierFromContext_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing notifier")
		}
	}()
	MustNotifierFromContext(context.Background())
}
