package notify

import (
	"context"
	"time"
)

// =============================================================================
// Notification Types
// =============================================================================

// EventType represents the type of store or preflight event.
type EventType string

// Event type constants.
const (
	EventSessionCreated     EventType = "session_created"
	EventTranscriptAppended EventType = "transcript_appended"
	EventSessionRenamed     EventType = "session_renamed"
	EventSessionDeleted     EventType = "session_deleted"
	EventRunPrepared        EventType = "run_prepared"
	EventRunRejected        EventType = "run_rejected"
)

// Severity constants for notifications.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Event describes a session-store or preflight event for notification.
type Event struct {
	Type      EventType      `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"` // SeverityInfo, SeverityWarning, SeverityError
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// =============================================================================
// Notifier Interface
// =============================================================================

// Notifier sends notifications about store and preflight events.
type Notifier interface {
	// Notify sends a notification. Implementations should be non-blocking
	// and handle errors gracefully (log, don't crash).
	Notify(ctx context.Context, event Event) error
}

// =============================================================================
// Context Injection
// =============================================================================

type serviceContextKey string

const notifierServiceKey serviceContextKey = "voxlog.notifier"

// WithNotifier adds a Notifier to the context.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierServiceKey, n)
}

// NotifierFromContext extracts the Notifier from context.
// Returns nil if no notifier is configured.
func NotifierFromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(notifierServiceKey).(Notifier); ok {
		return n
	}
	return nil
}

// MustNotifierFromContext extracts the Notifier or panics.
func MustNotifierFromContext(ctx context.Context) Notifier {
	n := NotifierFromContext(ctx)
	if n == nil {
		panic("voxlog: Notifier not found in context")
	}
	return n
}
