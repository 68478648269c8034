// Package notify provides notification services for session-store events.
//
// Core types:
//   - Notifier: Interface for sending notifications
//   - Event: Notification event with type, message, and metadata
//   - EventType: Type of event (created, appended, renamed, deleted, ...)
//
// Implementations:
//   - WebhookNotifier: Sends notifications to generic webhooks
//   - LogNotifier: Logs notifications (for testing/debugging)
//   - MultiNotifier: Combines multiple notifiers
//   - NopNotifier: No-op notifier (for testing)
//
// Example usage:
//
//	notifier := notify.NewLogNotifier(nil)
//	err := notifier.Notify(ctx, notify.Event{
//	    Type:      notify.EventSessionCreated,
//	    SessionID: "ses_V1StGXR8_Z5j",
//	    Message:   "session created",
//	})
package notify
