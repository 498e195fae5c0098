// Package usage is the boundary to the metering/plan-quota sibling system.
// The pipeline itself has no quota awareness; the HTTP layer consults a
// Recorder before quota-bearing operations and logs events after them.
package usage

import (
	"context"
	"errors"
	"log/slog"
)

// ErrQuotaExceeded is returned by EnsureWithinPlan when the account's plan
// limit for an event type is exhausted. Maps to a rate-limit response.
var ErrQuotaExceeded = errors.New("usage quota exceeded")

// Event types the property surface emits
const (
	EventList     = "properties.list"
	EventExport   = "properties.export"
	EventLeadPack = "properties.lead_pack"
	EventRefresh  = "properties.refresh_cache"
)

// Event describes one metered action
type Event struct {
	Type      string
	Payload   map[string]any
	Metadata  map[string]any
	AccountID string
	UserID    string
}

// Recorder is implemented by the external metering system
type Recorder interface {
	// EnsureWithinPlan fails with an error wrapping ErrQuotaExceeded when the
	// account is over its plan limit for the event type
	EnsureWithinPlan(ctx context.Context, eventType, accountID string) error

	// LogEvent is fire-and-forget: it must never block or fail the request
	LogEvent(ctx context.Context, event Event)
}

// NopRecorder allows everything and records nothing
type NopRecorder struct{}

func (NopRecorder) EnsureWithinPlan(context.Context, string, string) error { return nil }
func (NopRecorder) LogEvent(context.Context, Event)                        {}

// LogRecorder allows everything and writes events to the structured log.
// The default when no metering backend is wired in.
type LogRecorder struct {
	log *slog.Logger
}

// NewLogRecorder creates a log-backed recorder
func NewLogRecorder(log *slog.Logger) *LogRecorder {
	if log == nil {
		log = slog.Default()
	}
	return &LogRecorder{log: log}
}

func (r *LogRecorder) EnsureWithinPlan(context.Context, string, string) error {
	return nil
}

func (r *LogRecorder) LogEvent(ctx context.Context, event Event) {
	r.log.InfoContext(ctx, "usage event",
		"type", event.Type,
		"account_id", event.AccountID,
		"user_id", event.UserID,
		"payload", event.Payload,
		"metadata", event.Metadata)
}
