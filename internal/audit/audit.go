// Package audit records key intake-funnel actions for compliance review.
// Events fan out to the structured log and an optional emitter so stores and
// sinks can be added without touching domain code.
package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"brightpath/internal/platform/middleware"
)

// Actions recorded by the intake funnel.
const (
	ActionDraftCreated        = "draft_created"
	ActionDraftExpired        = "draft_expired"
	ActionSignatureCaptured   = "signature_captured"
	ActionSubmissionAccepted  = "submission_accepted"
	ActionSubmissionRejected  = "submission_rejected"
	ActionSubmissionDuplicate = "submission_duplicate"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time
	DraftID    string
	Action     string
	Outcome    string
	IPAddress  string
	UserAgent  string
	Digest     string
	DocumentID string
	RequestID  string
}

// Emitter persists audit events. Satisfied by InMemoryStore and any
// durable sink wired in main.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Logger provides structured audit logging with optional event emission.
type Logger struct {
	textLogger *slog.Logger
	emitter    Emitter
}

// NewLogger creates an audit logger. textLogger is used for structured
// logging; emitter is optional for event persistence.
func NewLogger(textLogger *slog.Logger, emitter Emitter) *Logger {
	return &Logger{textLogger: textLogger, emitter: emitter}
}

// Record logs an audit event to text and optionally emits it.
// The request ID is enriched from context.
func (l *Logger) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = middleware.GetRequestID(ctx)
	}

	if l.textLogger != nil {
		l.textLogger.InfoContext(ctx, event.Action,
			"log_type", "audit",
			"draft_id", event.DraftID,
			"outcome", event.Outcome,
			"ip_address", event.IPAddress,
			"document_id", event.DocumentID,
			"request_id", event.RequestID,
		)
	}

	if l.emitter == nil {
		return
	}
	if err := l.emitter.Emit(ctx, event); err != nil && l.textLogger != nil {
		l.textLogger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", event.Action,
		)
	}
}

// InMemoryStore collects audit events in memory for tests.
type InMemoryStore struct {
	mu     sync.Mutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Emit(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of all recorded events.
func (s *InMemoryStore) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByAction returns recorded events matching the given action.
func (s *InMemoryStore) ByAction(action string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

var _ Emitter = (*InMemoryStore)(nil)
