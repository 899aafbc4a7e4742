// Package tracer provides a lightweight tracing abstraction for the
// sign-and-submit pipeline, decoupling domain code from OpenTelemetry APIs.
//
// Implementations:
//   - NoopTracer: for tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter for production
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names used by the intake pipeline.
const (
	SpanSign         = "wizard.sign"
	SpanRenderPDF    = "document.render"
	SpanAuditCollect = "audittrail.collect"
	SpanSubmit       = "submission.submit"
)

// Attribute keys used by the intake pipeline.
const (
	AttrDraftID    = "draft_id"
	AttrOutcome    = "outcome"
	AttrPages      = "document.pages"
	AttrIPFallback = "audit.ip_fallback"
)
