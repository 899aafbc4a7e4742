// Package audittrail assembles submission-time context at the moment of
// signing: the caller's network address and client signature string.
package audittrail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/mssola/useragent"

	"brightpath/internal/platform/tracer"
)

// UnknownAddress is recorded when no client address can be determined.
// Callers must not treat it as a valid address.
const UnknownAddress = "unknown"

// Trail is the audit context captured once per sign action.
type Trail struct {
	IPAddress string
	UserAgent string
	// Device is a parsed browser/OS summary derived from the user agent,
	// e.g. "Chrome 120 on Linux". Empty when the agent string is absent.
	Device string
	// IPFallback marks that the address could not be resolved and IPAddress
	// holds the UnknownAddress sentinel.
	IPFallback bool
}

// RequestMeta carries client metadata extracted by the HTTP layer.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
}

type lookupError struct {
	reason string
	err    error
}

func (e *lookupError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("ip lookup: %s: %v", e.reason, e.err)
	}
	return "ip lookup: " + e.reason
}

func (e *lookupError) Unwrap() error { return e.err }

// Collector gathers audit trail records. The external IP lookup is strictly
// best-effort: it never blocks the signing flow beyond its own short timeout
// and never surfaces an error.
type Collector struct {
	client      *resty.Client
	resolverURL string
	logger      *slog.Logger
	tracer      tracer.Tracer
}

type Option func(*Collector)

// WithTracer enables tracing of trail collection.
func WithTracer(t tracer.Tracer) Option {
	return func(c *Collector) {
		c.tracer = t
	}
}

const lookupTimeout = 3 * time.Second

// NewCollector builds a collector. resolverURL may be empty, in which case
// the external lookup is skipped entirely.
func NewCollector(resolverURL string, logger *slog.Logger, opts ...Option) *Collector {
	c := &Collector{
		client:      resty.New().SetTimeout(lookupTimeout),
		resolverURL: resolverURL,
		logger:      logger,
		tracer:      tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect assembles the trail. The request-scoped client address wins; the
// external resolver is consulted only when the request carried no usable
// address. Every failure path resolves to UnknownAddress.
func (c *Collector) Collect(ctx context.Context, meta RequestMeta) Trail {
	ctx, span := c.tracer.Start(ctx, tracer.SpanAuditCollect)
	trail := Trail{
		IPAddress: meta.ClientIP,
		UserAgent: meta.UserAgent,
		Device:    deviceSummary(meta.UserAgent),
	}

	if trail.IPAddress == "" {
		ip, err := c.lookupIP(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "ip lookup failed, recording unknown", "error", err)
			trail.IPAddress = UnknownAddress
			trail.IPFallback = true
		} else {
			trail.IPAddress = ip
		}
	}
	span.SetAttributes(tracer.Bool(tracer.AttrIPFallback, trail.IPFallback))
	span.End(nil)
	return trail
}

type resolverResponse struct {
	IP string `json:"ip"`
}

func (c *Collector) lookupIP(ctx context.Context) (string, error) {
	if c.resolverURL == "" {
		return "", &lookupError{reason: "no resolver configured"}
	}
	var out resolverResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		Get(c.resolverURL)
	if err != nil {
		return "", &lookupError{reason: "request failed", err: err}
	}
	if !resp.IsSuccess() {
		return "", &lookupError{reason: "status " + resp.Status()}
	}
	if out.IP == "" {
		return "", &lookupError{reason: "empty address in response"}
	}
	return out.IP, nil
}

func deviceSummary(agent string) string {
	if agent == "" {
		return ""
	}
	ua := useragent.New(agent)
	name, version := ua.Browser()
	if name == "" {
		return ""
	}
	summary := name
	if version != "" {
		summary += " " + version
	}
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	return summary
}
