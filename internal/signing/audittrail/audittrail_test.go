package audittrail

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightpath/internal/platform/tracer"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const chromeUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestCollectPrefersRequestAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("resolver must not be called when the request carries an address")
	}))
	defer server.Close()

	c := NewCollector(server.URL, discard())
	trail := c.Collect(context.Background(), RequestMeta{ClientIP: "203.0.113.7", UserAgent: chromeUA})

	assert.Equal(t, "203.0.113.7", trail.IPAddress)
	assert.False(t, trail.IPFallback)
	assert.Equal(t, chromeUA, trail.UserAgent)
	assert.Contains(t, trail.Device, "Chrome")
	assert.Contains(t, trail.Device, "Linux")
}

func TestCollectResolvesExternally(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ip":"198.51.100.4"}`))
	}))
	defer server.Close()

	c := NewCollector(server.URL, discard())
	trail := c.Collect(context.Background(), RequestMeta{})

	assert.Equal(t, "198.51.100.4", trail.IPAddress)
	assert.False(t, trail.IPFallback)
}

// Any lookup failure must resolve, never reject, with the "unknown" sentinel.
func TestCollectFallsBackToUnknown(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non-2xx", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"empty body", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			c := NewCollector(server.URL, discard())
			trail := c.Collect(context.Background(), RequestMeta{UserAgent: chromeUA})

			assert.Equal(t, UnknownAddress, trail.IPAddress)
			assert.True(t, trail.IPFallback)
			// The rest of the trail is still captured.
			assert.Equal(t, chromeUA, trail.UserAgent)
		})
	}
}

func TestCollectUnreachableResolver(t *testing.T) {
	c := NewCollector("http://127.0.0.1:1", discard())
	trail := c.Collect(context.Background(), RequestMeta{})
	assert.Equal(t, UnknownAddress, trail.IPAddress)
	assert.True(t, trail.IPFallback)
}

func TestCollectNoResolverConfigured(t *testing.T) {
	c := NewCollector("", discard())
	trail := c.Collect(context.Background(), RequestMeta{})
	assert.Equal(t, UnknownAddress, trail.IPAddress)
	assert.True(t, trail.IPFallback)
}

func TestDeviceSummaryEmptyAgent(t *testing.T) {
	c := NewCollector("", discard())
	trail := c.Collect(context.Background(), RequestMeta{ClientIP: "1.2.3.4"})
	assert.Equal(t, "", trail.Device)
}

type recordedSpan struct {
	name  string
	attrs []tracer.Attribute
	err   error
}

func (s *recordedSpan) End(err error)                           { s.err = err }
func (s *recordedSpan) SetAttributes(attrs ...tracer.Attribute) { s.attrs = append(s.attrs, attrs...) }
func (s *recordedSpan) AddEvent(string, ...tracer.Attribute)    {}

type recordingTracer struct {
	spans []*recordedSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, attrs ...tracer.Attribute) (context.Context, tracer.Span) {
	s := &recordedSpan{name: name, attrs: attrs}
	t.spans = append(t.spans, s)
	return ctx, s
}

func TestCollectEmitsSpanWithFallbackAttribute(t *testing.T) {
	rec := &recordingTracer{}
	c := NewCollector("", discard(), WithTracer(rec))

	trail := c.Collect(context.Background(), RequestMeta{})

	assert.True(t, trail.IPFallback)
	require.Len(t, rec.spans, 1)
	assert.Equal(t, tracer.SpanAuditCollect, rec.spans[0].name)
	assert.Contains(t, rec.spans[0].attrs, tracer.Bool(tracer.AttrIPFallback, true))
}

func TestCollectSpanMarksNoFallbackForRequestAddress(t *testing.T) {
	rec := &recordingTracer{}
	c := NewCollector("", discard(), WithTracer(rec))

	trail := c.Collect(context.Background(), RequestMeta{ClientIP: "203.0.113.7"})

	assert.False(t, trail.IPFallback)
	require.Len(t, rec.spans, 1)
	assert.Contains(t, rec.spans[0].attrs, tracer.Bool(tracer.AttrIPFallback, false))
}
