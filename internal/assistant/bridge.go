package assistant

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"brightpath/internal/application/models"
	"brightpath/internal/platform/metrics"
	dErrors "brightpath/pkg/domain-errors"
)

// SessionState tracks the bridge lifecycle.
type SessionState string

const (
	StateIdle       SessionState = "idle"
	StateConnecting SessionState = "connecting"
	StateConnected  SessionState = "connected"
	StateError      SessionState = "error"
)

// event is the wire envelope for both directions of the realtime socket.
type event struct {
	Type       string            `json:"type"`
	Name       string            `json:"name,omitempty"`
	Text       string            `json:"text,omitempty"`
	Final      bool              `json:"final,omitempty"`
	Role       string            `json:"role,omitempty"`
	StepNumber int               `json:"step_number,omitempty"`
	StepTitle  string            `json:"step_title,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// TranscriptFunc receives live transcript fragments from the session.
type TranscriptFunc func(text string, final bool, role string)

const (
	eventTranscript  = "transcript"
	eventToolCall    = "tool_call"
	eventPageContext = "page_context"
)

// Bridge maintains a single realtime session against the provider. It
// implements the wizard subscriber contract so step changes stream to the
// session, and translates provider tool calls into host effects.
type Bridge struct {
	url     string
	issuer  *TokenIssuer
	host    Host
	logger  *slog.Logger
	metrics *metrics.Metrics
	dialer  *websocket.Dialer

	onTranscript TranscriptFunc

	mu    sync.Mutex
	state SessionState
	conn  *websocket.Conn
}

type BridgeOption func(*Bridge)

func WithBridgeMetrics(m *metrics.Metrics) BridgeOption {
	return func(b *Bridge) {
		b.metrics = m
	}
}

func WithDialer(d *websocket.Dialer) BridgeOption {
	return func(b *Bridge) {
		b.dialer = d
	}
}

// WithTranscript registers a transcript listener. Must not block.
func WithTranscript(fn TranscriptFunc) BridgeOption {
	return func(b *Bridge) {
		b.onTranscript = fn
	}
}

func NewBridge(url string, issuer *TokenIssuer, host Host, logger *slog.Logger, opts ...BridgeOption) *Bridge {
	b := &Bridge{
		url:     url,
		issuer:  issuer,
		host:    host,
		logger:  logger,
		metrics: metrics.NewForTest(),
		dialer:  websocket.DefaultDialer,
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bridge) State() SessionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Connect opens the realtime session. A session already connecting or
// connected is a conflict; a previous error state may reconnect.
func (b *Bridge) Connect(ctx context.Context) error {
	b.mu.Lock()
	if b.state == StateConnecting || b.state == StateConnected {
		b.mu.Unlock()
		return dErrors.New(dErrors.CodeConflict, "session already active")
	}
	b.state = StateConnecting
	b.mu.Unlock()

	cred, err := b.issuer.Issue(ctx)
	if err != nil {
		b.fail()
		return dErrors.Wrap(err, dErrors.CodeSessionUnavailable, "failed to mint session token")
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+cred.Token)
	conn, _, err := b.dialer.DialContext(ctx, b.url, header)
	if err != nil {
		b.fail()
		return dErrors.Wrap(err, dErrors.CodeSessionUnavailable, "failed to reach realtime provider")
	}

	b.mu.Lock()
	b.conn = conn
	b.state = StateConnected
	b.mu.Unlock()
	b.metrics.AssistantSessions.Inc()

	go b.readLoop(conn)
	return nil
}

// SendContext streams the current page context to the session. When no
// session is connected the event is dropped silently; context is best-effort
// and must never block the wizard.
func (b *Bridge) SendContext(pc models.PageContext) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != StateConnected || b.conn == nil {
		return
	}
	err := b.conn.WriteJSON(event{
		Type:       eventPageContext,
		StepNumber: pc.StepNumber,
		StepTitle:  pc.StepTitle,
		Fields:     pc.Fields,
	})
	if err != nil {
		b.logger.Warn("failed to stream page context", "error", err)
	}
}

// PageContext satisfies the wizard subscriber contract.
func (b *Bridge) PageContext(pc models.PageContext) {
	b.SendContext(pc)
}

// Disconnect tears the session down. Safe to call from any state, any number
// of times.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	conn := b.conn
	wasConnected := b.state == StateConnected
	b.conn = nil
	b.state = StateIdle
	b.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
	if wasConnected {
		b.metrics.AssistantSessions.Dec()
	}
}

func (b *Bridge) fail() {
	b.mu.Lock()
	b.state = StateError
	b.mu.Unlock()
}

// readLoop consumes provider events until the socket closes. Tool calls that
// race a disconnect are dropped: the session owning the call is gone.
func (b *Bridge) readLoop(conn *websocket.Conn) {
	for {
		var ev event
		if err := conn.ReadJSON(&ev); err != nil {
			b.mu.Lock()
			if b.conn == conn {
				// Provider-side failure, not a local disconnect.
				b.conn = nil
				b.state = StateError
				b.metrics.AssistantSessions.Dec()
			}
			b.mu.Unlock()
			return
		}

		switch ev.Type {
		case eventTranscript:
			if b.onTranscript != nil {
				b.onTranscript(ev.Text, ev.Final, ev.Role)
			}
		case eventToolCall:
			b.handleToolCall(conn, ev.Name)
		default:
			b.logger.Debug("ignoring unknown session event", "type", ev.Type)
		}
	}
}

func (b *Bridge) handleToolCall(conn *websocket.Conn, name string) {
	b.mu.Lock()
	active := b.state == StateConnected && b.conn == conn
	b.mu.Unlock()
	if !active {
		return
	}

	tool, err := ParseTool(name)
	if err != nil {
		b.logger.Warn("dropping unknown tool call", "name", name)
		return
	}
	b.metrics.AssistantToolCalls.WithLabelValues(string(tool)).Inc()
	Dispatch(tool, b.host)
}
