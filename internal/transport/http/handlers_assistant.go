package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"brightpath/internal/assistant"
	"brightpath/internal/platform/metrics"
	"brightpath/pkg/httputil"
)

// TokenService mints ephemeral realtime session credentials.
type TokenService interface {
	Issue(ctx context.Context) (*assistant.Credential, error)
}

// AssistantHandler serves the voice/chat session endpoints.
type AssistantHandler struct {
	tokens  TokenService
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewAssistantHandler(tokens TokenService, logger *slog.Logger, m *metrics.Metrics) *AssistantHandler {
	if m == nil {
		m = metrics.NewForTest()
	}
	return &AssistantHandler{tokens: tokens, logger: logger, metrics: m}
}

func (h *AssistantHandler) Register(r chi.Router) {
	r.Post("/assistant/token", h.handleToken)
}

func (h *AssistantHandler) handleToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cred, err := h.tokens.Issue(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "session token mint failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	h.metrics.AssistantTokensIssued.Inc()
	httputil.WriteJSON(w, http.StatusOK, cred)
}
