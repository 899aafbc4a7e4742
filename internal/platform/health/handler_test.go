package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func getJSON(t *testing.T, router http.Handler, path string, out any) int {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	return rec.Code
}

func TestReadinessAllChecksUp(t *testing.T) {
	h := New("test")
	h.RegisterCheck("draft_store", func(context.Context) error { return nil })

	var resp readinessResponse
	code := getJSON(t, newTestRouter(h), "/health/ready", &resp)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, "up", resp.Checks["draft_store"])
}

func TestReadinessFailingCheckReportsDown(t *testing.T) {
	h := New("test")
	h.RegisterCheck("draft_store", func(context.Context) error { return nil })
	h.RegisterCheck("intake", func(context.Context) error { return errors.New("connection refused") })

	var resp readinessResponse
	code := getJSON(t, newTestRouter(h), "/health/ready", &resp)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", resp.Status)
	assert.Equal(t, "up", resp.Checks["draft_store"])
	assert.Equal(t, "down: connection refused", resp.Checks["intake"])
}

func TestReadinessPassesRequestContext(t *testing.T) {
	type ctxKey struct{}

	h := New("test")
	var seen any
	h.RegisterCheck("ctx_aware", func(ctx context.Context) error {
		seen = ctx.Value(ctxKey{})
		return nil
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	req = req.WithContext(context.WithValue(req.Context(), ctxKey{}, "marker"))
	newTestRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "marker", seen)
}

func TestLiveness(t *testing.T) {
	var resp map[string]string
	code := getJSON(t, newTestRouter(New("test")), "/health/live", &resp)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alive", resp["status"])
}

func TestStatusReportsEnvironment(t *testing.T) {
	var resp statusResponse
	code := getJSON(t, newTestRouter(New("staging")), "/health", &resp)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "staging", resp.Environment)
}
