package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightpath/internal/application/store"
	"brightpath/internal/application/wizard"
	"brightpath/internal/assistant"
	"brightpath/internal/audit"
	"brightpath/internal/platform/health"
	"brightpath/internal/signing/audittrail"
	"brightpath/internal/signing/document"
	"brightpath/internal/submission"
)

// intakeStub fakes the remote intake endpoint.
type intakeStub struct {
	respond func(w http.ResponseWriter, payload submission.Payload)

	payloads []submission.Payload
}

func (s *intakeStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload submission.Payload
	_ = json.NewDecoder(r.Body).Decode(&payload)
	s.payloads = append(s.payloads, payload)
	s.respond(w, payload)
}

func newTestServer(t *testing.T, intake *intakeStub) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	intakeServer := httptest.NewServer(intake)
	t.Cleanup(intakeServer.Close)

	controller := wizard.NewController(
		store.New(),
		document.NewSigner(),
		audittrail.NewCollector("", logger),
		submission.NewPipeline(submission.NewHTTPIntakeClient(intakeServer.URL, "test-key"), logger),
		audit.NewLogger(logger, audit.NewInMemoryStore()),
		logger,
		wizard.WithConfirmDelay(0),
	)
	issuer := assistant.NewTokenIssuer("test-key", "gpt-realtime", "alloy", time.Minute)

	router := NewRouter(RouterConfig{
		Applications: NewApplicationHandler(controller, logger),
		Assistant:    NewAssistantHandler(issuer, logger, nil),
		Health:       health.New("test"),
		Logger:       logger,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func patchJSON(t *testing.T, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func fullApplicationPatch() map[string]any {
	return map[string]any{
		"identity": map[string]any{
			"first_name": "Jane", "last_name": "Doe",
			"birth_day": "7", "birth_month": "4", "birth_year": "1988",
		},
		"contact": map[string]any{
			"email": "jane@example.com", "phone": "555-0100",
			"street": "1 Main St", "city": "Austin", "state": "TX", "zip": "73301",
		},
		"referral": map[string]any{
			"practice_name": "Bright Smiles Dental", "estimated_cost": "$4,500",
		},
		"employment": map[string]any{
			"employer": "Acme Corp", "gross_monthly_income": "6,200", "pay_frequency": "biweekly",
		},
		"decision": map[string]any{
			"treatment_reasons": []string{"chronic pain"}, "urgency": "8", "readiness": "ready now",
		},
		"compliance": map[string]any{
			"authorize_credit_report":      true,
			"consent_to_communications":    true,
			"acknowledge_no_credit_impact": true,
			"confirm_accuracy":             true,
		},
	}
}

func TestApplicationFlowEndToEnd(t *testing.T) {
	intake := &intakeStub{respond: func(w http.ResponseWriter, _ submission.Payload) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "applicationId": "app-789"})
	}}
	server := newTestServer(t, intake)

	// Create a draft.
	resp, created := postJSON(t, server.URL+"/applications", map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)
	assert.Equal(t, float64(1), created["step"])

	// Advancing an empty draft fails with field messages.
	resp, body := postJSON(t, server.URL+"/applications/"+id+"/advance", map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_failed", body["error"])
	fields := body["fields"].(map[string]any)
	assert.Contains(t, fields, "first_name")

	// Fill everything in one merge patch.
	resp, _ = patchJSON(t, server.URL+"/applications/"+id, fullApplicationPatch())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Walk to the signature step.
	for step := 1; step < 5; step++ {
		resp, body = postJSON(t, server.URL+"/applications/"+id+"/advance", map[string]any{})
		require.Equal(t, http.StatusOK, resp.StatusCode, "advance from step %d: %v", step, body)
	}
	assert.Equal(t, float64(5), body["step"])

	// Sign without the final consent: compliance gate blocks, intake untouched.
	resp, body = postJSON(t, server.URL+"/applications/"+id+"/sign", map[string]any{
		"signer_name": "Jane Doe", "signer_email": "jane@example.com",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["fields"], "final_consent")
	assert.Empty(t, intake.payloads)

	// Sign for real.
	resp, body = postJSON(t, server.URL+"/applications/"+id+"/sign", map[string]any{
		"signer_name":     "Jane Doe",
		"signer_email":    "jane@example.com",
		"typed_signature": "Jane Doe",
		"final_consent":   true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "app-789", body["application_id"])

	require.Len(t, intake.payloads, 1)
	payload := intake.payloads[0]
	assert.Equal(t, "Jane", payload.FirstName)
	assert.Equal(t, "1988-04-07", *payload.DateOfBirth)
	assert.Equal(t, 4500.0, *payload.EstimatedCost)
	assert.NotEmpty(t, payload.DocumentDigest)
}

func TestSignFailureSurfacesRetryableOutcome(t *testing.T) {
	intake := &intakeStub{respond: func(w http.ResponseWriter, _ submission.Payload) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "backend down"})
	}}
	server := newTestServer(t, intake)

	id := createReadyDraft(t, server)

	resp, body := postJSON(t, server.URL+"/applications/"+id+"/sign", signBody())
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "failure", body["status"])
	assert.Equal(t, submission.GenericFailureMessage, body["message"])

	// The draft survives on the signature step for a retry.
	getResp, err := http.Get(server.URL + "/applications/" + id)
	require.NoError(t, err)
	defer getResp.Body.Close()
	var draft map[string]any
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&draft))
	assert.Equal(t, float64(5), draft["step"])
	assert.Equal(t, "collecting", draft["status"])
	assert.Equal(t, submission.GenericFailureMessage, draft["last_error"])
}

func TestSignDuplicateReturns429(t *testing.T) {
	intake := &intakeStub{respond: func(w http.ResponseWriter, _ submission.Payload) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "A recent application already exists"})
	}}
	server := newTestServer(t, intake)

	id := createReadyDraft(t, server)

	resp, body := postJSON(t, server.URL+"/applications/"+id+"/sign", signBody())
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "duplicate", body["status"])
	assert.Equal(t, submission.DuplicateMessage, body["message"])
}

func TestUnknownDraftReturns404(t *testing.T) {
	server := newTestServer(t, &intakeStub{respond: func(w http.ResponseWriter, _ submission.Payload) {}})

	resp, err := http.Get(server.URL + "/applications/1b671a64-40d5-491e-99b0-da01ff1f3341")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMalformedDraftIDReturns400(t *testing.T) {
	server := newTestServer(t, &intakeStub{respond: func(w http.ResponseWriter, _ submission.Payload) {}})

	resp, err := http.Get(server.URL + "/applications/not-a-uuid")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAssistantTokenEndpoint(t *testing.T) {
	server := newTestServer(t, &intakeStub{respond: func(w http.ResponseWriter, _ submission.Payload) {}})

	resp, body := postJSON(t, server.URL+"/assistant/token", map[string]any{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "gpt-realtime", body["model"])
	assert.Equal(t, "alloy", body["voice"])
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, &intakeStub{respond: func(w http.ResponseWriter, _ submission.Payload) {}})

	resp, err := http.Get(server.URL + "/health/live")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func createReadyDraft(t *testing.T, server *httptest.Server) string {
	t.Helper()
	resp, created := postJSON(t, server.URL+"/applications", map[string]any{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := created["id"].(string)

	resp, _ = patchJSON(t, server.URL+"/applications/"+id, fullApplicationPatch())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for step := 1; step < 5; step++ {
		resp, body := postJSON(t, fmt.Sprintf("%s/applications/%s/advance", server.URL, id), map[string]any{})
		require.Equal(t, http.StatusOK, resp.StatusCode, "advance from step %d: %v", step, body)
	}
	return id
}

func signBody() map[string]any {
	return map[string]any{
		"signer_name":     "Jane Doe",
		"signer_email":    "jane@example.com",
		"typed_signature": "Jane Doe",
		"final_consent":   true,
	}
}
