package submission

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightpath/internal/signing/audittrail"
	dErrors "brightpath/pkg/domain-errors"
)

func TestHTTPIntakeClientSubmit(t *testing.T) {
	var gotAuth string
	var gotPayload Payload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"applicationId":"abc123"}`))
	}))
	defer server.Close()

	client := NewHTTPIntakeClient(server.URL, "test-key")
	resp, err := client.Submit(context.Background(), BuildPayload(minimalDraft(), testArtifact(), audittrail.Trail{IPAddress: "1.2.3.4"}))
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Equal(t, "abc123", resp.ApplicationID)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "Jane", gotPayload.FirstName)
}

func TestHTTPIntakeClientStructuredFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"success":false,"error":"missing required field phone"}`))
	}))
	defer server.Close()

	client := NewHTTPIntakeClient(server.URL, "")
	resp, err := client.Submit(context.Background(), Payload{})
	require.NoError(t, err, "a structured failure body is a response, not a transport error")
	assert.False(t, resp.Success)
	assert.Equal(t, "missing required field phone", resp.Error)
}

func TestHTTPIntakeClientOpaqueServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPIntakeClient(server.URL, "")
	_, err := client.Submit(context.Background(), Payload{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSubmissionRejected))
}

func TestHTTPIntakeClientUnconfigured(t *testing.T) {
	client := NewHTTPIntakeClient("", "")
	_, err := client.Submit(context.Background(), Payload{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestHTTPIntakeClient429ClassifiesDuplicate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewHTTPIntakeClient(server.URL, "")
	resp, err := client.Submit(context.Background(), Payload{})
	outcome := Classify(resp, err)
	assert.Equal(t, StatusDuplicate, outcome.Status)
	assert.Equal(t, DuplicateMessage, outcome.Message)
}
