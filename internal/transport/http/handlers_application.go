package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"brightpath/internal/application/models"
	"brightpath/internal/application/wizard"
	"brightpath/internal/platform/middleware"
	"brightpath/internal/signing/audittrail"
	"brightpath/internal/submission"
	dErrors "brightpath/pkg/domain-errors"
	"brightpath/pkg/httputil"
)

// WizardService defines what the transport layer needs from the wizard
// controller. Returns domain objects, not HTTP response DTOs.
type WizardService interface {
	Create(ctx context.Context) (*models.Draft, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	Update(ctx context.Context, id uuid.UUID, patch models.Patch) (*models.Draft, error)
	Advance(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	Back(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	Sign(ctx context.Context, id uuid.UUID, req wizard.SignRequest) (submission.Outcome, error)
}

// ApplicationHandler serves the financing application wizard endpoints.
type ApplicationHandler struct {
	wizard WizardService
	logger *slog.Logger
}

func NewApplicationHandler(wizard WizardService, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{wizard: wizard, logger: logger}
}

func (h *ApplicationHandler) Register(r chi.Router) {
	r.Post("/applications", h.handleCreate)
	r.Get("/applications/{id}", h.handleGet)
	r.Patch("/applications/{id}", h.handleUpdate)
	r.Post("/applications/{id}/advance", h.handleAdvance)
	r.Post("/applications/{id}/back", h.handleBack)
	r.Post("/applications/{id}/sign", h.handleSign)
}

// draftResponse is the wire shape of a draft. Section data round-trips through
// the same field names the patch accepts.
type draftResponse struct {
	ID        string `json:"id"`
	Step      int    `json:"step"`
	StepTitle string `json:"step_title"`
	Status    string `json:"status"`
	LastError string `json:"last_error,omitempty"`

	Identity   models.Identity         `json:"identity"`
	Contact    models.Contact          `json:"contact"`
	Emergency  models.EmergencyContact `json:"emergency_contact"`
	Referral   models.Referral         `json:"referral"`
	Employment models.Employment       `json:"employment"`
	Decision   models.Decision         `json:"decision"`
	Compliance models.Compliance       `json:"compliance"`
}

func toDraftResponse(d *models.Draft) *draftResponse {
	return &draftResponse{
		ID:         d.ID.String(),
		Step:       int(d.Step),
		StepTitle:  d.Step.Title(),
		Status:     string(d.Status),
		LastError:  d.LastError,
		Identity:   d.Identity,
		Contact:    d.Contact,
		Emergency:  d.Emergency,
		Referral:   d.Referral,
		Employment: d.Employment,
		Decision:   d.Decision,
		Compliance: d.Compliance,
	}
}

func (h *ApplicationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	draft, err := h.wizard.Create(ctx)
	if err != nil {
		h.writeError(ctx, w, err, "create draft failed")
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toDraftResponse(draft))
}

func (h *ApplicationHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	draft, err := h.wizard.Get(ctx, id)
	if err != nil {
		h.writeError(ctx, w, err, "get draft failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDraftResponse(draft))
}

func (h *ApplicationHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}

	var patch models.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	draft, err := h.wizard.Update(ctx, id, patch)
	if err != nil {
		h.writeError(ctx, w, err, "update draft failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDraftResponse(draft))
}

func (h *ApplicationHandler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	draft, err := h.wizard.Advance(ctx, id)
	if err != nil {
		h.writeError(ctx, w, err, "advance failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDraftResponse(draft))
}

func (h *ApplicationHandler) handleBack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}
	draft, err := h.wizard.Back(ctx, id)
	if err != nil {
		h.writeError(ctx, w, err, "back failed")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDraftResponse(draft))
}

type signRequest struct {
	SignerName     string `json:"signer_name"`
	SignerEmail    string `json:"signer_email"`
	TypedSignature string `json:"typed_signature"`
	FinalConsent   bool   `json:"final_consent"`
}

type signResponse struct {
	Status        string `json:"status"`
	ApplicationID string `json:"application_id,omitempty"`
	Message       string `json:"message,omitempty"`
}

func (h *ApplicationHandler) handleSign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.draftID(w, r)
	if !ok {
		return
	}

	var req signRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	outcome, err := h.wizard.Sign(ctx, id, wizard.SignRequest{
		SignerName:     req.SignerName,
		SignerEmail:    req.SignerEmail,
		TypedSignature: req.TypedSignature,
		FinalConsent:   req.FinalConsent,
		Meta: audittrail.RequestMeta{
			ClientIP:  middleware.ClientIP(ctx),
			UserAgent: middleware.UserAgent(ctx),
		},
	})
	if err != nil {
		h.writeError(ctx, w, err, "sign failed")
		return
	}

	httputil.WriteJSON(w, signStatus(outcome), &signResponse{
		Status:        string(outcome.Status),
		ApplicationID: outcome.ApplicationID,
		Message:       outcome.Message,
	})
}

// signStatus maps the submission outcome onto an HTTP status. All three
// carry the outcome body; the status lets clients branch without parsing.
func signStatus(outcome submission.Outcome) int {
	switch outcome.Status {
	case submission.StatusSuccess:
		return http.StatusOK
	case submission.StatusDuplicate:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

func (h *ApplicationHandler) draftID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid application id"))
		return uuid.Nil, false
	}
	return id, true
}

// writeError translates wizard errors. Validation failures get their own
// envelope carrying the per-field messages.
func (h *ApplicationHandler) writeError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	var vErr *wizard.ValidationError
	if errors.As(err, &vErr) {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error":  string(dErrors.CodeValidation),
			"fields": vErr.Fields,
		})
		return
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
	}
	httputil.WriteError(w, err)
}
