// Package wizard orchestrates the multi-step financing application: step
// transitions, the compliance-gated sign action, and the single-shot
// submission pipeline call.
package wizard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"brightpath/internal/application/models"
	"brightpath/internal/application/validate"
	"brightpath/internal/audit"
	"brightpath/internal/platform/metrics"
	"brightpath/internal/platform/tracer"
	"brightpath/internal/signing/audittrail"
	"brightpath/internal/signing/document"
	"brightpath/internal/submission"
	dErrors "brightpath/pkg/domain-errors"
	"brightpath/pkg/strutil"
)

// Store is the draft persistence contract.
// Error contract: Get/Merge/Save/TransitionStatus return a not_found domain
// error for unknown drafts; TransitionStatus returns a conflict domain error
// when the draft is not in the expected state.
type Store interface {
	Create(ctx context.Context) (*models.Draft, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	Merge(ctx context.Context, id uuid.UUID, patch models.Patch) (*models.Draft, error)
	Save(ctx context.Context, draft *models.Draft) error
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	SweepExpired(ctx context.Context, ttl time.Duration) []uuid.UUID
	Len() int
}

// Signer produces the signed agreement artifact.
type Signer interface {
	Sign(ctx context.Context, req document.Request) (*document.Artifact, error)
}

// Collector assembles the audit trail. It never fails; lookup errors collapse
// to the unknown-address sentinel inside the collector.
type Collector interface {
	Collect(ctx context.Context, meta audittrail.RequestMeta) audittrail.Trail
}

// Submitter makes exactly one intake attempt and classifies the result.
type Submitter interface {
	Submit(ctx context.Context, draft *models.Draft, artifact *document.Artifact, trail audittrail.Trail) submission.Outcome
}

// Subscriber receives page-context broadcasts on every step change.
type Subscriber interface {
	PageContext(pc models.PageContext)
}

// ValidationError carries per-field messages for a rejected advance or sign
// attempt. It is recoverable: the user fixes the fields and tries again.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// SignRequest is the explicit user sign action on the final step.
type SignRequest struct {
	SignerName     string
	SignerEmail    string
	TypedSignature string
	FinalConsent   bool
	Meta           audittrail.RequestMeta
}

const defaultConfirmDelay = 2 * time.Second

// Controller owns the wizard state machine. The draft is mutated exclusively
// through this controller; no other component holds a writable reference.
type Controller struct {
	store     Store
	signer    Signer
	collector Collector
	submitter Submitter
	auditor   *audit.Logger
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    tracer.Tracer

	// confirmDelay is the pause before the confirmation broadcast after a
	// successful submission.
	confirmDelay time.Duration
	now          func() time.Time

	subMu       sync.RWMutex
	subscribers []Subscriber
}

type Option func(*Controller)

func WithConfirmDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.confirmDelay = d
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Controller) {
		c.tracer = t
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func NewController(store Store, signer Signer, collector Collector, submitter Submitter, auditor *audit.Logger, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:        store,
		signer:       signer,
		collector:    collector,
		submitter:    submitter,
		auditor:      auditor,
		metrics:      metrics.NewForTest(),
		logger:       logger,
		tracer:       tracer.NewNoop(),
		confirmDelay: defaultConfirmDelay,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers a page-context listener. Subscribers must not block.
func (c *Controller) Subscribe(s Subscriber) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.subscribers = append(c.subscribers, s)
}

func (c *Controller) broadcast(pc models.PageContext) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, s := range c.subscribers {
		s.PageContext(pc)
	}
}

// Create starts a new application draft at the first step.
func (c *Controller) Create(ctx context.Context) (*models.Draft, error) {
	draft, err := c.store.Create(ctx)
	if err != nil {
		return nil, err
	}
	c.metrics.DraftsCreated.Inc()
	c.auditor.Record(ctx, audit.Event{Action: audit.ActionDraftCreated, DraftID: draft.ID.String()})
	c.broadcast(models.ContextFor(draft))
	return draft, nil
}

func (c *Controller) Get(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	return c.store.Get(ctx, id)
}

// Update merges a partial record into the draft. No validation happens here;
// errors surface only when the user attempts to advance.
func (c *Controller) Update(ctx context.Context, id uuid.UUID, patch models.Patch) (*models.Draft, error) {
	draft, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.StatusCollecting {
		return nil, dErrors.New(dErrors.CodeConflict, "draft is "+string(draft.Status))
	}
	return c.store.Merge(ctx, id, patch)
}

// Advance moves to the next step iff the current step validates.
func (c *Controller) Advance(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.StatusCollecting {
		return nil, dErrors.New(dErrors.CodeConflict, "draft is "+string(draft.Status))
	}
	if draft.Step >= models.LastCollectingStep {
		return nil, dErrors.New(dErrors.CodeConflict, "final step is completed by signing")
	}

	if fields := validate.Step(draft.Step, draft); len(fields) > 0 {
		c.metrics.StepValidationFailures.WithLabelValues(draft.Step.Title()).Inc()
		return nil, &ValidationError{Fields: fields}
	}

	draft.Step++
	if err := c.store.Save(ctx, draft); err != nil {
		return nil, err
	}
	c.metrics.StepAdvances.WithLabelValues(draft.Step.Title()).Inc()
	c.broadcast(models.ContextFor(draft))
	return draft, nil
}

// Back moves to the previous step. Backward navigation is always allowed and
// never clears data entered on steps ahead.
func (c *Controller) Back(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	draft, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Status != models.StatusCollecting {
		return nil, dErrors.New(dErrors.CodeConflict, "draft is "+string(draft.Status))
	}
	if draft.Step > models.FirstStep {
		draft.Step--
		if err := c.store.Save(ctx, draft); err != nil {
			return nil, err
		}
		c.broadcast(models.ContextFor(draft))
	}
	return draft, nil
}

// Sign runs the full signing sub-state: compliance gate, concurrent audit
// collection and artifact generation, then a single submission attempt.
// Artifacts are never cached across attempts; a retry re-runs everything.
func (c *Controller) Sign(ctx context.Context, id uuid.UUID, req SignRequest) (submission.Outcome, error) {
	start := c.now()
	ctx, span := c.tracer.Start(ctx, tracer.SpanSign, tracer.String(tracer.AttrDraftID, id.String()))
	outcome, err := c.sign(ctx, id, req)
	span.SetAttributes(tracer.String(tracer.AttrOutcome, string(outcome.Status)))
	span.End(err)
	if err == nil {
		c.metrics.Submissions.WithLabelValues(string(outcome.Status)).Inc()
		c.metrics.SignLatency.Observe(c.now().Sub(start).Seconds())
	}
	return outcome, err
}

func (c *Controller) sign(ctx context.Context, id uuid.UUID, req SignRequest) (submission.Outcome, error) {
	draft, err := c.store.Get(ctx, id)
	if err != nil {
		return submission.Outcome{}, err
	}
	if draft.Step != models.StepCompliance {
		return submission.Outcome{}, dErrors.New(dErrors.CodeConflict, "draft is not at the signature step")
	}
	if draft.Status != models.StatusCollecting {
		return submission.Outcome{}, dErrors.New(dErrors.CodeConflict, "draft is "+string(draft.Status))
	}

	// Persist the sign-action fields so a rejected attempt keeps them.
	strutil.TrimStrings(&req.SignerName, &req.SignerEmail, &req.TypedSignature)
	draft, err = c.store.Merge(ctx, id, models.Patch{Compliance: &models.CompliancePatch{
		SignerName:     &req.SignerName,
		SignerEmail:    &req.SignerEmail,
		TypedSignature: &req.TypedSignature,
		FinalConsent:   &req.FinalConsent,
	}})
	if err != nil {
		return submission.Outcome{}, err
	}

	// Compliance gate: short-circuit before any pipeline work.
	if fields := validate.Step(models.StepCompliance, draft); len(fields) > 0 {
		return submission.Outcome{}, &ValidationError{Fields: fields}
	}

	// The submitting flag doubles as the mutual-exclusion lock: a second sign
	// action while one is in flight gets a conflict.
	if err := c.store.TransitionStatus(ctx, id, models.StatusCollecting, models.StatusSubmitting); err != nil {
		return submission.Outcome{}, err
	}

	signedAt := c.now().UTC()
	agreement := document.RenderAgreement(patientName(draft), birthDate(draft), signedAt)

	// The IP lookup and the artifact generation are independent; issue both
	// and join before submitting.
	var (
		trail    audittrail.Trail
		artifact *document.Artifact
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trail = c.collector.Collect(gctx, req.Meta)
		return nil
	})
	g.Go(func() error {
		var signErr error
		artifact, signErr = c.signer.Sign(gctx, document.Request{
			AgreementText: agreement,
			SignerName:    req.SignerName,
			SignatureDate: signedAt,
		})
		return signErr
	})
	if err := g.Wait(); err != nil {
		// Artifact generation failed: hard stop, no submission without a
		// valid artifact. Surfaced as a generic submission failure.
		c.metrics.SigningErrors.Inc()
		c.logger.ErrorContext(ctx, "document signing failed", "draft_id", id, "error", err)
		c.finishAttempt(ctx, draft, submission.GenericFailureMessage)
		return submission.Outcome{Status: submission.StatusFailure, Message: submission.GenericFailureMessage}, nil
	}

	if trail.IPFallback {
		c.metrics.IPFallbacks.Inc()
	}
	c.auditor.Record(ctx, audit.Event{
		Action:     audit.ActionSignatureCaptured,
		DraftID:    id.String(),
		IPAddress:  trail.IPAddress,
		UserAgent:  trail.UserAgent,
		Digest:     artifact.Digest,
		DocumentID: artifact.DocumentID,
	})

	outcome := c.submitter.Submit(ctx, draft, artifact, trail)
	switch outcome.Status {
	case submission.StatusSuccess:
		c.completeDraft(ctx, draft)
	case submission.StatusDuplicate:
		c.auditor.Record(ctx, audit.Event{Action: audit.ActionSubmissionDuplicate, DraftID: id.String()})
		c.finishAttempt(ctx, draft, outcome.Message)
	default:
		c.auditor.Record(ctx, audit.Event{Action: audit.ActionSubmissionRejected, DraftID: id.String(), Outcome: outcome.Message})
		c.finishAttempt(ctx, draft, outcome.Message)
	}
	return outcome, nil
}

// completeDraft moves the draft to its terminal state and schedules the
// delayed confirmation broadcast. The draft is discarded once confirmed.
func (c *Controller) completeDraft(ctx context.Context, draft *models.Draft) {
	draft.Status = models.StatusComplete
	draft.LastError = ""
	if err := c.store.Save(ctx, draft); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist completed draft", "draft_id", draft.ID, "error", err)
	}
	c.auditor.Record(ctx, audit.Event{Action: audit.ActionSubmissionAccepted, DraftID: draft.ID.String()})

	id := draft.ID
	time.AfterFunc(c.confirmDelay, func() {
		c.broadcast(models.PageContext{
			StepNumber: int(models.StepConfirmation),
			StepTitle:  models.StepConfirmation.Title(),
			Fields:     map[string]string{},
		})
		_ = c.store.Delete(context.Background(), id)
	})
}

// finishAttempt returns a failed or duplicate attempt to the signature step
// so the user can retry. Nothing from the attempt is cached.
func (c *Controller) finishAttempt(ctx context.Context, draft *models.Draft, message string) {
	draft.Status = models.StatusCollecting
	draft.LastError = message
	if err := c.store.Save(ctx, draft); err != nil {
		c.logger.ErrorContext(ctx, "failed to persist attempt result", "draft_id", draft.ID, "error", err)
	}
}

// SweepExpired discards abandoned drafts and reports the active count.
func (c *Controller) SweepExpired(ctx context.Context, ttl time.Duration) {
	for _, id := range c.store.SweepExpired(ctx, ttl) {
		c.metrics.DraftsExpired.Inc()
		c.auditor.Record(ctx, audit.Event{Action: audit.ActionDraftExpired, DraftID: id.String()})
	}
	c.metrics.ActiveDrafts.Set(float64(c.store.Len()))
}

func patientName(d *models.Draft) string {
	name := d.Identity.FirstName
	if d.Identity.MiddleName != "" {
		name += " " + d.Identity.MiddleName
	}
	return name + " " + d.Identity.LastName
}

func birthDate(d *models.Draft) string {
	if d.Identity.BirthYear == "" || d.Identity.BirthMonth == "" || d.Identity.BirthDay == "" {
		return "not provided"
	}
	return d.Identity.BirthYear + "-" + pad2(d.Identity.BirthMonth) + "-" + pad2(d.Identity.BirthDay)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
