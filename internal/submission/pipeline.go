package submission

import (
	"context"
	"log/slog"
	"time"

	"brightpath/internal/application/models"
	"brightpath/internal/platform/tracer"
	"brightpath/internal/signing/audittrail"
	"brightpath/internal/signing/document"
	"brightpath/internal/submission/notify"
)

// Pipeline maps a completed draft into the intake payload, makes exactly one
// submission attempt, and classifies the result. It never retries: the caller
// owns the decision to re-run the whole sign action.
type Pipeline struct {
	client   IntakeClient
	notifier notify.Notifier
	logger   *slog.Logger
	tracer   tracer.Tracer
}

type PipelineOption func(*Pipeline)

func WithNotifier(n notify.Notifier) PipelineOption {
	return func(p *Pipeline) {
		p.notifier = n
	}
}

func WithTracer(t tracer.Tracer) PipelineOption {
	return func(p *Pipeline) {
		p.tracer = t
	}
}

func NewPipeline(client IntakeClient, logger *slog.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		client:   client,
		notifier: notify.Noop{},
		logger:   logger,
		tracer:   tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit performs the single submission attempt for one sign action.
func (p *Pipeline) Submit(ctx context.Context, draft *models.Draft, artifact *document.Artifact, trail audittrail.Trail) Outcome {
	ctx, span := p.tracer.Start(ctx, tracer.SpanSubmit,
		tracer.String(tracer.AttrDraftID, draft.ID.String()),
	)

	payload := BuildPayload(draft, artifact, trail)
	resp, err := p.client.Submit(ctx, payload)
	outcome := Classify(resp, err)
	span.SetAttributes(tracer.String(tracer.AttrOutcome, string(outcome.Status)))
	span.End(err)

	switch outcome.Status {
	case StatusSuccess:
		p.logger.InfoContext(ctx, "application submitted",
			"draft_id", draft.ID,
			"application_id", outcome.ApplicationID,
		)
		p.notifyAsync(draft, outcome)
	case StatusDuplicate:
		p.logger.WarnContext(ctx, "duplicate submission throttled", "draft_id", draft.ID)
	default:
		p.logger.ErrorContext(ctx, "submission failed",
			"draft_id", draft.ID,
			"error", err,
			"endpoint_error", respError(resp),
		)
	}
	return outcome
}

// notifyAsync fires the summary email without blocking the outcome. A fresh
// context detaches delivery from the request lifecycle.
func (p *Pipeline) notifyAsync(draft *models.Draft, outcome Outcome) {
	summary := notify.Summary{
		ApplicationID: outcome.ApplicationID,
		PatientName:   draft.Identity.FirstName + " " + draft.Identity.LastName,
		PatientEmail:  draft.Contact.Email,
		Practice:      draft.Referral.PracticeName,
		SubmittedAt:   time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := p.notifier.SendSubmissionSummary(ctx, summary); err != nil {
			p.logger.Error("submission summary email failed",
				"application_id", summary.ApplicationID,
				"error", err,
			)
		}
	}()
}

func respError(resp *IntakeResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Error
}
