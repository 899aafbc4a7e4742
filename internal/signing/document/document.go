// Package document renders the financing agreement into a signed PDF artifact
// and computes the content digest of the agreement text as presented to the
// patient.
package document

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"brightpath/internal/platform/tracer"
	dErrors "brightpath/pkg/domain-errors"
)

// Artifact is the signed document produced by one sign action. It is embedded
// into the submission payload and never retained independently.
type Artifact struct {
	DocumentID string
	PDF        []byte
	// Digest is the SHA-256 of the agreement text BEFORE signature insertion:
	// an integrity checksum of what was presented, not of the final artifact.
	Digest   string
	Pages    int
	SignedAt time.Time
}

// Request carries one sign action's inputs.
type Request struct {
	AgreementText string
	SignerName    string
	SignatureDate time.Time
}

const disclosureLine = "Signature captured electronically. This record is retained with the application audit trail."

// Signer renders agreement artifacts. Safe for concurrent use.
type Signer struct {
	now    func() time.Time
	tracer tracer.Tracer
}

type Option func(*Signer)

// WithClock overrides the time source for deterministic artifacts in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

// WithTracer enables tracing of agreement rendering.
func WithTracer(t tracer.Tracer) Option {
	return func(s *Signer) {
		s.tracer = t
	}
}

func NewSigner(opts ...Option) *Signer {
	s := &Signer{now: time.Now, tracer: tracer.NewNoop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sign lays the agreement out across as many pages as it needs, appends the
// signature block, and returns the artifact together with the pre-signature
// digest. Any render failure rejects the whole sign attempt.
func (s *Signer) Sign(ctx context.Context, req Request) (*Artifact, error) {
	_, span := s.tracer.Start(ctx, tracer.SpanRenderPDF)
	artifact, err := s.render(req)
	if artifact != nil {
		span.SetAttributes(tracer.Int64(tracer.AttrPages, int64(artifact.Pages)))
	}
	span.End(err)
	return artifact, err
}

func (s *Signer) render(req Request) (*Artifact, error) {
	if strings.TrimSpace(req.AgreementText) == "" {
		return nil, dErrors.New(dErrors.CodeSigningFailed, "agreement text is empty")
	}
	if strings.TrimSpace(req.SignerName) == "" {
		return nil, dErrors.New(dErrors.CodeSigningFailed, "signer name is empty")
	}

	digest := Hash(req.AgreementText)
	signedAt := req.SignatureDate
	if signedAt.IsZero() {
		signedAt = s.now().UTC()
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetTitle("Patient Financing Agreement", false)
	pdf.SetCreationDate(signedAt)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 30)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "Patient Financing Agreement", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 5.5, req.AgreementText, "", "L", false)
	pdf.Ln(10)

	// Signature block: oblique typed name, date, and the fixed disclosure.
	pdf.SetFont("Helvetica", "I", 13)
	pdf.CellFormat(0, 7, req.SignerName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Signed on "+signedAt.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, disclosureLine, "", 1, "L", false, 0, "")

	if pdf.Err() {
		return nil, dErrors.Wrap(pdf.Error(), dErrors.CodeSigningFailed, "agreement render failed")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeSigningFailed, "agreement render failed")
	}

	return &Artifact{
		DocumentID: uuid.New().String(),
		PDF:        buf.Bytes(),
		Digest:     digest,
		Pages:      pdf.PageCount(),
		SignedAt:   signedAt,
	}, nil
}

// Hash returns the hex-encoded SHA-256 digest of the UTF-8 bytes of text.
// Used purely for integrity and audit, not authentication.
func Hash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// RenderAgreement substitutes the patient's name, date of birth, and the
// signing date into the agreement template.
func RenderAgreement(patientName, dateOfBirth string, date time.Time) string {
	return fmt.Sprintf(agreementTemplate, patientName, dateOfBirth, date.Format("January 2, 2006"))
}

const agreementTemplate = `This Patient Financing Application Agreement is entered into by %s (date of birth %s) on %s.

By signing this agreement the applicant requests that Brightpath Dental Financing review the information provided in this application in order to identify financing options for the dental treatment described herein.

The applicant authorizes Brightpath Dental Financing to obtain consumer credit reports for the purpose of evaluating this application. The applicant understands that this pre-qualification review will not impact their credit score.

The applicant consents to be contacted by phone, email, or text message regarding this application and related financing options.

The applicant confirms that all information provided in this application is accurate and complete to the best of their knowledge. Providing false information may result in denial of the application.

This application does not constitute an offer or guarantee of financing. All financing decisions are made by the reviewing lender after a complete review of the application.`
