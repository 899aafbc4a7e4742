package document

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brightpath/internal/platform/tracer"
	dErrors "brightpath/pkg/domain-errors"
)

var signDate = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func TestHashDeterministic(t *testing.T) {
	text := RenderAgreement("Jane Doe", "1988-04-07", signDate)
	assert.Equal(t, Hash(text), Hash(text))
	assert.Len(t, Hash(text), 64)
}

func TestHashChangesOnSingleCharacterMutation(t *testing.T) {
	text := RenderAgreement("Jane Doe", "1988-04-07", signDate)
	mutated := strings.Replace(text, "Jane", "Janet", 1)
	assert.NotEqual(t, Hash(text), Hash(mutated))
}

func TestSignProducesArtifact(t *testing.T) {
	signer := NewSigner()
	text := RenderAgreement("Jane Doe", "1988-04-07", signDate)

	artifact, err := signer.Sign(context.Background(), Request{
		AgreementText: text,
		SignerName:    "Jane Doe",
		SignatureDate: signDate,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, artifact.DocumentID)
	assert.NotEmpty(t, artifact.PDF)
	assert.True(t, strings.HasPrefix(string(artifact.PDF[:5]), "%PDF-"), "output must be a PDF")
	assert.Equal(t, signDate, artifact.SignedAt)
	assert.GreaterOrEqual(t, artifact.Pages, 1)
}

// The digest covers the agreement as presented, before the signature block is
// rendered in, so two signers over the same text share a digest.
func TestDigestIndependentOfSigner(t *testing.T) {
	signer := NewSigner()
	text := RenderAgreement("Jane Doe", "1988-04-07", signDate)

	a, err := signer.Sign(context.Background(), Request{AgreementText: text, SignerName: "Jane Doe", SignatureDate: signDate})
	require.NoError(t, err)
	b, err := signer.Sign(context.Background(), Request{AgreementText: text, SignerName: "Someone Else", SignatureDate: signDate})
	require.NoError(t, err)

	assert.Equal(t, Hash(text), a.Digest)
	assert.Equal(t, a.Digest, b.Digest)
}

func TestLongAgreementFlowsToMultiplePages(t *testing.T) {
	signer := NewSigner()
	long := strings.Repeat(RenderAgreement("Jane Doe", "1988-04-07", signDate)+"\n\n", 6)

	artifact, err := signer.Sign(context.Background(), Request{
		AgreementText: long,
		SignerName:    "Jane Doe",
		SignatureDate: signDate,
	})
	require.NoError(t, err)
	assert.Greater(t, artifact.Pages, 1, "content past one page must flow, not be dropped")
}

func TestSignRejectsEmptyInputs(t *testing.T) {
	signer := NewSigner()

	_, err := signer.Sign(context.Background(), Request{AgreementText: "  ", SignerName: "Jane"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSigningFailed))

	_, err = signer.Sign(context.Background(), Request{AgreementText: "text", SignerName: ""})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeSigningFailed))
}

func TestRenderAgreementSubstitutes(t *testing.T) {
	text := RenderAgreement("Jane Doe", "1988-04-07", signDate)
	assert.Contains(t, text, "Jane Doe")
	assert.Contains(t, text, "1988-04-07")
	assert.Contains(t, text, "March 15, 2026")
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

func TestSignEmitsRenderSpan(t *testing.T) {
	rec := &recordingTracer{}
	signer := NewSigner(WithTracer(rec))
	text := RenderAgreement("Jane Doe", "1988-04-07", signDate)

	artifact, err := signer.Sign(context.Background(), Request{
		AgreementText: text,
		SignerName:    "Jane Doe",
		SignatureDate: signDate,
	})
	require.NoError(t, err)

	require.Len(t, rec.spans, 1)
	span := rec.spans[0]
	assert.Equal(t, tracer.SpanRenderPDF, span.name)
	assert.NoError(t, span.err)
	assert.Contains(t, span.attrs, tracer.Int64(tracer.AttrPages, int64(artifact.Pages)))
}

func TestSignRecordsSpanErrorOnEmptyAgreement(t *testing.T) {
	rec := &recordingTracer{}
	signer := NewSigner(WithTracer(rec))

	_, err := signer.Sign(context.Background(), Request{AgreementText: "   ", SignerName: "Jane Doe"})
	require.Error(t, err)

	require.Len(t, rec.spans, 1)
	assert.Error(t, rec.spans[0].err)
}
