// Package notify emails a submission summary to configured recipients after a
// successful intake. Delivery is strictly fire-and-forget: failures are logged
// and never affect the outcome already returned to the applicant.
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// Summary describes one accepted submission.
type Summary struct {
	ApplicationID string
	PatientName   string
	PatientEmail  string
	Practice      string
	SubmittedAt   time.Time
}

// Notifier delivers submission summaries.
type Notifier interface {
	SendSubmissionSummary(ctx context.Context, summary Summary) error
}

// Noop is used when no SMTP endpoint is configured.
type Noop struct{}

func (Noop) SendSubmissionSummary(context.Context, Summary) error { return nil }

// SMTPNotifier sends plain-text summaries through a single SMTP endpoint.
type SMTPNotifier struct {
	addr       string
	from       string
	recipients []string
}

func NewSMTPNotifier(addr, from string, recipients []string) *SMTPNotifier {
	return &SMTPNotifier{addr: addr, from: from, recipients: recipients}
}

func (n *SMTPNotifier) SendSubmissionSummary(_ context.Context, summary Summary) error {
	if len(n.recipients) == 0 {
		return nil
	}
	body := buildMessage(n.from, n.recipients, summary)
	return smtp.SendMail(n.addr, nil, n.from, n.recipients, body)
}

func buildMessage(from string, recipients []string, s Summary) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(recipients, ", "))
	fmt.Fprintf(&b, "Subject: New financing application %s\r\n", s.ApplicationID)
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "Application %s was submitted on %s.\r\n", s.ApplicationID, s.SubmittedAt.Format(time.RFC1123))
	fmt.Fprintf(&b, "Patient: %s <%s>\r\n", s.PatientName, s.PatientEmail)
	if s.Practice != "" {
		fmt.Fprintf(&b, "Referring practice: %s\r\n", s.Practice)
	}
	return []byte(b.String())
}

var (
	_ Notifier = (*SMTPNotifier)(nil)
	_ Notifier = Noop{}
)
