package submission

import "strings"

// OutcomeStatus is the tri-state result surfaced to the wizard controller.
type OutcomeStatus string

const (
	StatusSuccess   OutcomeStatus = "success"
	StatusFailure   OutcomeStatus = "failure"
	StatusDuplicate OutcomeStatus = "duplicate"
)

// Outcome is the classified result of one submission attempt.
type Outcome struct {
	Status        OutcomeStatus
	ApplicationID string
	Message       string
}

func (o Outcome) Success() bool { return o.Status == StatusSuccess }

// User-facing messages. Raw transport errors are never surfaced.
const (
	DuplicateMessage      = "We received a recent application for this email. Please wait 24 hours before submitting again."
	GenericFailureMessage = "We encountered an issue submitting your application. Please try again."
)

// duplicateMarkers are matched case-insensitively against the endpoint's
// error text and transport errors to detect resubmission throttling.
var duplicateMarkers = []string{
	"too many requests",
	"recent application",
	"already exists",
}

// IntakeResponse is the structured reply from the remote intake endpoint.
type IntakeResponse struct {
	Success       bool   `json:"success"`
	ApplicationID string `json:"applicationId"`
	Error         string `json:"error"`
}

// Classify interprets the endpoint response and transport error into an
// Outcome. Duplicate signaling wins over generic failure so the user gets the
// actionable wait message instead of a retry prompt.
func Classify(resp *IntakeResponse, err error) Outcome {
	if err != nil {
		if isDuplicate(err.Error()) {
			return Outcome{Status: StatusDuplicate, Message: DuplicateMessage}
		}
		return Outcome{Status: StatusFailure, Message: GenericFailureMessage}
	}
	if resp == nil {
		return Outcome{Status: StatusFailure, Message: GenericFailureMessage}
	}
	if resp.Success {
		return Outcome{Status: StatusSuccess, ApplicationID: resp.ApplicationID}
	}
	if isDuplicate(resp.Error) {
		return Outcome{Status: StatusDuplicate, Message: DuplicateMessage}
	}
	message := strings.TrimSpace(resp.Error)
	if message == "" {
		message = GenericFailureMessage
	}
	return Outcome{Status: StatusFailure, Message: message}
}

func isDuplicate(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range duplicateMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
