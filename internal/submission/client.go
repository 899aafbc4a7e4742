package submission

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	dErrors "brightpath/pkg/domain-errors"
)

// IntakeClient hands a normalized payload to the remote intake endpoint.
//
// Error contract: a non-nil error means the request never produced a usable
// structured response (network failure, timeout, malformed body). A non-2xx
// status with a parseable body is NOT an error; the response carries the
// endpoint's own failure signaling for classification.
type IntakeClient interface {
	Submit(ctx context.Context, payload Payload) (*IntakeResponse, error)
}

//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks IntakeClient

const intakeTimeout = 30 * time.Second

// HTTPIntakeClient posts applications over HTTPS.
type HTTPIntakeClient struct {
	client *resty.Client
	url    string
}

func NewHTTPIntakeClient(url, apiKey string) *HTTPIntakeClient {
	client := resty.New().SetTimeout(intakeTimeout)
	if apiKey != "" {
		client.SetHeader("Authorization", "Bearer "+apiKey)
	}
	return &HTTPIntakeClient{client: client, url: url}
}

func (c *HTTPIntakeClient) Submit(ctx context.Context, payload Payload) (*IntakeResponse, error) {
	if c.url == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "intake endpoint not configured")
	}

	var out IntakeResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(&out).
		SetError(&out).
		Post(c.url)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "intake request failed: "+err.Error())
	}

	// Non-2xx with an empty parsed body means the endpoint gave us nothing
	// structured to classify.
	if !resp.IsSuccess() && !out.Success && out.Error == "" {
		return nil, dErrors.New(dErrors.CodeSubmissionRejected, "intake endpoint returned "+resp.Status())
	}
	return &out, nil
}

var _ IntakeClient = (*HTTPIntakeClient)(nil)
