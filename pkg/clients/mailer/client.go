package mailer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/techsolutionsutrecht/offerte/internal/config"
	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
)

// Client sends emails through the dispatch endpoint.
type Client interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	endpoint   string
}

// NewClient builds a dispatch endpoint client from the mail configuration.
func NewClient(cfg config.MailConfig) *APIClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	restyClient := resty.New().
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &APIClient{
		httpClient: restyClient,
		endpoint:   cfg.APIURL,
	}
}

// dispatchResponse mirrors both the success and failure bodies of the endpoint.
type dispatchResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Send posts the message and returns an error for transport failures and non-2xx replies.
func (c *APIClient) Send(ctx context.Context, msg models.EmailMessage) error {
	result := new(dispatchResponse)
	apiErr := new(dispatchResponse)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		SetResult(result).
		SetError(apiErr).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("post email to %s: %w", c.endpoint, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("email endpoint error: code=%d, message=%s, error=%s", resp.StatusCode(), apiErr.Message, apiErr.Error)
	}

	return nil
}
