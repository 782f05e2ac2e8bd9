// Package basecamp delivers chat lines to a Basecamp Campfire room through
// its chatbot webhook URL. The URL embeds the authentication token, so the
// client carries no separate credential.
package basecamp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type (
	Logger interface {
		DebugContext(ctx context.Context, msg string, fields ...any)
		WarnContext(ctx context.Context, msg string, fields ...any)
	}

	HTTPClient interface {
		Do(req *http.Request) (*http.Response, error)
	}

	Client struct {
		webhookURL string
		httpClient HTTPClient
		log        Logger
	}
)

// TransientError wraps network and timeout failures of the webhook call.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient webhook error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// RejectedError reports a non-2xx response from the webhook endpoint.
type RejectedError struct {
	StatusCode int
	Body       string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("webhook rejected message: status %d", e.StatusCode)
}

func NewClient(webhookURL string, httpClient HTTPClient, log Logger) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: httpClient,
		log:        log,
	}
}

type linePayload struct {
	Content string `json:"content"`
}

// CreateLine posts a single rich-text line to the Campfire room. Any 2xx
// response counts as delivered; the response body is not interpreted.
func (c *Client) CreateLine(ctx context.Context, content string) error {
	body, err := json.Marshal(linePayload{Content: content})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.DebugContext(ctx, "posting chat line", "bytes", len(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // ignore

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.log.DebugContext(ctx, "chat line delivered", "status_code", resp.StatusCode)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	c.log.WarnContext(ctx, "webhook rejected message",
		"status_code", resp.StatusCode,
		"payload", string(snippet))

	return &RejectedError{StatusCode: resp.StatusCode, Body: string(snippet)}
}
