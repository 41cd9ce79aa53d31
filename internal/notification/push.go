package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// PushClient delivers a push message to a single device. Delivery is
// best-effort everywhere this interface is used: callers log failures and
// move on, they never fail the surrounding operation.
type PushClient interface {
	Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}

// pushMessage is the provider wire format.
type pushMessage struct {
	To    string            `json:"to"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

type httpPushClient struct {
	url    string
	apiKey string
	client *http.Client
}

// NewHTTPPushClient creates a PushClient that POSTs to the configured
// provider endpoint. The timeout bounds each delivery attempt.
func NewHTTPPushClient(url, apiKey string, timeout time.Duration) PushClient {
	return &httpPushClient{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *httpPushClient) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	payload, err := json.Marshal(pushMessage{
		To:    deviceToken,
		Title: title,
		Body:  body,
		Data:  data,
	})
	if err != nil {
		return fmt.Errorf("failed to encode push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("push provider returned status %d", resp.StatusCode)
	}

	return nil
}

type noopPushClient struct{}

// NewNoopPushClient creates a PushClient that silently accepts everything.
// Used when push delivery is disabled or unconfigured, so the rest of the
// system never has to care whether a real provider exists.
func NewNoopPushClient() PushClient {
	return noopPushClient{}
}

func (noopPushClient) Send(ctx context.Context, deviceToken, title, body string, data map[string]string) error {
	return nil
}
