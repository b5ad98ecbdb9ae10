package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/groupclass/checkout/internal/domain"
)

const subscribePath = "/api/subscribe"

// Client posts checkout payloads to the backend over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type subscribeResult struct {
	domain.SubscribeResponse
	Error string `json:"error"`
}

// Subscribe sends req to POST /api/subscribe. An error field in the response
// body is returned as a *BackendError regardless of status code.
func (c *Client) Subscribe(ctx context.Context, req *domain.SubscribeRequest) (*domain.SubscribeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+subscribePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", subscribePath, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var out subscribeResult
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode >= 300 {
			return nil, &BackendError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, &BackendError{Status: resp.StatusCode, Message: out.Error}
	}
	if resp.StatusCode >= 300 {
		return nil, &BackendError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return &out.SubscribeResponse, nil
}
