package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/castlemilk/cardkeeper/internal/retry"
)

// SyncPath is the server route HTTPRemote posts to.
const SyncPath = "/api/v1/sync"

const maxResponseBytes = 32 << 20

// StatusError is a non-2xx reply from the server.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sync failed: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("sync failed: HTTP %d: %s", e.StatusCode, e.Message)
}

// IsRetryable is true for server-side failures and throttling.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// HTTPRemote talks to the server's sync endpoint.
type HTTPRemote struct {
	BaseURL    string
	HTTPClient *http.Client
	Retry      retry.Config
	// Token is sent as a bearer credential when set.
	Token    string
	DeviceID string
}

// NewHTTPRemote uses a 30 second client timeout and retry.DefaultSyncConfig.
func NewHTTPRemote(baseURL string) *HTTPRemote {
	return &HTTPRemote{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Retry:      retry.DefaultSyncConfig,
	}
}

type syncEnvelope struct {
	Success bool     `json:"success"`
	Data    Response `json:"data"`
	Error   string   `json:"error"`
}

// Sync posts req and decodes the enveloped Response. Transport errors and 5xx
// replies are retried with backoff; retrying is safe because equal
// timestamps never overwrite.
func (r *HTTPRemote) Sync(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode sync request: %w", err)
	}
	return retry.Do(ctx, r.Retry, func(ctx context.Context) (*Response, error) {
		return r.post(ctx, body)
	})
}

func (r *HTTPRemote) post(ctx context.Context, body []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+SyncPath, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to build sync request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.Token)
	}
	if r.DeviceID != "" {
		httpReq.Header.Set("X-Device-ID", r.DeviceID)
	}

	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sync request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read sync response: %w", err)
	}

	var env syncEnvelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: env.Error}
	}
	if decodeErr != nil {
		return nil, retry.Permanent(fmt.Errorf("failed to decode sync response: %w", decodeErr))
	}
	if !env.Success {
		return nil, retry.Permanent(fmt.Errorf("sync rejected: %s", env.Error))
	}
	return &env.Data, nil
}
