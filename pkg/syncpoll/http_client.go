package syncpoll

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"prepmail-backend/internal/sync/domain"
)

// HTTPStatusClient is a StatusClient backed by the sync HTTP endpoints
type HTTPStatusClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPStatusClient creates a client for baseURL (e.g.
// "http://localhost:8080") authenticating with a bearer token
func NewHTTPStatusClient(baseURL, token string) *HTTPStatusClient {
	return &HTTPStatusClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPStatusClient) FetchStatus(ctx context.Context) (*domain.SyncStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/sync/status", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}

	var status domain.SyncStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return &status, nil
}

func (c *HTTPStatusClient) StartSync(ctx context.Context, opts Options) (*domain.SyncStatus, error) {
	body, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sync/start", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusAccepted:
		var status domain.SyncStatus
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			return nil, fmt.Errorf("failed to decode status: %w", err)
		}
		return &status, nil
	case http.StatusConflict:
		return nil, ErrConflict
	default:
		return nil, fmt.Errorf("start endpoint returned %d", resp.StatusCode)
	}
}
