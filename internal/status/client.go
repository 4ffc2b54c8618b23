// Package status tracks the health of the automation backend and feeds
// the dashboard's status badge.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Health is the automation backend's own health report.
type Health struct {
	N8NLive             bool   `json:"n8n_live"`
	AIFeaturesAvailable bool   `json:"ai_features_available"`
	Mode                string `json:"mode,omitempty"`
	Details             string `json:"details,omitempty"`
}

// Client calls the status endpoints of the automation backend.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a status client. The timeout bounds each probe so a
// hung backend reads as offline instead of blocking the poll loop.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SetBaseURL swaps the backend base URL. The config watcher calls this
// from its own goroutine while the poller is probing, so access goes
// through the mutex.
func (c *Client) SetBaseURL(u string) {
	c.mu.Lock()
	c.baseURL = u
	c.mu.Unlock()
}

func (c *Client) base() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Fetch probes the backend's health endpoint.
func (c *Client) Fetch(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base()+"/api/dashboard/n8n-status", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}

	var health Health
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("decoding status: %w", err)
	}
	return &health, nil
}

// PendingSuggestions returns how many AI suggestions await review.
func (c *Client) PendingSuggestions(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base()+"/api/ai-suggestions/pending", nil)
	if err != nil {
		return 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("suggestions probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("suggestions endpoint returned %d", resp.StatusCode)
	}

	var suggestions []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&suggestions); err != nil {
		return 0, fmt.Errorf("decoding suggestions: %w", err)
	}
	return len(suggestions), nil
}
