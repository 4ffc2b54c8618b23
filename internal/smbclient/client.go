// Package smbclient is the typed HTTP client for the SMB-backed file
// service. All share access happens behind the service's REST API; this
// layer never touches SMB itself.
package smbclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ServiceError carries a failure reported by the file service so the
// caller can surface the message verbatim.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("file service returned %d", e.StatusCode)
}

// Client calls the file service.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a file service client with a bounded per-request timeout.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// SetBaseURL swaps the backend base URL. The config watcher calls this
// from its own goroutine while requests are in flight, so access goes
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

// TestConnection checks that the service can reach the share.
func (c *Client) TestConnection(ctx context.Context) (*ConnectionInfo, error) {
	var payload struct {
		envelope
		ConnectionInfo
	}
	if err := c.getJSON(ctx, "/api/smb/test-connection", nil, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, &ServiceError{Message: payload.Error}
	}
	return &payload.ConnectionInfo, nil
}

// Browse fetches the flat listing for path. Browsing is uncached: every
// call hits the service.
func (c *Client) Browse(ctx context.Context, path string) (*Listing, error) {
	var payload struct {
		envelope
		Folders []string   `json:"folders"`
		Files   []FileInfo `json:"files"`
	}
	q := url.Values{"path": {path}}
	if err := c.getJSON(ctx, "/api/smb/browse", q, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, &ServiceError{Message: payload.Error}
	}

	listing := &Listing{Path: path, Folders: payload.Folders, Files: payload.Files}
	if listing.Folders == nil {
		listing.Folders = []string{}
	}
	if listing.Files == nil {
		listing.Files = []FileInfo{}
	}
	return listing, nil
}

// Structure fetches the folder tree rooted at path, bounded to maxDepth
// levels. The whole tree arrives in one response; there is no per-node
// lazy fetch.
func (c *Client) Structure(ctx context.Context, path string, maxDepth int) (map[string]*StructureNode, error) {
	var payload struct {
		envelope
		Structure map[string]*StructureNode `json:"structure"`
	}
	q := url.Values{"path": {path}, "max_depth": {strconv.Itoa(maxDepth)}}
	if err := c.getJSON(ctx, "/api/smb/structure", q, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, &ServiceError{Message: payload.Error}
	}
	if payload.Structure == nil {
		payload.Structure = map[string]*StructureNode{}
	}
	return payload.Structure, nil
}

// Upload stores one file under path on the share.
func (c *Client) Upload(ctx context.Context, path, filename string, content io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	if err := mw.WriteField("path", path); err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/api/smb/upload", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("file upload failed", zap.String("file", filename), zap.Error(err))
		return fmt.Errorf("file service unreachable: %w", err)
	}
	defer resp.Body.Close()

	return c.decodeEnvelope(resp)
}

// CreateFolder creates folder name under path.
func (c *Client) CreateFolder(ctx context.Context, path, name string) error {
	body, err := json.Marshal(map[string]string{"path": path, "folder_name": name})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/api/smb/create-folder", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("file service unreachable: %w", err)
	}
	defer resp.Body.Close()

	return c.decodeEnvelope(resp)
}

// Delete removes filename under path. Callers are responsible for the
// explicit user confirmation step before issuing this request.
func (c *Client) Delete(ctx context.Context, path, filename string) error {
	body, err := json.Marshal(map[string]string{"path": path, "filename": filename})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base()+"/api/smb/delete", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("file service unreachable: %w", err)
	}
	defer resp.Body.Close()

	return c.decodeEnvelope(resp)
}

// Download streams filename under path. The caller must close the
// returned reader.
func (c *Client) Download(ctx context.Context, path, filename string) (io.ReadCloser, error) {
	q := url.Values{"path": {path}, "filename": {filename}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base()+"/api/smb/download?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("file service unreachable: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var payload envelope
		if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Error != "" {
			return nil, &ServiceError{StatusCode: resp.StatusCode, Message: payload.Error}
		}
		return nil, &ServiceError{StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base() + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("file service request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("file service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &ServiceError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) decodeEnvelope(resp *http.Response) error {
	var payload envelope
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &ServiceError{StatusCode: resp.StatusCode}
		}
		return fmt.Errorf("decoding response: %w", err)
	}
	if !payload.Success {
		return &ServiceError{StatusCode: resp.StatusCode, Message: payload.Error}
	}
	return nil
}
