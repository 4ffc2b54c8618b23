// Package chatclient is the typed HTTP client for the chat-answering
// backend. The backend owns all inference; this client only speaks its
// wire contract.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reply is a successful answer from POST /api/chat. Data, when present,
// is either an array of uniform records or a mapping; it is kept raw so
// the renderer can preserve key order.
type Reply struct {
	Answer string          `json:"answer"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Document is one attachment submitted through the chat widget.
type Document struct {
	FileName    string
	DocType     string
	UserMessage string
	Content     io.Reader
}

// UploadResult is the response from POST /api/chat/upload.
type UploadResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Details string          `json:"details,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// BackendError carries a server-reported failure so the caller can
// surface the message verbatim.
type BackendError struct {
	StatusCode int
	Message    string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("chat service returned %d", e.StatusCode)
}

// Client calls the chat backend.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a chat client. The timeout bounds each request; there is
// no retry — a failed submission is simply reported to the user.
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

// Query sends a natural-language question and returns the reply.
func (c *Client) Query(ctx context.Context, query string) (*Reply, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("chat query failed", zap.Error(err))
		return nil, fmt.Errorf("chat service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("decoding chat reply: %w", err)
	}
	return &reply, nil
}

// UploadDocument sends a document with its declared type and optional
// message as multipart form data.
func (c *Client) UploadDocument(ctx context.Context, doc Document) (*UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", doc.FileName)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if _, err := io.Copy(part, doc.Content); err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}
	if err := mw.WriteField("doc_type", doc.DocType); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}
	if doc.UserMessage != "" {
		if err := mw.WriteField("user_message", doc.UserMessage); err != nil {
			return nil, fmt.Errorf("building multipart body: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base()+"/api/chat/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("chat upload failed", zap.String("file", doc.FileName), zap.Error(err))
		return nil, fmt.Errorf("chat service unreachable: %w", err)
	}
	defer resp.Body.Close()

	var result UploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &BackendError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("decoding upload result: %w", err)
	}

	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = result.Message
		}
		return &result, &BackendError{StatusCode: resp.StatusCode, Message: msg}
	}
	return &result, nil
}

// decodeError turns a non-2xx response into a BackendError, keeping the
// server-provided message when one is present.
func decodeError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
		if payload.Error != "" {
			return &BackendError{StatusCode: resp.StatusCode, Message: payload.Error}
		}
		if payload.Message != "" {
			return &BackendError{StatusCode: resp.StatusCode, Message: payload.Message}
		}
	}
	return &BackendError{StatusCode: resp.StatusCode}
}
