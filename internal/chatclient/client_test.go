package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, 5*time.Second, zap.NewNop())
}

func TestQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pending deliveries", req["query"])

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"answer":"3 deliveries pending","data":[{"po":"PO-1"}]}`)
	})

	reply, err := c.Query(context.Background(), "pending deliveries")
	require.NoError(t, err)
	assert.Equal(t, "3 deliveries pending", reply.Answer)
	assert.JSONEq(t, `[{"po":"PO-1"}]`, string(reply.Data))
}

func TestQueryServerErrorSurfacesMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"error":"query parser exploded"}`)
	})

	_, err := c.Query(context.Background(), "anything")
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "query parser exploded", be.Message)
	assert.Equal(t, http.StatusInternalServerError, be.StatusCode)
}

func TestQueryTransportError(t *testing.T) {
	c := New("http://127.0.0.1:1", time.Second, zap.NewNop())
	_, err := c.Query(context.Background(), "anything")
	require.Error(t, err)

	var be *BackendError
	assert.False(t, errors.As(err, &be), "transport errors are not backend errors")
}

func TestSetBaseURLDuringRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"answer":"ok"}`)
	}))
	defer srv.Close()
	c := New(srv.URL, 5*time.Second, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.SetBaseURL(srv.URL)
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := c.Query(context.Background(), "q"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestUploadDocument(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "invoice", r.FormValue("doc_type"))
		assert.Equal(t, "please extract totals", r.FormValue("user_message"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "invoice.pdf", hdr.Filename)
		content, _ := io.ReadAll(f)
		assert.Equal(t, "%PDF-fake", string(content))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"message":"Document processed","data":{"total_amount":1234.5}}`)
	})

	result, err := c.UploadDocument(context.Background(), Document{
		FileName:    "invoice.pdf",
		DocType:     "invoice",
		UserMessage: "please extract totals",
		Content:     strings.NewReader("%PDF-fake"),
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "Document processed", result.Message)
}

func TestUploadDocumentFailureVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":false,"error":"unsupported document layout"}`)
	})

	_, err := c.UploadDocument(context.Background(), Document{
		FileName: "odd.pdf",
		DocType:  "other",
		Content:  strings.NewReader("x"),
	})
	require.Error(t, err)

	var be *BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "unsupported document layout", be.Message)
}
