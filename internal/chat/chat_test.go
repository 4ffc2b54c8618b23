package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/matdash/matdash/internal/chatclient"
	"github.com/matdash/matdash/internal/config"
	"github.com/matdash/matdash/internal/db"
)

func newTestWidget(t *testing.T, backendURL string) *Widget {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	logger := zap.NewNop()
	client := chatclient.New(backendURL, 5*time.Second, logger)
	return New(client, NewStore(database), config.DefaultConfig(), logger)
}

func TestAttachRejectsDisallowedTypeWithoutBackendCall(t *testing.T) {
	var calls atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer backend.Close()

	widget := newTestWidget(t, backend.URL)
	err := widget.Attach(Attachment{
		FileName:  "report.exe",
		MediaType: "application/x-msdownload",
		Size:      100,
		Content:   []byte("MZ"),
	})
	if !errors.Is(err, ErrBadFileType) {
		t.Fatalf("Attach error = %v, want ErrBadFileType", err)
	}
	if calls.Load() != 0 {
		t.Errorf("backend saw %d requests, want 0", calls.Load())
	}
	if widget.Pending() != nil {
		t.Error("rejected attachment landed in the pending slot")
	}
}

func TestAttachRejectsOversizeWithoutBackendCall(t *testing.T) {
	var calls atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer backend.Close()

	widget := newTestWidget(t, backend.URL)
	err := widget.Attach(Attachment{
		FileName:  "huge.pdf",
		MediaType: "application/pdf",
		Size:      widget.cfg.MaxFileSizeBytes() + 1,
	})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("Attach error = %v, want ErrFileTooLarge", err)
	}
	if calls.Load() != 0 {
		t.Errorf("backend saw %d requests, want 0", calls.Load())
	}
}

func TestAttachReplacesPreviousSelection(t *testing.T) {
	widget := newTestWidget(t, "http://127.0.0.1:1")

	for _, name := range []string{"first.pdf", "second.pdf"} {
		err := widget.Attach(Attachment{
			FileName:  name,
			MediaType: "application/pdf",
			Size:      10,
			Content:   []byte("%PDF"),
		})
		if err != nil {
			t.Fatalf("Attach(%s): %v", name, err)
		}
	}

	pending := widget.Pending()
	if pending == nil || pending.FileName != "second.pdf" {
		t.Fatalf("pending = %+v, want second.pdf only", pending)
	}
}

func TestAttachDefaultsDocType(t *testing.T) {
	widget := newTestWidget(t, "http://127.0.0.1:1")
	if err := widget.Attach(Attachment{FileName: "a.pdf", MediaType: "application/pdf", Size: 1}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if got := widget.Pending().DocType; got != "other" {
		t.Errorf("DocType = %q, want %q", got, "other")
	}
}

func TestSubmitQueryRendersAndRecords(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s, want /api/chat", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"answer": "There are **3** open invoices",
			"data":   []map[string]any{{"invoice": "INV-1", "total_amount": 100}},
		})
	}))
	defer backend.Close()

	widget := newTestWidget(t, backend.URL)
	exchange, err := widget.Submit(context.Background(), "", "open invoices?")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if exchange.SessionID == "" {
		t.Error("Submit did not create a session")
	}
	if !strings.Contains(exchange.HTML, "<strong>3</strong>") {
		t.Errorf("HTML %q did not render markdown", exchange.HTML)
	}
	if !strings.Contains(exchange.HTML, "AED 100.00") {
		t.Errorf("HTML %q did not render the data table", exchange.HTML)
	}

	history, err := widget.store.History(context.Background(), exchange.SessionID, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d messages, want 2", len(history))
	}
	if history[0].Sender != SenderUser || history[1].Sender != SenderAI {
		t.Errorf("history order = %s, %s; want user, ai", history[0].Sender, history[1].Sender)
	}
}

func TestSubmitReusesExistingSession(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"answer": "ok"})
	}))
	defer backend.Close()

	widget := newTestWidget(t, backend.URL)
	first, err := widget.Submit(context.Background(), "", "hello")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	second, err := widget.Submit(context.Background(), first.SessionID, "again")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("session = %s, want reuse of %s", second.SessionID, first.SessionID)
	}
}

func TestSubmitDocumentConsumesSlotAndUploads(t *testing.T) {
	var uploads atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/upload" {
			t.Errorf("path = %s, want /api/chat/upload", r.URL.Path)
		}
		uploads.Add(1)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart: %v", err)
		}
		if got := r.FormValue("doc_type"); got != "invoice" {
			t.Errorf("doc_type = %q, want invoice", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "Invoice stored",
		})
	}))
	defer backend.Close()

	widget := newTestWidget(t, backend.URL)
	err := widget.Attach(Attachment{
		FileName:  "inv.pdf",
		MediaType: "application/pdf",
		DocType:   "invoice",
		Size:      4,
		Content:   []byte("%PDF"),
	})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	exchange, err := widget.Submit(context.Background(), "", "process this")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if uploads.Load() != 1 {
		t.Fatalf("backend saw %d uploads, want 1", uploads.Load())
	}
	if exchange.Answer != "Invoice stored" {
		t.Errorf("answer = %q, want backend message", exchange.Answer)
	}
	if widget.Pending() != nil {
		t.Error("pending slot not cleared after send")
	}
}

func TestSubmitDocumentSlotClearedOnFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   "unsupported document layout",
		})
	}))
	defer backend.Close()

	widget := newTestWidget(t, backend.URL)
	if err := widget.Attach(Attachment{FileName: "x.pdf", MediaType: "application/pdf", Size: 1, Content: []byte("x")}); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	_, err := widget.Submit(context.Background(), "", "")
	var be *chatclient.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("Submit error = %v, want BackendError", err)
	}
	if be.Message != "unsupported document layout" {
		t.Errorf("message = %q, want the server's text verbatim", be.Message)
	}
	if widget.Pending() != nil {
		t.Error("pending slot survived a failed send")
	}
}

func TestClearAttachment(t *testing.T) {
	widget := newTestWidget(t, "http://127.0.0.1:1")
	if err := widget.Attach(Attachment{FileName: "a.png", MediaType: "image/png", Size: 1}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	widget.ClearAttachment()
	if widget.Pending() != nil {
		t.Error("slot not empty after ClearAttachment")
	}
}
