package chat

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T, backendURL string) (*Widget, *chi.Mux) {
	t.Helper()
	widget := newTestWidget(t, backendURL)
	r := chi.NewRouter()
	widget.RegisterRoutes(r)
	return widget, r
}

func TestHandleSubmit(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"answer": "All clear"})
	}))
	defer backend.Close()

	_, router := newTestRouter(t, backend.URL)

	body := strings.NewReader(`{"query": "status?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}
	var exchange Exchange
	if err := json.NewDecoder(rec.Body).Decode(&exchange); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if exchange.Answer != "All clear" {
		t.Errorf("answer = %q, want %q", exchange.Answer, "All clear")
	}
	if exchange.SessionID == "" {
		t.Error("response has no session ID")
	}
}

func TestHandleSubmitRequiresQuery(t *testing.T) {
	_, router := newTestRouter(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSubmitBackendErrorVerbatim(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": "assistant is warming up"})
	}))
	defer backend.Close()

	_, router := newTestRouter(t, backend.URL)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query": "hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload["error"] != "assistant is warming up" {
		t.Errorf("error = %q, want the backend's text verbatim", payload["error"])
	}
}

func TestHandleSubmitTransportErrorGenericMessage(t *testing.T) {
	_, router := newTestRouter(t, "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query": "hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if payload["error"] != genericFailure {
		t.Errorf("error = %q, want the generic fallback", payload["error"])
	}
}

func attachRequest(t *testing.T, name, contentType, docType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="file"; filename="` + name + `"`}
	hdr["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("creating part: %v", err)
	}
	part.Write(content)
	if docType != "" {
		mw.WriteField("doc_type", docType)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/chat/attach", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleAttach(t *testing.T) {
	widget, router := newTestRouter(t, "http://127.0.0.1:1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, attachRequest(t, "inv.pdf", "application/pdf", "invoice", []byte("%PDF")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", rec.Code, rec.Body)
	}
	pending := widget.Pending()
	if pending == nil {
		t.Fatal("no pending attachment after attach")
	}
	if pending.FileName != "inv.pdf" || pending.DocType != "invoice" {
		t.Errorf("pending = %+v, want inv.pdf/invoice", pending)
	}
}

func TestHandleAttachRejectsBadType(t *testing.T) {
	widget, router := newTestRouter(t, "http://127.0.0.1:1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, attachRequest(t, "run.sh", "text/x-shellscript", "", []byte("#!/bin/sh")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if widget.Pending() != nil {
		t.Error("rejected file landed in the pending slot")
	}
}

func TestHandleClearAttachment(t *testing.T) {
	widget, router := newTestRouter(t, "http://127.0.0.1:1")
	if err := widget.Attach(Attachment{FileName: "a.pdf", MediaType: "application/pdf", Size: 1}); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/chat/attach", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if widget.Pending() != nil {
		t.Error("slot not cleared")
	}
}

func TestHandleHistory(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"answer": "ok"})
	}))
	defer backend.Close()

	_, router := newTestRouter(t, backend.URL)
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"query": "hello"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d", rec.Code)
	}
	var exchange Exchange
	json.NewDecoder(rec.Body).Decode(&exchange)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat/history?session_id="+exchange.SessionID, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("history status = %d", rec.Code)
	}
	var payload struct {
		History []Message `json:"history"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if len(payload.History) != 2 {
		t.Errorf("history has %d messages, want 2", len(payload.History))
	}
}
