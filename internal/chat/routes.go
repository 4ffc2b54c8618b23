package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matdash/matdash/internal/chatclient"
)

// genericFailure is shown when the backend gives us nothing usable.
const genericFailure = "Sorry, I encountered an error processing your request."

// RegisterRoutes mounts the chat widget API.
func (c *Widget) RegisterRoutes(r chi.Router) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/", c.handleSubmit)
		r.Post("/attach", c.handleAttach)
		r.Delete("/attach", c.handleClearAttachment)
		r.Get("/history", c.handleHistory)
	})
}

type submitRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

func (c *Widget) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Query == "" && c.Pending() == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	exchange, err := c.Submit(r.Context(), req.SessionID, req.Query)
	if err != nil {
		c.logger.Warn("chat submit failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": submitError(err)})
		return
	}

	writeJSON(w, http.StatusOK, exchange)
}

// submitError surfaces server-reported messages verbatim and falls back
// to a generic line for transport failures.
func submitError(err error) string {
	var be *chatclient.BackendError
	if errors.As(err, &be) && be.Message != "" {
		return be.Message
	}
	return genericFailure
}

func (c *Widget) handleAttach(w http.ResponseWriter, r *http.Request) {
	// One extra MB of headroom for the multipart framing; the real
	// size check happens against the decoded file below.
	limit := c.cfg.MaxFileSizeBytes() + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is too large or the form is malformed"})
		return
	}

	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required"})
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot read uploaded file"})
		return
	}

	att := Attachment{
		FileName:  hdr.Filename,
		MediaType: hdr.Header.Get("Content-Type"),
		DocType:   r.FormValue("doc_type"),
		Size:      int64(len(content)),
		Content:   content,
	}
	if err := c.Attach(att); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"file_name": att.FileName,
		"size":      att.Size,
	})
}

func (c *Widget) handleClearAttachment(w http.ResponseWriter, r *http.Request) {
	c.ClearAttachment()
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (c *Widget) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"history": []Message{}})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := c.store.History(r.Context(), sessionID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"history": messages})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
