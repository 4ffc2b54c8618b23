package files

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matdash/matdash/internal/smbclient"
)

// Handler serves the file browser API.
type Handler struct {
	browser   *Browser
	uploader  *Uploader
	client    *smbclient.Client
	treeDepth int
	logger    *zap.Logger
}

// NewHandler wires the browser routes together.
func NewHandler(browser *Browser, uploader *Uploader, client *smbclient.Client, treeDepth int, logger *zap.Logger) *Handler {
	return &Handler{
		browser:   browser,
		uploader:  uploader,
		client:    client,
		treeDepth: treeDepth,
		logger:    logger,
	}
}

// RegisterRoutes mounts the file browser API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/files", func(r chi.Router) {
		r.Get("/browse", h.handleBrowse)
		r.Get("/search", h.handleSearch)
		r.Post("/view", h.handleSetView)
		r.Get("/tree", h.handleTree)
		r.Post("/upload", h.handleUpload)
		r.Post("/folder", h.handleCreateFolder)
		r.Delete("/", h.handleDelete)
		r.Get("/download", h.handleDownload)
		r.Get("/connection", h.handleConnection)
	})
}

func (h *Handler) handleBrowse(w http.ResponseWriter, r *http.Request) {
	view, err := h.browser.Browse(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		h.serviceError(w, "browse failed", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.browser.Filter(r.URL.Query().Get("query")))
}

func (h *Handler) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode ViewMode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	view, err := h.browser.SetView(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleTree(w http.ResponseWriter, r *http.Request) {
	depth := h.treeDepth
	if v := r.URL.Query().Get("max_depth"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			depth = n
		}
	}
	structure, rendered, err := Tree(r.Context(), h.client, r.URL.Query().Get("path"), depth)
	if err != nil {
		h.serviceError(w, "tree fetch failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"structure": structure,
		"html":      rendered,
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed upload form"})
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "no files provided"})
		return
	}
	path := r.FormValue("path")

	uploads := make([]Upload, 0, len(headers))
	var open []io.Closer
	defer func() {
		for _, c := range open {
			c.Close()
		}
	}()
	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cannot read uploaded file"})
			return
		}
		open = append(open, f)
		uploads = append(uploads, Upload{Name: hdr.Filename, Content: f})
	}

	batch := h.uploader.UploadAll(r.Context(), path, uploads, nil)

	// One listing refresh per batch, however many files it carried.
	view, err := h.browser.Browse(r.Context(), path)
	if err != nil {
		h.logger.Warn("listing refresh after upload failed", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]any{"batch": batch})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"batch": batch, "view": view})
}

func (h *Handler) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
		Name string `json:"folder_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "folder_name is required"})
		return
	}

	if err := h.client.CreateFolder(r.Context(), req.Path, req.Name); err != nil {
		h.serviceError(w, "create folder failed", err)
		return
	}
	view, err := h.browser.Refresh(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "view": view})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path     string `json:"path"`
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filename is required"})
		return
	}

	if err := h.client.Delete(r.Context(), req.Path, req.Filename); err != nil {
		h.serviceError(w, "delete failed", err)
		return
	}
	view, err := h.browser.Refresh(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "view": view})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("filename")
	if filename == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "filename is required"})
		return
	}

	body, err := h.client.Download(r.Context(), r.URL.Query().Get("path"), filename)
	if err != nil {
		h.serviceError(w, "download failed", err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Warn("streaming download failed", zap.String("file", filename), zap.Error(err))
	}
}

func (h *Handler) handleConnection(w http.ResponseWriter, r *http.Request) {
	info, err := h.client.TestConnection(r.Context())
	if err != nil {
		h.serviceError(w, "connection test failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"server":        info.Server,
		"share":         info.Share,
		"folders_count": info.FoldersCount,
	})
}

// serviceError surfaces file-service messages verbatim; transport
// failures get a generic line.
func (h *Handler) serviceError(w http.ResponseWriter, what string, err error) {
	h.logger.Warn(what, zap.Error(err))
	var se *smbclient.ServiceError
	if errors.As(err, &se) && se.Message != "" {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": se.Message})
		return
	}
	writeJSON(w, http.StatusBadGateway, map[string]string{"error": "file service is unavailable"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
