// Package web serves the embedded dashboard page.
package web

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed index.html
var indexHTML []byte

// RegisterRoutes serves the dashboard shell at the root.
func RegisterRoutes(r chi.Router) {
	r.Get("/", ServeIndex)
}

// ServeIndex serves the embedded HTML dashboard.
func ServeIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
