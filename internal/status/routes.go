package status

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves the cached status snapshot and its live socket.
type Handler struct {
	poller *Poller
	logger *zap.Logger
}

// NewHandler wires the status routes.
func NewHandler(poller *Poller, logger *zap.Logger) *Handler {
	return &Handler{poller: poller, logger: logger}
}

// RegisterRoutes mounts the status API.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/status", h.handleStatus)
	r.Get("/ws/status", h.handleWebSocket)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.poller.Current())
}

// handleWebSocket pushes the current snapshot on connect and every
// state change afterwards. Clients that miss the socket fall back to
// polling /api/status.
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("status websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := h.poller.Subscribe()
	defer cancel()

	if err := conn.WriteJSON(h.poller.Current()); err != nil {
		return
	}

	// Reader goroutine: we never expect client messages, but reading is
	// how we learn the peer went away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("status websocket read", zap.Error(err))
				}
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case snapshot := <-updates:
			if err := conn.WriteJSON(snapshot); err != nil {
				return
			}
		}
	}
}
