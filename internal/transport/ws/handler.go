package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"whoami/internal/app"
)

// Options bounds how fast one connection may send messages and which
// origins may connect
type Options struct {
	MessagesPerSecond float64
	Burst             int

	// SameOrigin rejects browsers whose Origin host differs from the request
	// host. Off in development so a separately served client can connect.
	SameOrigin bool
}

// Handler handles WebSocket connections
type Handler struct {
	hub      *app.GameHub
	upgrader websocket.Upgrader
	opts     Options
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *app.GameHub, opts Options, logger *slog.Logger) *Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	// a nil CheckOrigin is gorilla's same-origin check
	if !opts.SameOrigin {
		upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}

	return &Handler{
		hub:      hub,
		upgrader: upgrader,
		opts:     opts,
		logger:   logger,
	}
}

// ServeHTTP upgrades the request. Every connection gets a fresh identity,
// which is also its player ID; there is no resumption.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	playerID := uuid.New().String()

	var limiter *rate.Limiter
	if h.opts.MessagesPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(h.opts.MessagesPerSecond), max(h.opts.Burst, 1))
	}

	client := NewClient(conn, h.hub, playerID, limiter, h.logger)

	h.logger.Info("websocket connected", "playerID", playerID, "remoteAddr", r.RemoteAddr)

	client.sendConnected()
	client.Run()

	h.logger.Info("websocket disconnected", "playerID", playerID)
}
