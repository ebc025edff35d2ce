package ws

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/buzzrelay/internal/model"
	"github.com/mcoot/buzzrelay/internal/session"
)

// Session is the part of the coordinator the transport drives
type Session interface {
	Connect(ctx context.Context, peer session.Peer) (model.ConnectionID, error)
	Receive(ctx context.Context, id model.ConnectionID, raw []byte) error
	Disconnect(ctx context.Context, id model.ConnectionID) error
}

// Config holds websocket settings
type Config struct {
	// SendBufferSize bounds each connection's outbound queue
	SendBufferSize int
	MaxMessageSize int64
	WriteWait      time.Duration
	PongWait       time.Duration
	// PingPeriod must be less than PongWait
	PingPeriod time.Duration
	// AllowedOrigins lists browser origins that may connect. Empty or "*" allows any.
	AllowedOrigins []string
}

// DefaultConfig returns the default websocket settings
func DefaultConfig() Config {
	return Config{
		SendBufferSize: 256,
		MaxMessageSize: 4096,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     54 * time.Second,
	}
}

// Handler upgrades HTTP requests and pumps messages between sockets and the session
type Handler struct {
	session  Session
	config   Config
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new websocket Handler
func NewHandler(sess Session, config Config, logger *slog.Logger) *Handler {
	h := &Handler{
		session: sess,
		config:  config,
		logger:  logger.With(slog.String("component", "ws")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeHTTP handles one websocket connection for its whole lifetime
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	// The connection outlives the request context once hijacked
	ctx := context.WithoutCancel(r.Context())

	client := newClient(conn, h.config, h.logger)
	id, err := h.session.Connect(ctx, client)
	if err != nil {
		h.logger.Error("failed to register connection", slog.Any("error", err))
		_ = conn.Close()
		return
	}
	client.logger = h.logger.With(slog.String("connection_id", string(id)))

	go client.writePump()
	client.readPump(ctx, id, h.session)

	if err := h.session.Disconnect(ctx, id); err != nil {
		client.logger.Warn("failed to disconnect", slog.Any("error", err))
	}
	client.Close()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.config.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(h.config.AllowedOrigins, "*") || slices.Contains(h.config.AllowedOrigins, origin)
}
