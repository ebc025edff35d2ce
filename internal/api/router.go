package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/mcoot/buzzrelay/internal/api/handler"
	"github.com/mcoot/buzzrelay/internal/api/middleware"
	"github.com/mcoot/buzzrelay/internal/session"
	"github.com/mcoot/buzzrelay/internal/transport/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Coordinator *session.Coordinator
	WSConfig    ws.Config
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.Coordinator)
	healthHandler := handler.NewHealthHandler(cfg.Coordinator)
	wsHandler := ws.NewHandler(cfg.Coordinator, cfg.WSConfig, cfg.Logger)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// WebSocket endpoint
	r.Handle("/ws", recoveryMiddleware(loggingMiddleware(wsHandler))).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.WSConfig.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet},
	})
	return c.Handler(r)
}
