// Package server exposes the chat engine over HTTP: a WebSocket chat
// endpoint plus health and debug routes.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/emberworks/aria/engine"
)

// Config holds server configuration options.
type Config struct {
	Addr   string
	Model  string // reported by the health endpoint
	Logger zerolog.Logger
}

// Server is the HTTP front of the chat engine.
type Server struct {
	engine   *engine.Engine
	logger   zerolog.Logger
	model    string
	upgrader websocket.Upgrader

	httpServer *http.Server
}

// New creates a Server and wires its routes.
func New(cfg Config, eng *engine.Engine) *Server {
	s := &Server{
		engine: eng,
		logger: cfg.Logger.With().Str("component", "server").Logger(),
		model:  cfg.Model,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	router := chi.NewRouter()
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
	}).Handler)

	router.Get("/healthz", s.handleHealth)
	router.Get("/debug/user/{id}", s.handleDebugUser)
	router.Get("/ws", s.handleChat)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown is called or the listener
// fails.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Handler returns the HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
