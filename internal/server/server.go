// Package server provides the HTTP API for kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/pkg/utils"
)

// maxBodyBytes caps the size of a chat request body.
const maxBodyBytes = 1 << 20

// Chatbot produces a reply for a message. It must always return a string.
type Chatbot interface {
	BestResponse(ctx context.Context, input string) string
}

// Server is the HTTP server for the chat API.
type Server struct {
	bot    Chatbot
	config *config.ServerConfig
	logger *zap.Logger
	router chi.Router
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(bot Chatbot, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	s := &Server{
		bot:    bot,
		config: cfg,
		logger: utils.OrNop(logger),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/chat", s.handleChat)
	return r
}

// Handler returns the router, for tests and embedding in other servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.Addr()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
