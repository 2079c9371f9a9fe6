// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apihandler "github.com/prismfin/prism/internal/api/handler/api"
	"github.com/prismfin/prism/internal/api/middleware"
	"github.com/prismfin/prism/internal/api/response"
	"github.com/prismfin/prism/internal/chat"
	"github.com/prismfin/prism/internal/metrics"
	"github.com/prismfin/prism/internal/storage/archive"
	"github.com/prismfin/prism/internal/upload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the PRISM HTTP server.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// Deps are the services the routes dispatch to. Chat may be nil when no
// LLM provider is configured.
type Deps struct {
	Quotes      apihandler.QuoteReader
	Uploads     *upload.Store
	Archive     archive.Storage
	Chat        *chat.Service
	Metrics     *metrics.Registry
	UploadLimit int64
}

// NewServer creates the HTTP server and wires all routes.
func NewServer(cfg Config, deps Deps, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
	}

	s.setupRoutes(cfg, deps)
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes(cfg Config, deps Deps) {
	symbols := apihandler.NewSymbolsHandler(deps.Quotes, deps.Metrics)
	uploads := apihandler.NewUploadsHandler(deps.Uploads, deps.Archive, deps.Metrics, deps.UploadLimit, s.logger)
	chatHandler := apihandler.NewChatHandler(deps.Chat, deps.Metrics)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/symbols/{symbol}/history", symbols.History)
	api.HandleFunc("GET /api/v1/symbols/{symbol}/metrics", symbols.Metrics)
	api.HandleFunc("GET /api/v1/symbols/{symbol}/forecast", symbols.Forecast)

	api.HandleFunc("POST /api/v1/uploads", uploads.Create)
	api.HandleFunc("GET /api/v1/uploads", uploads.List)
	api.HandleFunc("GET /api/v1/uploads/{id}", uploads.Get)
	api.HandleFunc("GET /api/v1/uploads/{id}/metrics", uploads.Metrics)
	api.HandleFunc("GET /api/v1/uploads/{id}/forecast", uploads.Forecast)

	api.HandleFunc("POST /api/v1/chat", chatHandler.Post)

	// Auth, request logging and HTTP metrics wrap the API routes only.
	var handler http.Handler = api
	handler = middleware.APIKeyAuth(cfg.APIKey)(handler)
	if deps.Metrics != nil {
		handler = deps.Metrics.HTTPMiddleware(handler)
	}
	handler = metrics.LoggingMiddleware(s.logger)(handler)

	s.mux.Handle("/api/v1/", handler)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)

	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle(path, promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the root mux, used by tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
