package http

import (
	"context"
	"net/http"
	"time"

	"github.com/compozy/m2release/internal/domain"
	"github.com/compozy/m2release/internal/orchestrator"
	"github.com/compozy/m2release/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	// DefaultIdentityHeader carries the caller identity set by an authenticating proxy.
	DefaultIdentityHeader = "X-Forwarded-User"
	// DefaultMaxSubmitBytes bounds the body of a release form submission.
	DefaultMaxSubmitBytes int64 = 32 << 20
)

// ReleaseActions is the release behaviour exposed over HTTP.
type ReleaseActions interface {
	View(ctx context.Context, caller, projectName string) (*usecase.PlanView, error)
	Submit(ctx context.Context, caller, projectName string, decode orchestrator.DecodeFunc) (*orchestrator.SubmitResult, error)
	LastRelease(ctx context.Context, caller, projectName string) (*domain.QueuedBuild, error)
}

// config holds internal HTTP server configuration
type config struct {
	addr           string
	identityHeader string
	maxSubmitBytes int64
	logger         *zap.Logger
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithIdentityHeader sets the request header that names the caller
func WithIdentityHeader(header string) Option {
	return func(c *config) {
		if header != "" {
			c.identityHeader = header
		}
	}
}

// WithMaxSubmitBytes sets the largest accepted release form body
func WithMaxSubmitBytes(n int64) Option {
	return func(c *config) {
		if n > 0 {
			c.maxSubmitBytes = n
		}
	}
}

// WithLogger sets the logger used for access logs and handler errors
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(actions ReleaseActions, opts ...Option) (*Server, error) {
	cfg := &config{
		addr:           "localhost:8080",
		identityHeader: DefaultIdentityHeader,
		maxSubmitBytes: DefaultMaxSubmitBytes,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(cfg.logger))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth(cfg.logger))

	h := &releaseHandler{
		actions:        actions,
		identityHeader: cfg.identityHeader,
		maxSubmitBytes: cfg.maxSubmitBytes,
		logger:         cfg.logger,
	}
	router.Route("/job/{project}", func(r chi.Router) {
		r.Get("/m2release", h.handleView)
		r.Get("/m2release/", h.handleView)
		r.Post("/m2release/submit", h.handleSubmit)
		r.Get("/m2release/failed", h.handleFailed)
		r.Get("/"+domain.LastReleasePermalink.ID, h.handleLastRelease)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}
	return server, nil
}
