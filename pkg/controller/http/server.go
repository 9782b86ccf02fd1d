package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/m-mizutani/relcheck/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr         string
	defaultOwner string
	defaultRepo  string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithDefaultRepository sets the repository used when a request omits
// repo_owner/repo_name
func WithDefaultRepository(owner, repo string) Option {
	return func(c *config) {
		c.defaultOwner = owner
		c.defaultRepo = repo
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	statusUC interfaces.ReleaseStatusUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(Recoverer)

	// The API is called from browser frontends on other origins, so
	// preflight must be answered permissively
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	// Health check
	router.Get("/health", handleHealth)

	// Release status endpoint
	statusHandler := NewStatusHandler(statusUC, cfg.defaultOwner, cfg.defaultRepo)
	router.Post("/api/release-status", statusHandler.Handle)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
