package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/folio-cms/folio/internal/content"
	"github.com/folio-cms/folio/internal/handler"
	"github.com/folio-cms/folio/internal/mcp"
	"github.com/folio-cms/folio/internal/relay"
	"github.com/folio-cms/folio/internal/server/middleware"
	"github.com/folio-cms/folio/internal/service"
	"github.com/folio-cms/folio/internal/session"
	"github.com/folio-cms/folio/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	CORSOrigins     []string
	MaxBodySize     int64 // bytes

	// SecureCookies marks the session cookie Secure. Only development mode
	// turns it off so the dashboard works over plain http://localhost.
	SecureCookies bool

	// Requests per minute per client IP. Zero disables the limit.
	LoginRateLimit   int
	ContactRateLimit int

	// EnableMCP mounts the read-only MCP endpoint at /mcp.
	EnableMCP bool
	Version   string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:             "0.0.0.0",
		Port:             8080,
		ShutdownTimeout:  30 * time.Second,
		RequestTimeout:   30 * time.Second,
		CORSOrigins:      []string{"http://localhost:3000"},
		MaxBodySize:      1 << 20, // 1MB
		SecureCookies:    true,
		LoginRateLimit:   10,
		ContactRateLimit: 5,
		Version:          "dev",
	}
}

// Server is the top-level HTTP server for folio. It owns the Chi router, the
// document store and the session guard that protects content writes.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	content    *content.Content
	guard      *session.Guard
	relay      relay.Relay
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, authSvc *service.AuthService, rl relay.Relay, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		content: content.New(st),
		guard:   session.NewGuard(authSvc, session.CookieStore{Secure: cfg.SecureCookies}),
		relay:   rl,
		logger:  logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))

	r.NotFound(middleware.NotFound)
	r.MethodNotAllowed(middleware.MethodNotAllowed)

	// --- Health checks ---
	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)

	r.Get("/openapi.json", handler.NewOpenAPIHandler(s.cfg.Version).ServeSpec)

	r.Route("/api", func(r chi.Router) {
		if s.cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		}
		if s.cfg.MaxBodySize > 0 {
			r.Use(chimw.RequestSize(s.cfg.MaxBodySize))
		}
		r.NotFound(middleware.NotFound)
		r.MethodNotAllowed(middleware.MethodNotAllowed)

		requireSession := middleware.RequireSession(s.guard)

		auth := handler.NewAuthHandler(s.guard, s.logger)
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimit(s.cfg.LoginRateLimit, time.Minute)).Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)
			r.With(requireSession).Post("/refresh", auth.Refresh)
			r.With(requireSession).Get("/check", auth.Check)
		})

		projects := handler.NewCollectionHandler(s.content.Projects, s.logger)
		r.Get("/projects", projects.List)
		r.With(requireSession).Post("/projects", projects.Create)
		r.With(requireSession).Put("/projects", projects.Update)
		r.With(requireSession).Delete("/projects", projects.Delete)

		skills := handler.NewCollectionHandler(s.content.Skills, s.logger)
		r.Get("/skills", skills.List)
		r.With(requireSession).Post("/skills", skills.Create)
		r.With(requireSession).Put("/skills", skills.Update)
		r.With(requireSession).Delete("/skills", skills.Delete)

		// Categories are created and deleted, never edited in place.
		categories := handler.NewCollectionHandler(s.content.Categories, s.logger)
		r.Get("/categories", categories.List)
		r.With(requireSession).Post("/categories", categories.Create)
		r.With(requireSession).Delete("/categories", categories.Delete)

		hero := handler.NewHeroHandler(s.content.Hero, s.logger)
		r.Get("/hero", hero.Get)
		r.With(requireSession).Post("/hero", hero.Save)

		contact := handler.NewContactHandler(s.relay, s.logger)
		r.With(middleware.RateLimit(s.cfg.ContactRateLimit, time.Minute)).Post("/send", contact.Send)
	})

	if s.cfg.EnableMCP {
		r.Handle("/mcp", mcp.NewMCPServer(s.content, s.cfg.Version, s.logger).Handler())
	}

	s.router = r
}

// handleHealthz is a liveness probe. Returns 200 if the process is running.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// handleReadyz is a readiness probe. Returns 200 when the document store
// answers a ping, or 503 otherwise.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	checks := map[string]string{"store": "ok"}

	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.WarnContext(r.Context(), "readiness check failed",
			"driver", s.store.Driver(), "error", err)
		checks["store"] = "unavailable"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests before closing the document store.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr, "store", s.store.Driver())
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Warn("closing store", "error", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
