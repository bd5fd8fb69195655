// Package httpapi exposes the task tracker over HTTP. Routing is built on
// chi; authentication, logging, and panic recovery are middleware.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dkazakov/taskdeck/internal/logging"
	"github.com/dkazakov/taskdeck/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// ServerDeps bundles everything NewRouter needs.
type ServerDeps struct {
	AuthService AuthService
	TaskService TaskAPI
	Verifier    TokenVerifier
	Metrics     *metrics.Metrics
	Registry    *prometheus.Registry
	Logger      logging.Logger
}

// NewRouter wires the full route table. The auth endpoints sit outside the
// access guard; everything under /tasks requires a verified access token.
func NewRouter(deps *ServerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(NewRecoveryMiddleware(deps.Logger))
	r.Use(NewCORSMiddleware())
	r.Use(NewLoggingMiddleware(deps.Logger, deps.Metrics))

	authHandler := NewAuthHandler(deps.AuthService, deps.Logger)
	taskHandler := NewTaskHandler(deps.TaskService, deps.Logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)
		r.With(NewAccessGuard(deps.Verifier, deps.Metrics)).Post("/logout", authHandler.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(NewAccessGuard(deps.Verifier, deps.Metrics))

		r.Route("/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.Create)
			r.Get("/", taskHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.Patch("/", taskHandler.Update)
				r.Delete("/", taskHandler.Delete)
				r.Patch("/toggle", taskHandler.Toggle)

				r.Post("/attachments", taskHandler.Attach)
				r.Get("/attachments", taskHandler.ListAttachments)
			})
		})
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("TaskDeck API is running"))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))
	}

	return r
}

// Server wraps http.Server with lifecycle plumbing.
type Server struct {
	httpServer *http.Server
	logger     logging.Logger
}

func NewServer(addr string, handler http.Handler, logger logging.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting http server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until the context expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "stopping http server")
	return s.httpServer.Shutdown(ctx)
}
