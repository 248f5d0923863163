// Package server exposes the Rumbo HTTP API.
//
// Routes:
//
//   - POST /chat     — process one conversation turn for a user.
//   - GET  /careers  — list the loaded career corpus.
//   - GET  /healthz  — liveness probe.
//   - GET  /readyz   — readiness probe.
//   - GET  /metrics  — Prometheus scrape endpoint.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rumbo-ai/rumbo/internal/guidance"
	"github.com/rumbo-ai/rumbo/internal/health"
	"github.com/rumbo-ai/rumbo/internal/observe"
	"github.com/rumbo-ai/rumbo/pkg/career"
)

// shutdownTimeout bounds graceful shutdown; in-flight turns past this point
// are abandoned.
const shutdownTimeout = 10 * time.Second

// Deps holds everything the HTTP layer needs. All fields are required.
type Deps struct {
	Orchestrator *guidance.Orchestrator
	Index        *career.Index
	Health       *health.Handler
	Metrics      *observe.Metrics
}

// NewHandler assembles the Rumbo router.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(observe.Middleware(deps.Metrics))

	r.Post("/chat", handleChat(deps))
	r.Get("/careers", handleListCareers(deps))
	deps.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

// Server wraps an [http.Server] with graceful shutdown tied to a context.
type Server struct {
	srv *http.Server
}

// New creates a Server listening on addr and serving the Rumbo API.
func New(addr string, deps Deps) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(deps),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Run serves until ctx is cancelled or the listener fails, then shuts down
// gracefully. It returns nil on a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

// requestID ensures every request carries an X-Request-ID header, generating
// one when the client did not send one. The ID is echoed on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
