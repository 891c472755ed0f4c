// Package api provides the HTTP layer over the evaluation engine.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opencompliance/kestrel/internal/domain"
	"github.com/opencompliance/kestrel/internal/metrics"
)

// Server wraps the HTTP server with routing and middleware.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a configured API server.
func NewServer(cfg domain.ServerConfig, handler *Handler, m *metrics.Metrics) *Server {
	router := chi.NewRouter()

	// Global middleware, outermost first.
	router.Use(CORSMiddleware)
	router.Use(RecoverMiddleware)
	router.Use(TracingMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(middleware.RealIP)
	router.Use(middleware.Compress(5))
	if m != nil {
		router.Use(m.Middleware)
	}

	// Probes and metrics.
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)
	if m != nil {
		router.Handle("/metrics", m.Handler())
	}

	// Evaluation surface.
	router.Route("/evaluate", func(r chi.Router) {
		r.Post("/transaction", handler.EvaluateTransaction)
		r.Post("/kyc", handler.EvaluateKYC)
		r.Post("/communication", handler.EvaluateCommunication)
	})

	// Audit reads.
	router.Get("/evaluations/{id}", handler.GetEvaluation)
	router.Get("/transactions/{id}", handler.GetTransaction)
	router.Get("/communications/{id}", handler.GetCommunication)
	router.Get("/verifications/{id}", handler.GetVerification)
	router.Get("/customers/{id}/verifications", handler.ListCustomerVerifications)
	router.Get("/entities/{id}/evaluations", handler.ListEntityEvaluations)

	// Custom rule management.
	router.Route("/rules", func(r chi.Router) {
		r.Get("/", handler.ListRules)
		r.Post("/", handler.CreateRule)
		r.Post("/reload", handler.ReloadRules)
		r.Get("/{id}", handler.GetRule)
	})

	// Reference data and reporting.
	router.Get("/regulatory/updates", handler.RegulatoryUpdates)
	router.Get("/reports/{entityId}", handler.ComplianceReport)

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start begins listening for HTTP requests. Blocks until the server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the chi router, used by tests to drive requests without a
// listener.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the underlying API handler.
func (s *Server) Handler() *Handler {
	return s.handler
}
