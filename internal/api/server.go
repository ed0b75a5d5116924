package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tokengate/internal/orchestrator"
	"tokengate/internal/storage"
)

// Server is the HTTP surface over the orchestrator: token operation
// endpoints, transaction record queries, health, and Prometheus
// metrics. It is a thin wrapper; all validation beyond JSON decoding
// lives on the request types, and all sequencing in the orchestrator.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	orch       *orchestrator.Orchestrator
	repository storage.Repository
	port       int
}

// NewServer creates a new API server instance
func NewServer(port int, orch *orchestrator.Orchestrator, repository storage.Repository) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:        mux,
		orch:       orch,
		repository: repository,
		port:       port,
	}

	s.registerRoutes()

	return s
}

// registerRoutes sets up all HTTP routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", s.handleMetrics())

	// Token operations
	s.mux.HandleFunc("/token/mint", s.handleMint)
	s.mux.HandleFunc("/token/burn", s.handleBurn)
	s.mux.HandleFunc("/token/burn-from", s.handleBurnFrom)
	s.mux.HandleFunc("/token/transfer", s.handleTransfer)
	s.mux.HandleFunc("/token/approve", s.handleApprove)

	// Transaction records
	s.mux.HandleFunc("/transactions", s.handleListTransactions)
	s.mux.HandleFunc("/transactions/", s.handleGetTransaction)
}

// Start begins serving HTTP requests, blocking until shutdown.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
