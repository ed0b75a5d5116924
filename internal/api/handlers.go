package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tokengate/internal/orchestrator"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// handleIndex returns basic service information
// GET / - Service info and available endpoints
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	info := map[string]interface{}{
		"service":     "tokengate",
		"version":     "1.0.0",
		"description": "Custody-mediated tokenized asset gateway",
		"endpoints": map[string]string{
			"GET /":                  "This page - Service information",
			"GET /health":            "Health check endpoint",
			"GET /metrics":           "Prometheus metrics for monitoring",
			"POST /token/mint":       "Issue tokens to a wallet",
			"POST /token/burn":       "Redeem tokens held by the institution",
			"POST /token/burn-from":  "Redeem tokens from an approved account",
			"POST /token/transfer":   "Transfer tokens to a counterparty by routing key",
			"POST /token/approve":    "Grant a spender an allowance",
			"GET /transactions":      "List transaction records (supports ?limit=, ?offset=)",
			"GET /transactions/{id}": "Get one transaction record",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// handleHealth returns health status
// GET /health - Health check for monitoring systems
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.repository.Ping(ctx); err != nil {
		slog.Error("Health check failed", "error", err)
		s.sendError(w, "Database unhealthy", http.StatusServiceUnavailable)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "tokengate",
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleMetrics returns Prometheus metrics
// GET /metrics - Prometheus scraping endpoint
func (s *Server) handleMetrics() http.Handler {
	return promhttp.Handler()
}

// =============================================================================
// TOKEN OPERATION ENDPOINTS
// =============================================================================

// operationResponse is what callers get back on success. Failures are
// reported generically; the underlying cause stays in logs and audit
// records.
type operationResponse struct {
	StatusDescription string `json:"status_description"`
}

func (s *Server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.MintRequest
	if !s.decodeOperation(w, r, &req) {
		return
	}
	s.runOperation(w, r, func() (string, error) {
		return s.orch.Mint(r.Context(), req)
	})
}

func (s *Server) handleBurn(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.BurnRequest
	if !s.decodeOperation(w, r, &req) {
		return
	}
	s.runOperation(w, r, func() (string, error) {
		return s.orch.Burn(r.Context(), req)
	})
}

func (s *Server) handleBurnFrom(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.BurnFromRequest
	if !s.decodeOperation(w, r, &req) {
		return
	}
	s.runOperation(w, r, func() (string, error) {
		return s.orch.BurnFrom(r.Context(), req)
	})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.TransferRequest
	if !s.decodeOperation(w, r, &req) {
		return
	}
	s.runOperation(w, r, func() (string, error) {
		return s.orch.InternalTransfer(r.Context(), req)
	})
}

func (s *Server) handleApprove(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.ApproveRequest
	if !s.decodeOperation(w, r, &req) {
		return
	}
	s.runOperation(w, r, func() (string, error) {
		return s.orch.Approve(r.Context(), req)
	})
}

// =============================================================================
// TRANSACTION RECORD ENDPOINTS
// =============================================================================

// handleListTransactions lists transaction records
// GET /transactions?limit=50&offset=0
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()

	limit := 50 // default
	if limitStr := query.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	records, err := s.repository.ListTransactions(r.Context(), limit, offset)
	if err != nil {
		slog.Error("Failed to list transactions", "error", err)
		s.sendError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.sendJSON(w, map[string]interface{}{
		"transactions": records,
		"limit":        limit,
		"offset":       offset,
	})
}

// handleGetTransaction retrieves one transaction record
// GET /transactions/{id}
func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/transactions/")
	if id == "" || strings.Contains(id, "/") {
		s.sendError(w, "Invalid transaction id", http.StatusBadRequest)
		return
	}

	record, err := s.repository.GetTransaction(r.Context(), id)
	if err != nil {
		s.sendError(w, "Transaction not found", http.StatusNotFound)
		return
	}

	s.sendJSON(w, record)
}
