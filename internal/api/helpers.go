package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"tokengate/internal/orchestrator"
)

// decodeOperation parses a POST body into a request type. Returns
// false if the response has already been written.
func (s *Server) decodeOperation(w http.ResponseWriter, r *http.Request, req any) bool {
	if r.Method != http.MethodPost {
		s.sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.sendError(w, "Invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// runOperation invokes the orchestrator and maps the outcome onto the
// HTTP response. Validation problems are echoed back; everything else
// is a generic failure, with the real cause in logs and audit records.
func (s *Server) runOperation(w http.ResponseWriter, r *http.Request, op func() (string, error)) {
	status, err := op()
	if err != nil {
		var valErr *orchestrator.ValidationError
		if errors.As(err, &valErr) {
			s.sendError(w, valErr.Error(), http.StatusBadRequest)
			return
		}

		var opErr *orchestrator.OperationError
		if errors.As(err, &opErr) {
			slog.Debug("Operation rejected",
				"path", r.URL.Path,
				"stage", opErr.Stage,
			)
			s.sendError(w, "Operation failed", http.StatusBadGateway)
			return
		}

		s.sendError(w, "Operation failed", http.StatusInternalServerError)
		return
	}

	s.sendJSON(w, operationResponse{StatusDescription: status})
}

// sendJSON writes a JSON response
func (s *Server) sendJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// sendError writes a JSON error response
func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"error": message,
		"code":  code,
	})
}
