/*
handlers.go - HTTP API handlers for loan estimation

PURPOSE:
  Exposes the estimation service via REST API. Handles HTTP request and
  response, JSON serialization, and delegates to estimate.Service.

ENDPOINTS:
  Loans:
    POST   /api/loans/estimate   Resolve and store a new loan
    GET    /api/loans            List stored loans
    GET    /api/loans/{id}       Get one loan with its schedule

  Holidays:
    GET    /api/holidays/{year}  Colombian holidays of a year, by date

  Operations:
    GET    /healthz              Liveness and dependency check
    GET    /metrics              Prometheus exposition

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed body, validation errors, invalid loan terms
  - 404: Loan not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/loan-engine/estimate"
	"github.com/warp/loan-engine/loan"
	"github.com/warp/loan-engine/logger"
)

const maxBodyBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *estimate.Service
	Logger  *slog.Logger

	// HealthCheck reports dependency health. Nil means always healthy.
	HealthCheck func(ctx context.Context) error
}

// NewHandler creates a new handler over the given service.
func NewHandler(svc *estimate.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Service: svc, Logger: log}
}

// =============================================================================
// LOAN HANDLERS
// =============================================================================

// EstimateLoan resolves and stores a new loan.
func (h *Handler) EstimateLoan(w http.ResponseWriter, r *http.Request) {
	var req estimate.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	l, err := h.Service.Estimate(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, r, "Failed to estimate loan", err)
		return
	}

	writeJSON(w, http.StatusCreated, NewLoanDTO(l))
}

// ListLoans returns all loans.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Service.List(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "Failed to list loans", err)
		return
	}

	dtos := make([]LoanDTO, len(loans))
	for i, l := range loans {
		dtos[i] = NewLoanDTO(l)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetLoan returns a single loan.
func (h *Handler) GetLoan(w http.ResponseWriter, r *http.Request) {
	l, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "Failed to get loan", err)
		return
	}
	writeJSON(w, http.StatusOK, NewLoanDTO(l))
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// ListHolidays returns the holidays of the year in the URL.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	holidays, err := h.Service.Holidays(r.Context(), year)
	if err != nil {
		h.writeServiceError(w, r, "Failed to list holidays", err)
		return
	}
	writeJSON(w, http.StatusOK, toHolidayDTOs(holidays))
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Health reports whether the service can serve requests.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.HealthCheck != nil {
		if err := h.HealthCheck(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "Unhealthy", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	var ve *estimate.ValidationError
	if errors.As(err, &ve) {
		resp.Fields = ve.Fields
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps domain errors to status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case estimate.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case loan.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Loan not found", err)
	default:
		h.Logger.ErrorContext(r.Context(), message, append(logger.Attrs(r.Context()), slog.Any("error", err))...)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
