package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentool-backend/internal/domain"
	"rentool-backend/internal/logger"
)

// apiResponse is the envelope every JSON response uses.
type apiResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Data       any                 `json:"data,omitempty"`
	Errors     map[string][]string `json:"errors,omitempty"`
	Pagination *pagination         `json:"pagination,omitempty"`
}

type pagination struct {
	Item        int   `json:"item"`
	MatchData   int32 `json:"matchData"`
	AllPage     int32 `json:"allPage"`
	CurrentPage int32 `json:"currentPage"`
}

func newPagination(itemCount int, matchData, pageSize, currentPage int32) *pagination {
	allPage := (matchData + pageSize - 1) / pageSize
	return &pagination{
		Item:        itemCount,
		MatchData:   matchData,
		AllPage:     allPage,
		CurrentPage: currentPage,
	}
}

func writeJSON(w http.ResponseWriter, status int, body apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, apiResponse{Success: true, Message: message, Data: data})
}

func writeList(w http.ResponseWriter, message string, data any, p *pagination) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: message, Data: data, Pagination: p})
}

func writeValidationError(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, apiResponse{
		Success: false,
		Message: "Validation error",
		Errors:  fields,
	})
}

// writeError maps core errors onto response statuses by type, never by
// message text.
func writeError(w http.ResponseWriter, operation string, rentalID int32, err error) {
	var validationErr *domain.ValidationError
	var stockErr *domain.InsufficientStockError

	switch {
	case errors.As(err, &validationErr):
		writeValidationError(w, validationErr.Fields)
	case errors.As(err, &stockErr):
		fields := map[string][]string{"lines": {stockErr.Error()}}
		writeValidationError(w, fields)
	case errors.Is(err, domain.ErrInvalidDateRange):
		writeValidationError(w, map[string][]string{"end_date": {"end date must not precede the rental start date"}})
	case errors.Is(err, domain.ErrNotFound):
		// The wrapped error may name a rental, tool or customer; the
		// message stays entity-neutral.
		writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Message: "Resource not found"})
	case errors.Is(err, domain.ErrInvalidState):
		writeJSON(w, http.StatusConflict, apiResponse{Success: false, Message: "Rental is already settled"})
	case errors.Is(err, domain.ErrStorageConflict):
		writeJSON(w, http.StatusServiceUnavailable, apiResponse{Success: false, Message: "Operation conflicted with a concurrent request, please retry"})
	default:
		logger.Error("Unhandled error", "operation", operation, "rental_id", rentalID, "error", err)
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: "Internal server error"})
	}
}
