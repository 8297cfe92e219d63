package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/flfwms/picking-api/internal/domain"
)

// ErrorResponse is the error envelope: a stable short code plus an
// optional human message, and structured diffs for finalize mismatches.
type ErrorResponse struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Diffs   []domain.LineDiff `json:"diffs,omitempty"`
}

// WriteJSONResponse writes a JSON response with the given status code and data.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes an error envelope with the given status code and code string.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSONResponse(w, statusCode, ErrorResponse{Error: code, Message: message})
}

// statusForCode maps the business error taxonomy to HTTP status codes.
func statusForCode(code string) int {
	switch code {
	case domain.CodeInvalidCredentials, domain.CodeBadgeOrPin, domain.CodeNoUserAccount:
		return http.StatusUnauthorized
	case domain.CodeArchived:
		return http.StatusForbidden
	case domain.CodePickingNotFound, domain.CodeNotInOrder:
		return http.StatusNotFound
	case domain.CodeOrderLocked, domain.CodeWrongOrder, domain.CodeOverpick, domain.CodeAlreadyScanned, domain.CodeMismatch:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError maps a service error to the wire. Business errors keep
// their code; anything else is logged and surfaced as an opaque 500.
func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var mismatch *domain.MismatchError
	if errors.As(err, &mismatch) {
		WriteJSONResponse(w, http.StatusConflict, ErrorResponse{
			Error: domain.CodeMismatch,
			Diffs: mismatch.Diffs,
		})
		return
	}

	var business *domain.BusinessError
	if errors.As(err, &business) {
		WriteErrorResponse(w, statusForCode(business.Code), business.Code, "")
		return
	}

	logger.Error("request failed", "error", err)
	WriteErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred while processing your request")
}
