package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/dialectdeck/ledger/internal/model"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	})
}

func writeFieldError(w http.ResponseWriter, statusCode int, field, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Field:   field,
		Message: message,
	})
}

// WriteBadRequest writes a 400 Bad Request response
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

// WriteInternalError writes a 500 Internal Server Error response
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}

// WriteServiceError maps ledger errors to HTTP: validation 400, not found
// 404, conflict 409. Anything else is logged and reported as 500 without
// leaking the cause.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve model.ValidationError
		nf model.NotFoundError
		ce model.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		writeFieldError(w, http.StatusBadRequest, ve.Field, ve.Message)
	case errors.As(err, &nf):
		writeFieldError(w, http.StatusNotFound, nf.Field, nf.Message)
	case errors.As(err, &ce):
		writeFieldError(w, http.StatusConflict, ce.Field, ce.Message)
	case errors.Is(err, model.ErrValidation):
		WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotFound):
		WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrConflict):
		WriteError(w, http.StatusConflict, err.Error())
	default:
		log.Error().Stack().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		WriteInternalError(w, "internal error")
	}
}
