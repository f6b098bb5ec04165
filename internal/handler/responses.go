package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"confirm.durgadawaghar.com/internal/db"
	"confirm.durgadawaghar.com/internal/intake"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// User-facing error messages
const (
	ErrMsgGenericServerError = "Something went wrong"
	ErrMsgInvalidRequest     = "Invalid request. Please check your inputs."
	ErrMsgNotFound           = "Resource not found."
	ErrMsgTooLarge           = "Request body is too large."
	ErrMsgEmptyMessage       = "Message is empty."
	ErrMsgInvalidEncoding    = "Message is not valid UTF-8."
	ErrMsgMessageTooLarge    = "Message is too large."
	ErrMsgNoConfirmation     = "Message does not contain a payment confirmation."
)

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("encoding JSON response", zap.Error(err))
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// mapError converts service errors to an HTTP status and a user-facing message
func mapError(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge, ErrMsgTooLarge
	case errors.Is(err, intake.ErrEmptyMessage):
		return http.StatusBadRequest, ErrMsgEmptyMessage
	case errors.Is(err, intake.ErrInvalidEncoding):
		return http.StatusBadRequest, ErrMsgInvalidEncoding
	case errors.Is(err, intake.ErrMessageTooLarge):
		return http.StatusRequestEntityTooLarge, ErrMsgMessageTooLarge
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, ErrMsgNotFound
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}
