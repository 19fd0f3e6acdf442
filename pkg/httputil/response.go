package httputil

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/inventoryhq/catalog/pkg/apperr"
)

// ErrorResponse is the standard error body returned by every endpoint:
// a human message, a stable machine-readable code, and the server time.
type ErrorResponse struct {
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteAppError translates a domain error into the standard error body.
// Unknown error types collapse to the generic internal error; details never
// reach the client.
func WriteAppError(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	WriteJSON(w, appErr.Status, ErrorResponse{
		Message:   appErr.Message,
		Code:      appErr.Code,
		Timestamp: time.Now().UTC(),
	})
}

// WriteValidationError writes a validation error response (400 Bad Request)
func WriteValidationError(w http.ResponseWriter, message string) {
	WriteAppError(w, apperr.Validation(message))
}

// WriteCreated writes a successful creation response (201 Created) with JSON data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, data)
}

// WriteSuccess writes a successful response (200 OK) with JSON data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteNoContent writes a successful response with no content (204 No Content)
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
