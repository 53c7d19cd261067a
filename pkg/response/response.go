// Package response writes JSON bodies. Payloads are written as-is (no
// envelope); errors use the {"message": ...} shape clients already parse.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/storefront/pkg/validate"
)

// Message is the body of every non-validation error and of plain
// confirmations such as "Category deleted successfully".
type Message struct {
	Message string `json:"message"`
}

type validationBody struct {
	Message string              `json:"message"`
	Errors  validate.Violations `json:"errors"`
}

// JSON writes body with the given status.
func JSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// OK sends a 200 with body.
func OK(w http.ResponseWriter, body interface{}) {
	JSON(w, http.StatusOK, body)
}

// Created sends a 201 with body.
func Created(w http.ResponseWriter, body interface{}) {
	JSON(w, http.StatusCreated, body)
}

// Error sends {"message": message} with status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Message{Message: message})
}

// ValidationError sends a 400 with the field-level violations.
func ValidationError(w http.ResponseWriter, violations validate.Violations) {
	JSON(w, http.StatusBadRequest, validationBody{
		Message: "Validation failed",
		Errors:  violations,
	})
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter) {
	Error(w, http.StatusUnauthorized, "Unauthorized")
}

// Forbidden sends a 403 with message.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound sends a 404 with message, e.g. "Product not found".
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// InternalError sends the generic 500 body.
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, "Internal server error")
}
