package dto

import "github.com/martijn/clientbook/internal/core/validator"

// ErrorResponse is the body of every non-validation failure
type ErrorResponse struct {
	Message string `json:"message"`
}

// ValidationErrorResponse lists the fields that failed validation, in
// name, surname, contacts order
type ValidationErrorResponse struct {
	Errors []validator.FieldError `json:"errors"`
}

// EmptyResponse is returned after a successful delete
type EmptyResponse struct{}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}
