package service

import "net/http"

// ServiceError is a failure that already knows its transport status, e.g. a
// request body that is not a JSON object.
type ServiceError struct {
	Code    int
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func NewServiceError(code int, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// BadRequest wraps err as a 400 with a caller-safe message.
func BadRequest(message string, err error) *ServiceError {
	return &ServiceError{Code: http.StatusBadRequest, Message: message, Err: err}
}
