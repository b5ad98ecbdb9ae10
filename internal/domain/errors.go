package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError carries the HTTP status and the message shown to the caller.
// Err holds the underlying cause for logs and is never serialized.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(code int, msg string, err error) *AppError {
	return &AppError{Code: code, Message: msg, Err: err}
}

func ErrBadRequest(msg string) *AppError {
	return newAppError(http.StatusBadRequest, msg, nil)
}

func ErrNotFound(msg string) *AppError {
	return newAppError(http.StatusNotFound, msg, nil)
}

func ErrMethodNotAllowed(msg string) *AppError {
	return newAppError(http.StatusMethodNotAllowed, msg, nil)
}

func ErrInternal(msg string, err error) *AppError {
	return newAppError(http.StatusInternalServerError, msg, err)
}

// ErrCollaborator reports a failed billing call. msg is shown to the
// customer verbatim.
func ErrCollaborator(msg string, err error) *AppError {
	return newAppError(http.StatusInternalServerError, msg, err)
}

// AsAppError extracts an AppError from an error chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
