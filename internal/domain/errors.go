package domain

import (
	"errors"
	"net/http"
)

// Error codes for business logic errors.
const (
	CodeNotFound      = 1
	CodeAlreadyExists = 2
	CodeValidation    = 3
	CodeInternal      = 4
	CodeUnauthorized  = 5
	CodeForbidden     = 6
)

// AppError is a business error carrying a code, a user-facing message and an
// optional wrapped cause.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Sentinel errors. Match categories with the Is* helpers, which compare codes
// rather than pointer identity.
var (
	ErrNotFound      = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrAlreadyExists = &AppError{Code: CodeAlreadyExists, Message: "already exists"}
	ErrValidation    = &AppError{Code: CodeValidation, Message: "validation error"}
	ErrInternal      = &AppError{Code: CodeInternal, Message: "internal error"}
	ErrUnauthorized  = &AppError{Code: CodeUnauthorized, Message: "invalid credentials"}
	ErrForbidden     = &AppError{Code: CodeForbidden, Message: "permission denied"}
)

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func IsNotFound(err error) bool      { return hasCode(err, CodeNotFound) }
func IsAlreadyExists(err error) bool { return hasCode(err, CodeAlreadyExists) }
func IsValidation(err error) bool    { return hasCode(err, CodeValidation) }
func IsInternal(err error) bool      { return hasCode(err, CodeInternal) }
func IsUnauthorized(err error) bool  { return hasCode(err, CodeUnauthorized) }
func IsForbidden(err error) bool     { return hasCode(err, CodeForbidden) }

func hasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// UserMessage returns the message of user-facing error codes, or fallback for
// internal and unknown errors so technical details never reach the page.
func UserMessage(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		switch appErr.Code {
		case CodeNotFound, CodeAlreadyExists, CodeValidation, CodeUnauthorized, CodeForbidden:
			return appErr.Message
		}
	}
	return fallback
}

// HTTPStatusCode maps an error to an HTTP status code. Errors that are not an
// *AppError map to 500.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeAlreadyExists:
			return http.StatusConflict
		case CodeValidation:
			return http.StatusBadRequest
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeForbidden:
			return http.StatusForbidden
		}
	}
	return http.StatusInternalServerError
}

// CodeForStatus maps an HTTP status back to an error code.
func CodeForStatus(status int) int {
	switch status {
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusConflict:
		return CodeAlreadyExists
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeValidation
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	default:
		return CodeInternal
	}
}
