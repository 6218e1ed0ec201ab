package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"with wrapped error", &AppError{Code: CodeNotFound, Message: "subject not found", Err: errors.New("record not found")}, "subject not found: record not found"},
		{"without wrapped error", &AppError{Code: CodeNotFound, Message: "subject not found"}, "subject not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	if !errors.Is(NewAppError(CodeInternal, "failed", inner), inner) {
		t.Error("errors.Is should find the wrapped error")
	}
	if (&AppError{Code: CodeInternal}).Unwrap() != nil {
		t.Error("Unwrap() should return nil without a cause")
	}
}

func TestCategoryHelpers(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		check  func(error) bool
		status int
	}{
		{"not found", ErrNotFound, IsNotFound, http.StatusNotFound},
		{"already exists", ErrAlreadyExists, IsAlreadyExists, http.StatusConflict},
		{"validation", ErrValidation, IsValidation, http.StatusBadRequest},
		{"internal", ErrInternal, IsInternal, http.StatusInternalServerError},
		{"unauthorized", ErrUnauthorized, IsUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, IsForbidden, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			if !tt.check(wrapped) {
				t.Error("helper should match wrapped error by code")
			}
			if got := HTTPStatusCode(wrapped); got != tt.status {
				t.Errorf("HTTPStatusCode = %d; want %d", got, tt.status)
			}
			var appErr *AppError
			errors.As(tt.err, &appErr)
			if got := CodeForStatus(tt.status); got != appErr.Code {
				t.Errorf("CodeForStatus(%d) = %d; want %d", tt.status, got, appErr.Code)
			}
		})
	}
	if HTTPStatusCode(errors.New("plain")) != http.StatusInternalServerError {
		t.Error("plain errors should map to 500")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(NewAppError(CodeValidation, "name is required", nil), "fallback"); got != "name is required" {
		t.Errorf("validation message = %q", got)
	}
	if got := UserMessage(NewAppError(CodeInternal, "sql: connection reset", nil), "fallback"); got != "fallback" {
		t.Errorf("internal message leaked: %q", got)
	}
	if got := UserMessage(errors.New("raw"), "fallback"); got != "fallback" {
		t.Errorf("plain error message leaked: %q", got)
	}
}
