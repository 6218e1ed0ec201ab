package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/domain"
)

func newResponseTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func newResponseTestContextWithBody(body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var resp Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

type bindInput struct {
	Name  string `json:"name" binding:"required,min=3"`
	Email string `json:"email" binding:"required,email"`
}

func TestSuccess(t *testing.T) {
	c, w := newResponseTestContext()

	Success(c, map[string]string{"greeting": "hello"})

	if w.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
	}
	resp := decodeEnvelope(t, w)
	if !resp.Success || resp.Data == nil {
		t.Errorf("resp = %+v", resp)
	}
}

func TestCreated(t *testing.T) {
	c, w := newResponseTestContext()

	Created(c, map[string]int{"id": 7})

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}
	if !decodeEnvelope(t, w).Success {
		t.Error("expected success=true")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", domain.NewAppError(domain.CodeNotFound, "subject not found", nil), http.StatusNotFound, "subject not found"},
		{"conflict", domain.NewAppError(domain.CodeAlreadyExists, "code taken", nil), http.StatusConflict, "code taken"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "permission denied"},
		{"internal app error hides detail", domain.NewAppError(domain.CodeInternal, "pq: relation missing", nil), http.StatusInternalServerError, "internal error"},
		{"plain error", errors.New("something broke"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newResponseTestContext()
			Error(c, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d", w.Code, tt.wantStatus)
			}
			resp := decodeEnvelope(t, w)
			if resp.Success || resp.Message != tt.wantMsg {
				t.Errorf("resp = %+v; want message %q", resp, tt.wantMsg)
			}
		})
	}
}

func TestList(t *testing.T) {
	c, w := newResponseTestContext()

	type item struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	List(c, &domain.PageResult[item]{
		Entities:   []item{{ID: 1, Name: "Algebra"}, {ID: 2, Name: "Biology"}},
		Pagination: domain.PageMeta{Total: 42, TotalPages: 3, Page: 1, Limit: 20},
	})

	var resp struct {
		Success bool                    `json:"success"`
		Data    domain.PageResult[item] `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if !resp.Success || len(resp.Data.Entities) != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Data.Pagination.Total != 42 || resp.Data.Pagination.TotalPages != 3 {
		t.Errorf("pagination = %+v", resp.Data.Pagination)
	}
	if !strings.Contains(w.Body.String(), `"totalPages":3`) {
		t.Errorf("body should use totalPages key: %s", w.Body.String())
	}
}

func TestValidationError_NonValidationError(t *testing.T) {
	c, w := newResponseTestContext()

	ValidationError(c, errors.New("bad json"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	resp := decodeEnvelope(t, w)
	if resp.Message != "bad json" || len(resp.Errors) != 0 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestBindAndValidate_InvalidJSON(t *testing.T) {
	c, w := newResponseTestContextWithBody(`{"invalid json`)

	var input bindInput
	if BindAndValidate(c, &input) {
		t.Error("expected BindAndValidate to return false for invalid JSON")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
}

func TestBindAndValidate_FieldMessages(t *testing.T) {
	c, w := newResponseTestContextWithBody(`{"name":"Al","email":"not-an-email"}`)

	var input bindInput
	if BindAndValidate(c, &input) {
		t.Fatal("expected BindAndValidate to return false")
	}

	resp := decodeEnvelope(t, w)
	if resp.Message != "validation error" {
		t.Errorf("message = %q", resp.Message)
	}
	want := map[string]string{
		"name":  "must be at least 3",
		"email": "must be a valid email",
	}
	for field, msg := range want {
		if resp.Errors[field] != msg {
			t.Errorf("Errors[%q] = %q; want %q", field, resp.Errors[field], msg)
		}
	}
}

func TestBindAndValidate_ValidInput(t *testing.T) {
	c, w := newResponseTestContextWithBody(`{"name":"Alice","email":"alice@example.com"}`)

	var input bindInput
	if !BindAndValidate(c, &input) {
		t.Error("expected BindAndValidate to return true for valid input")
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body on success, got %q", w.Body.String())
	}
	if input.Name != "Alice" || input.Email != "alice@example.com" {
		t.Errorf("input = %+v", input)
	}
}

func TestFieldErrors_UsesFormTag(t *testing.T) {
	type formInput struct {
		Level string `form:"level" json:"-" binding:"required,oneof=basic advanced"`
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("level=expert"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var input formInput
	err := c.ShouldBind(&input)
	if err == nil {
		t.Fatal("expected oneof failure")
	}
	fields, ok := FieldErrors(err, &input)
	if !ok {
		t.Fatal("expected field errors")
	}
	if fields["level"] != "must be one of basic, advanced" {
		t.Errorf("fields = %v", fields)
	}
}

func TestFieldErrors_NotValidation(t *testing.T) {
	if _, ok := FieldErrors(errors.New("boom"), nil); ok {
		t.Error("plain error reported as field errors")
	}
}
