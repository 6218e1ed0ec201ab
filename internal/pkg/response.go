package pkg

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/learnhub/admin/internal/domain"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Success sends a 200 envelope carrying data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created sends a 201 envelope carrying data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// List sends a 200 envelope whose data is a page result with entities and
// pagination metadata.
func List[T any](c *gin.Context, result *domain.PageResult[T]) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: result})
}

// Error sends an error envelope. *domain.AppError codes map to their HTTP
// status; anything else is a 500 with a generic message.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)
	c.JSON(status, Envelope{
		Success: false,
		Message: domain.UserMessage(err, "internal error"),
	})
}

// ValidationError sends a 400 envelope with per-field messages.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it sends a ValidationError response and returns false.
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

func validationErrorWithType(c *gin.Context, err error, obj any) {
	fields, ok := FieldErrors(err, obj)
	if !ok {
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusBadRequest, Envelope{
		Success: false,
		Message: "validation error",
		Errors:  fields,
	})
}

// FieldErrors converts validator errors to a field → message map keyed by
// the form or JSON tag of obj. ok is false when err carries no field errors.
func FieldErrors(err error, obj any) (map[string]string, bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}

	tags := buildTagMap(obj)
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := tags[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		out[name] = fieldMessage(fe)
	}
	return out, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gte":
		return "must be " + fe.Param() + " or more"
	case "len":
		return "must be " + fe.Param() + " characters"
	case "iso4217":
		return "must be a currency code"
	}
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}

// buildTagMap maps struct field names to their json tag, falling back to the
// form tag. Returns nil when obj is not a struct.
func buildTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		if name := tagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
		} else if name := tagName(f.Tag.Get("form")); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

func tagName(tag string) string {
	name, _, _ := strings.Cut(tag, ",")
	if name == "-" {
		return ""
	}
	return name
}
