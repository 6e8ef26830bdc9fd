package pkg

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/admision/internal/domain"
)

// Response is the standard JSON envelope for API responses.
// Meta is only present on paginated list responses.
type Response struct {
	Code    int              `json:"code"`
	Message string           `json:"message"`
	Data    any              `json:"data"`
	Meta    *domain.PageMeta `json:"meta,omitempty"`
}

// ErrorResponse is the JSON envelope for failed requests. Kind is a stable
// machine-readable category; Message is safe to show to end users.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ValidationErrorResponse is the JSON envelope for validation error responses.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Created sends a 201 JSON response with the given data.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    data,
	})
}

// Transport-level error kinds; the business kinds live in domain.
const (
	KindTimeout          = "timeout"
	KindRateLimited      = "rate_limited"
	KindMethodNotAllowed = "method_not_allowed"
)

// Error sends a JSON error response. If err is a *domain.AppError, its code is
// mapped to the appropriate HTTP status; otherwise 500 is returned. An expired
// request deadline is reported as 408 whatever layer wrapped it.
func Error(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		Abort(c, http.StatusRequestTimeout, KindTimeout, "request timeout")
		return
	}

	status := domain.HTTPStatusCode(err)
	if status >= http.StatusInternalServerError {
		// Hidden from the client; the request logger reports it.
		_ = c.Error(err)
	}

	var appErr *domain.AppError
	msg := "internal error"
	if errors.As(err, &appErr) && appErr.Code != domain.CodeInternal {
		msg = appErr.Message
	}

	c.JSON(status, ErrorResponse{
		Code:    status,
		Kind:    domain.ErrorKind(err),
		Message: msg,
	})
}

// Abort writes an ErrorResponse with the given status and stops the handler chain.
func Abort(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    status,
		Kind:    kind,
		Message: message,
	})
}

// List sends a 200 JSON response for a paginated result: the items go in
// data and the pagination metadata in meta.
func List[T any](c *gin.Context, result *domain.PageResult[T]) {
	meta := result.Meta
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    result.Items,
		Meta:    &meta,
	})
}

// ValidationError sends a 400 JSON response with per-field validation error details.
// It detects validator.ValidationErrors and extracts field-level messages.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it automatically sends a ValidationError response and returns false.
// Because obj is available, JSON struct tags are used for field names when possible.
// Usage in handlers:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// validationErrorWithType sends a 400 validation error response.
// When obj is non-nil, it reflects on the struct to prefer JSON tag names.
func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		// Not a validation error; send a generic bad request.
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Kind:    domain.KindValidation,
			Message: "malformed request body",
		})
		return
	}

	// Build a struct-field → json-tag map when the concrete type is available.
	jsonTags := buildJSONTagMap(obj)

	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		if tag, ok := jsonTags[fe.StructField()]; ok {
			name = tag
		} else {
			name = strings.ToLower(name)
		}
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		fieldErrors[name] = msg
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Kind:    domain.KindValidation,
		Message: validationMessage(fieldErrors),
		Errors:  fieldErrors,
	})
}

// buildJSONTagMap returns a map from struct field name to its JSON tag name.
// If obj is nil or not a struct (pointer), it returns an empty map.
func buildJSONTagMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if name := parseJSONTagName(tag); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

// parseJSONTagName extracts the field name from a JSON struct tag value.
func parseJSONTagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}

// validationMessage summarizes field errors in one human readable line,
// e.g. "invalid fields: descripcion (required), estado (oneof)".
func validationMessage(fieldErrors map[string]string) string {
	names := make([]string, 0, len(fieldErrors))
	for name := range fieldErrors {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		rule, _, _ := strings.Cut(fieldErrors[name], "=")
		parts = append(parts, name+" ("+rule+")")
	}
	return "invalid fields: " + strings.Join(parts, ", ")
}
