package models

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Common error codes - HTTP focused but protocol-aware
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeCatalogDefect      = "CATALOG_DEFECT"
)

// Common errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrMissionNotFound        = errors.New("mission not found")
	ErrMissionSetNotFound     = errors.New("mission set not found")
	ErrMissionRequestNotFound = errors.New("mission request not found")
	ErrCommonPlaceNotFound    = errors.New("common place not found")
	ErrAliasNotFound          = errors.New("common place alias not found")
	ErrPersonQualityNotFound  = errors.New("person quality not found")
	ErrNotFound               = errors.New("resource not found")
	ErrUserExists             = errors.New("user already exists")
	ErrAlreadyExists          = errors.New("resource already exists")
	ErrInvalidToken           = errors.New("invalid or expired token")
	ErrUnauthorized           = errors.New("unauthorized access")
	ErrForbidden              = errors.New("forbidden access")
	ErrInvalidInput           = errors.New("invalid input")
	ErrLockNotAcquired        = errors.New("operation already in progress")
	ErrRatingCacheNotReady    = errors.New("rating cache is not initialized")
)

// IsNotFound reports whether err wraps any of the not-found sentinels.
func IsNotFound(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrUserNotFound, ErrMissionNotFound, ErrMissionSetNotFound,
		ErrMissionRequestNotFound, ErrCommonPlaceNotFound, ErrAliasNotFound, ErrPersonQualityNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AppError - error carrying an API code and the transport status to report
type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Protocol   string                 `json:"protocol,omitempty"` // http, grpc
	GRPCCode   codes.Code             `json:"grpc_code,omitempty"`
	cause      error
}

func (e *AppError) Error() string {
	if e.Protocol != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Protocol, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the original error so errors.Is works through AppError
func (e *AppError) Unwrap() error {
	return e.cause
}

// ToHTTPError converts to HTTP-compatible error response
func (e *AppError) ToHTTPError() *APIResponse {
	return &APIResponse{
		Success:   false,
		Error:     e.Message,
		Message:   e.Message,
		Timestamp: time.Now(),
	}
}

// ToGRPCError converts to gRPC status error
func (e *AppError) ToGRPCError() error {
	return status.Error(e.GRPCCode, e.Message)
}

// NewHTTPError builds an AppError for the HTTP edge
func NewHTTPError(code, message string, statusCode int, err error) *AppError {
	appErr := &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Protocol:   "http",
		cause:      err,
	}
	if err != nil {
		appErr.Details = map[string]interface{}{"original_error": err.Error()}
	}
	return appErr
}

// NewGRPCError builds an AppError for the gRPC edge
func NewGRPCError(grpcCode codes.Code, code, message string, err error) *AppError {
	appErr := &AppError{
		Code:     code,
		Message:  message,
		GRPCCode: grpcCode,
		Protocol: "grpc",
		cause:    err,
	}
	if err != nil {
		appErr.Details = map[string]interface{}{"original_error": err.Error()}
	}
	return appErr
}

// HTTPStatus maps any error to the status code the API should answer with.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.StatusCode != 0 {
		return appErr.StatusCode
	}
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUserExists), errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrLockNotAcquired):
		return http.StatusConflict
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// CatalogDefect is the panic value raised when catalog data holds a value no
// code path knows how to handle (an unknown execution or hint type). It is a
// programming or data error, never a user error.
type CatalogDefect struct {
	Entity string
	ID     string
	Field  string
	Value  string
}

func (d *CatalogDefect) Error() string {
	return fmt.Sprintf("catalog defect: %s %s has unsupported %s %q", d.Entity, d.ID, d.Field, d.Value)
}

// PanicCatalogDefect panics with a *CatalogDefect.
func PanicCatalogDefect(entity, id, field, value string) {
	panic(&CatalogDefect{Entity: entity, ID: id, Field: field, Value: value})
}
