// Package apierr defines the domain error taxonomy and its HTTP mapping.
//
// Every domain failure is an *Error carrying a stable code and the status it
// maps to at the transport boundary: validation 400, missing token or role
// mismatch 401, expired/malformed token 403, ownership violations 403,
// absent resources 404, duplicate-state conflicts 409. Handlers convert
// errors with Respond; nothing propagates to gin as an uncaught fault.
package apierr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinetrack/cinetrack/internal/logger"
)

// Error represents a structured domain error with HTTP context
type Error struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Cause      error                  `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ToGinResponse sends the error as a standardized JSON response
func (e *Error) ToGinResponse(c *gin.Context) {
	statusCode := e.HTTPStatus
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	response := gin.H{
		"error": e.Message,
		"code":  e.Code,
	}

	if len(e.Context) > 0 {
		response["details"] = e.Context
	}

	fields := []logger.Field{
		logger.Int("status", statusCode),
		logger.String("code", e.Code),
		logger.String("message", e.Message),
		logger.String("path", c.Request.URL.Path),
		logger.String("method", c.Request.Method),
	}
	if statusCode >= http.StatusInternalServerError {
		logger.ErrorStructured("HTTP error response", fields...)
	} else {
		logger.DebugStructured("HTTP error response", fields...)
	}

	c.JSON(statusCode, response)
}

// Common error constructors

func NewValidationError(message string, field string) *Error {
	return &Error{
		Code:       "VALIDATION_ERROR",
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Context:    map[string]interface{}{"field": field},
	}
}

func NewMissingTokenError() *Error {
	return &Error{
		Code:       "MISSING_TOKEN",
		Message:    "Token is missing",
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewTokenExpiredError() *Error {
	return &Error{
		Code:       "TOKEN_EXPIRED",
		Message:    "Token has expired",
		HTTPStatus: http.StatusForbidden,
	}
}

func NewTokenMalformedError(cause error) *Error {
	return &Error{
		Code:       "TOKEN_MALFORMED",
		Message:    "Invalid token",
		HTTPStatus: http.StatusForbidden,
		Cause:      cause,
	}
}

func NewRoleMismatchError(required string) *Error {
	return &Error{
		Code:       "ROLE_MISMATCH",
		Message:    "Operation requires " + required + " role",
		HTTPStatus: http.StatusUnauthorized,
		Context:    map[string]interface{}{"required_role": required},
	}
}

func NewNotFoundError(resource string) *Error {
	return &Error{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
		Context:    map[string]interface{}{"resource": resource},
	}
}

func NewForbiddenError(message string) *Error {
	return &Error{
		Code:       "FORBIDDEN",
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func NewConflictError(message string) *Error {
	return &Error{
		Code:       "CONFLICT",
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func NewDatabaseError(operation string, cause error) *Error {
	return &Error{
		Code:       "DATABASE_ERROR",
		Message:    "Database operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Context:    map[string]interface{}{"operation": operation},
		Cause:      cause,
	}
}

// Respond converts any error to a JSON response. Non-domain errors become a
// generic 500 so internals never leak to clients.
func Respond(c *gin.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		apiErr.ToGinResponse(c)
		return
	}

	(&Error{
		Code:       "INTERNAL_ERROR",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      err,
	}).ToGinResponse(c)
}

// IsCode reports whether err is a domain error with the given code.
func IsCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}
