package errors

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code is the machine-readable error code returned to API clients.
type Code string

// Codes surfaced by the user endpoints.
const (
	CodeNotAuthorized  Code = "NOT_AUTHORIZED"
	CodeInvalidRequest Code = "INVALID_REQUEST"
	CodeLimited        Code = "LIMITED"
	CodeInternal       Code = "INTERNAL"
)

// Codes surfaced by the request pipeline before a handler runs.
const (
	CodeNotAuthenticated Code = "NOT_AUTHENTICATED"
	CodeRateLimited      Code = "RATE_LIMITED"
)

// APIError is an error carrying a Code and a client-facing message.
// The wrapped cause is kept for logging and never sent to clients.
type APIError struct {
	Code    Code
	Message string
	Err     error
}

// New creates an APIError without a cause.
func New(code Code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// Wrap creates an APIError wrapping err.
func Wrap(code Code, message string, err error) *APIError {
	return &APIError{Code: code, Message: message, Err: err}
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error
func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the code onto an HTTP status.
func (e *APIError) HTTPStatus() int {
	switch e.Code {
	case CodeNotAuthenticated:
		return http.StatusUnauthorized
	case CodeNotAuthorized:
		return http.StatusForbidden
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeLimited:
		return http.StatusUnprocessableEntity
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// GRPCStatus returns the gRPC status for this error.
// The message only carries the client-facing part.
func (e *APIError) GRPCStatus() *status.Status {
	var c codes.Code
	switch e.Code {
	case CodeNotAuthenticated:
		c = codes.Unauthenticated
	case CodeNotAuthorized:
		c = codes.PermissionDenied
	case CodeInvalidRequest:
		c = codes.InvalidArgument
	case CodeLimited:
		c = codes.FailedPrecondition
	case CodeRateLimited:
		c = codes.ResourceExhausted
	default:
		c = codes.Internal
	}
	return status.New(c, fmt.Sprintf("%s: %s", e.Code, e.Message))
}

// As returns the APIError in err's chain. Errors without one are reported
// as INTERNAL so that causes never leak to clients.
func As(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Wrap(CodeInternal, "An internal error occurred.", err)
}

// CodeOf returns the Code of err, or CodeInternal.
func CodeOf(err error) Code {
	return As(err).Code
}
