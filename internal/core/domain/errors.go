// Package domain defines the core domain models for tracklog.
package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// DomainError represents a business domain error with a structured error code.
// Codes have the form TL-<AREA>-<HTTP status><seq>, e.g. "TL-AUTH-4010".
type DomainError struct {
	Code    string // Error code (e.g., "TL-USER-5010")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// HTTPStatus returns the status encoded in the last code segment:
// TL-AUTH-4010 is 401. Codes without a 4xx or 5xx status map to 500.
func (e *DomainError) HTTPStatus() int {
	i := strings.LastIndexByte(e.Code, '-')
	if i < 0 || len(e.Code)-i-1 < 3 {
		return http.StatusInternalServerError
	}
	status, err := strconv.Atoi(e.Code[i+1 : i+4])
	if err != nil || status < 400 || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Authentication Errors (AUTH)
// ============================================================================

var (
	// ErrUnauthorized indicates the shared password was missing or wrong.
	ErrUnauthorized = NewDomainError("TL-AUTH-4010", "invalid password")
)

// ============================================================================
// User Errors (USER)
// ============================================================================

var (
	// ErrUnknownUser indicates the user id is not configured. It maps to 501,
	// matching what existing tracker clients expect.
	ErrUnknownUser = NewDomainError("TL-USER-5010", "unknown user")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("TL-ARG-4001", "invalid argument")

	// ErrInvalidBattery indicates a battery level above 100.
	ErrInvalidBattery = NewDomainError("TL-ARG-4002", "battery level out of range")

	// ErrInvalidCoordinate indicates a latitude or longitude out of range.
	ErrInvalidCoordinate = NewDomainError("TL-ARG-4003", "coordinate out of range")
)

// ============================================================================
// System Errors (SYS, STORE)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("TL-SYS-5000", "internal server error")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("TL-SYS-4290", "too many requests")

	// ErrStorage indicates the snapshot store failed to read or write.
	ErrStorage = NewDomainError("TL-STORE-5000", "storage error")
)
