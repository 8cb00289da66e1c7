// Package domainerrors defines the error taxonomy shared by handlers and
// services, plus the mapping from error codes to HTTP statuses. Services
// return these errors; the HTTP layer translates them without inspecting
// message text.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of failure independent of transport.
type Code string

const (
	CodeUnauthorized    Code = "unauthorized"
	CodeBadRequest      Code = "bad_request"
	CodeUpstreamParse   Code = "upstream_parse_failed"
	CodeUpstreamTimeout Code = "upstream_timeout"
	CodeInternal        Code = "internal_error"
)

// Error carries a code plus a human-readable description.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return string(e.Code) + ": " + e.Message
}

// New constructs a domain error with the given code and description.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Is reports whether err carries the given domain error code.
func Is(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ToHTTPStatus maps a domain error code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUpstreamParse:
		return http.StatusBadGateway
	case CodeUpstreamTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
