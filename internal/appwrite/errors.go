package appwrite

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
)

const (
	genericErrorMessage     = "An unexpected error occurred"
	timeoutErrorMessage     = "The service did not respond in time. Please try again."
	unreachableErrorMessage = "The service could not be reached. Please try again later."
)

// Error is the error body Appwrite returns for failed requests.
type Error struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Version string `json:"version,omitempty"`

	// cause is the error Normalize replaced
	cause error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func decodeError(status int, raw []byte) *Error {
	var e Error
	if err := json.Unmarshal(raw, &e); err != nil || e.Message == "" {
		e.Message = strings.TrimSpace(string(raw))
	}

	if e.Code == 0 {
		e.Code = status
	}

	if e.Type == "" {
		e.Type = "http_" + strings.ReplaceAll(strings.ToLower(http.StatusText(status)), " ", "_")
	}

	return &e
}

// Normalize turns any failure into a single-message *Error. The backend's
// message wins. Timeouts and transport failures get a fixed message, since
// their text names the backend URL; the original error stays reachable
// through errors.Is/As. Anything else keeps its own text.
func Normalize(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr
		}
		return &Error{Message: genericErrorMessage, Code: apiErr.Code, Type: apiErr.Type, cause: apiErr}
	}

	if errors.Is(err, ErrCircuitOpen) {
		return &Error{Message: ErrCircuitOpen.Error(), Code: http.StatusServiceUnavailable, Type: "circuit_open", cause: err}
	}

	if isTimeout(err) {
		return &Error{Message: timeoutErrorMessage, Code: http.StatusGatewayTimeout, Type: "timeout", cause: err}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &Error{Message: unreachableErrorMessage, Code: http.StatusBadGateway, Type: "unreachable", cause: err}
	}

	if msg := err.Error(); msg != "" {
		return &Error{Message: msg, cause: err}
	}

	return &Error{Message: genericErrorMessage, cause: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

func IsUnauthorized(err error) bool {
	return statusOf(err) == http.StatusUnauthorized
}
