package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory is the normalized failure taxonomy for backend calls.
type ErrorCategory string

const (
	// ErrorTimeout indicates the backend took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorCanceled indicates the caller gave up (context canceled)
	ErrorCanceled ErrorCategory = "canceled"

	// ErrorBadData indicates the backend answered with a body we cannot use
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorProviderOutage indicates the backend is down or answered 5xx
	ErrorProviderOutage ErrorCategory = "provider_outage"

	// ErrorNotFound indicates the backend answered 404
	ErrorNotFound ErrorCategory = "not_found"

	// ErrorRateLimited indicates the backend answered 429
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorUnavailable indicates the circuit breaker is open; no call was made
	ErrorUnavailable ErrorCategory = "unavailable"

	// ErrorInternal indicates an unexpected client-side failure
	ErrorInternal ErrorCategory = "internal"
)

// ErrIncompletePath is returned when an option list is requested before all
// of its ancestors are selected.
var ErrIncompletePath = errors.New("ancestor selection incomplete")

// TransportError wraps every failure of a backend call. The selector logs
// these and never shows them to the user.
type TransportError struct {
	Category   ErrorCategory
	Endpoint   string
	StatusCode int
	Message    string
	Underlying error
}

func (e *TransportError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("backend %s [%s]: %s: %v", e.Endpoint, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("backend %s [%s]: %s", e.Endpoint, e.Category, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Underlying
}

func (e *TransportError) ErrorCode() string {
	return "backend_" + string(e.Category)
}

func (e *TransportError) HTTPStatus() int {
	if e.Category == ErrorTimeout {
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

// Transient reports whether the failure says something about backend health
// (and therefore counts against the circuit breaker).
func (e *TransportError) Transient() bool {
	return e.Category == ErrorTimeout ||
		e.Category == ErrorProviderOutage ||
		e.Category == ErrorRateLimited
}

func newTransportError(category ErrorCategory, endpoint, message string, underlying error) *TransportError {
	return &TransportError{
		Category:   category,
		Endpoint:   endpoint,
		Message:    message,
		Underlying: underlying,
	}
}

// GetCategory extracts the error category from an error
func GetCategory(err error) ErrorCategory {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Category
	}
	return ErrorInternal
}

// IsTransport reports whether err is (or wraps) a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
