package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/baremaai/companion/internal/core/domain"
	"github.com/baremaai/companion/internal/infrastructure/resilience"
)

// StatusError carries one non-2xx backend response. Detail is the
// human-readable message the API puts in its "detail" field, when present.
type StatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Detail     string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "api status error"
	}
	if strings.TrimSpace(e.Detail) == "" {
		return fmt.Sprintf("api %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("api %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Detail))
}

func newStatusError(operation string, statusCode int, status string, body []byte) *StatusError {
	return &StatusError{
		Operation:  operation,
		StatusCode: statusCode,
		Status:     status,
		Detail:     gjson.GetBytes(body, "detail").String(),
	}
}

// Detail extracts the server's error detail from err, if any.
func Detail(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Detail
	}
	return ""
}

// kindFor maps a response status onto the domain error taxonomy:
// 401 always means the session is gone, 4xx input problems stay inline,
// 404 renders as an empty state, and transient 5xx stay retryable.
func kindFor(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrInvalidInput
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return domain.ErrTemporary
	default:
		return nil
	}
}

func wrapStatusError(statusErr *StatusError) error {
	if kind := kindFor(statusErr.StatusCode); kind != nil {
		return domain.WrapError(kind, statusErr.Operation, statusErr)
	}
	return statusErr
}

func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// classifyError drives the read-path retry loop and the circuit breakers.
func classifyError(err error) resilience.Classification {
	if err == nil {
		return resilience.Classification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.Classification{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.Classification{Retryable: true, RecordFailure: true}
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if isRetryableStatus(statusErr.StatusCode) {
			return resilience.Classification{Retryable: true, RecordFailure: true}
		}
		return resilience.Classification{}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Classification{Retryable: true, RecordFailure: true}
	}

	return resilience.Classification{RecordFailure: true}
}
