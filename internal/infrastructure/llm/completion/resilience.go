package completion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/mkravets/effidash/internal/core/domain"
	"github.com/mkravets/effidash/internal/infrastructure/resilience"
)

// classifyAPIError drives retry and breaker decisions. 429, timeouts and
// connection failures are retryable; 401 and 400 are final on the first
// attempt.
func classifyAPIError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		case http.StatusUnauthorized, http.StatusBadRequest:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
		}
	}

	// Timeouts and connection failures from the transport land here.
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}

// failureKind classifies a transport failure for the caller. Circuit-open,
// rate-limit, timeout and connection errors are temporary; 401 is an auth
// failure; everything else is unclassified.
func failureKind(err error) domain.FailureKind {
	if resilience.IsCircuitOpen(err) {
		return domain.FailureTemporary
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			return domain.FailureTemporary
		case http.StatusUnauthorized:
			return domain.FailureAuth
		default:
			return domain.FailureNone
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return domain.FailureTemporary
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return domain.FailureTemporary
	}
	return domain.FailureNone
}

// userMessage converts a transport failure into a message safe to surface
// across the API boundary. Full detail stays in the server logs.
func userMessage(err error) string {
	if resilience.IsCircuitOpen(err) {
		return "Analysis service temporarily unavailable, please try again later"
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusTooManyRequests:
			return "Rate limit exceeded, max retries reached"
		case http.StatusUnauthorized:
			return "Authentication failed, invalid API key"
		case http.StatusBadRequest:
			return fmt.Sprintf("Bad request: %s", statusErr.Detail)
		default:
			return fmt.Sprintf("API request failed with status %d: %s", statusErr.StatusCode, statusErr.Detail)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout, the analysis API did not respond in time"
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return "Connection error, unable to reach the analysis API"
	}
	return "Analysis request failed"
}
