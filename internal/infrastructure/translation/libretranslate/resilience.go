package libretranslate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/resilience"
)

var errEmptyTranslation = errors.New("libretranslate: empty translation")

// StatusError is a non-200 reply. Message carries the service's {"error": ...} text when it sent one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("libretranslate: status %d", e.StatusCode)
	}
	return fmt.Sprintf("libretranslate: status %d: %s", e.StatusCode, e.Message)
}

// rejected reports replies about the request itself: an unsupported language pair, text over the
// character limit, a missing or banned API key. The service answered, so the breaker ignores them.
func (e *StatusError) rejected() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// overloaded reports replies worth another attempt: slow-down, timeouts and server-side failures.
func (e *StatusError) overloaded() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// classifyTranslateError decides retries and breaker accounting. Translation is best-effort, so an open
// breaker is never retried: the caller keeps the original text instead of waiting.
func classifyTranslateError(err error) resilience.ErrorClassification {
	var statusErr *StatusError
	var netErr net.Error
	switch {
	case err == nil, errors.Is(err, context.Canceled), resilience.IsCircuitOpen(err):
		return resilience.ErrorClassification{}
	case errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{RecordFailure: true}
	case errors.As(err, &statusErr):
		if statusErr.rejected() {
			return resilience.ErrorClassification{}
		}
		return resilience.ErrorClassification{Retryable: statusErr.overloaded(), RecordFailure: true}
	case errors.As(err, &netErr):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		// malformed or empty bodies from a reachable service
		return resilience.ErrorClassification{RecordFailure: true}
	}
}
