package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks rejected uploads and bad request parameters.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExtraction marks uploads whose content could not be extracted;
	// re-running extraction on the same bytes cannot succeed.
	ErrExtraction = errors.New("extraction failed")
	// ErrTemporary marks failures worth retrying (429, timeouts,
	// connection errors against the completion API).
	ErrTemporary = errors.New("temporary failure")
	// ErrAnalysis marks completion-API failures after retries are spent.
	ErrAnalysis = errors.New("analysis failed")
	// ErrAuth marks completion-API authentication failures; never retried.
	ErrAuth = errors.New("authentication failed")
	// ErrMalformedResponse marks completion-API responses that deviate
	// from the expected schema.
	ErrMalformedResponse = errors.New("malformed response")
	ErrNotFound          = errors.New("not found")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
