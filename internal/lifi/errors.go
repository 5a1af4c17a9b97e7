package lifi

import (
	"errors"
	"fmt"
)

// ErrNoRoute marks a pair the aggregator cannot serve at all. Distinct from
// transient failures so the optimizer can drop the option instead of retrying.
var ErrNoRoute = errors.New("lifi: no route for requested transfer")

// TransientError wraps retryable API failures (rate limits, upstream outages).
type TransientError struct {
	StatusCode int
	Message    string
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("lifi: transient api failure (status %d): %s", e.StatusCode, e.Message)
}

// IsNoRoute reports whether the error means the pair is unroutable.
func IsNoRoute(err error) bool {
	return errors.Is(err, ErrNoRoute)
}

// IsTransient reports whether the error is worth retrying later.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
