package sim

import (
	"errors"
	"fmt"
)

// ErrRetriesExhausted is returned by Retry when no attempt was accepted.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Retry calls try up to maxAttempts times, stopping at the first attempt
// that reports ok or returns an error. Attempts are numbered from 0.
// A non-positive maxAttempts is treated as 1.
func Retry[T any](maxAttempts int, try func(attempt int) (T, bool, error)) (T, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	var zero T
	for attempt := 0; attempt < maxAttempts; attempt++ {
		v, ok, err := try(attempt)
		if err != nil {
			return zero, err
		}
		if ok {
			return v, nil
		}
	}
	return zero, fmt.Errorf("%w after %d attempts", ErrRetriesExhausted, maxAttempts)
}
