package util

import (
	"time"
)

const (
	maxAttempts = 3
	baseBackoff = time.Second
)

// RetryWithResult runs the operation up to 3 times with linear backoff
// between attempts (1s after the first failure, 2s after the second).
// The last result and error are returned when every attempt fails.
func RetryWithResult[T any](operation func() (T, error)) (T, error) {
	var result T
	var err error

	for i := 0; i < maxAttempts; i++ {
		result, err = operation()
		if err == nil {
			return result, nil
		}
		if i < maxAttempts-1 {
			time.Sleep(baseBackoff * time.Duration(i+1))
		}
	}
	return result, err
}
