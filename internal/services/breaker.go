package services

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/watchnext/backend/internal/logging"
)

// newBreaker opens after failures consecutive backend failures. Errors for
// which isSuccessful reports true (client-side 4xx) do not count.
func newBreaker(name string, failures uint32, timeout time.Duration, isSuccessful func(error) bool) *gobreaker.CircuitBreaker[[]byte] {
	if failures == 0 {
		failures = 5
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
		IsSuccessful: isSuccessful,
	}
	return gobreaker.NewCircuitBreaker[[]byte](settings)
}

func breakerOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
