package worker

import (
	"math"
	"time"

	"github.com/sony/gobreaker"
)

// Backoff determines how long to wait, in seconds, before retrying a failed job.
// It increases the delay exponentially with each retry to avoid overwhelming a struggling service.
func Backoff(retryCount int) int32 {
	if retryCount < 0 {
		retryCount = 0
	}
	backoff := math.Pow(2, float64(retryCount)) * 10
	if backoff > 3600 { // Cap at 1 hour
		return 3600
	}
	return int32(backoff)
}

// NewCircuitBreaker builds the breaker that guards a downstream dependency. It trips
// when at least half of ten or more requests in a minute fail, and tries again after
// thirty seconds.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.5
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}
