package prober

import (
	"math"
	"time"
)

// Estimate returns the worst-case wall-clock duration of probing count links:
// ceil(count × timeout / concurrency) whole seconds, at least one second. It is
// shown to users before probing and never bounds the actual run.
func Estimate(count int, timeout time.Duration, concurrency int) time.Duration {
	if concurrency <= 0 {
		concurrency = 1
	}

	if count < 0 {
		count = 0
	}

	seconds := math.Ceil(float64(count) * timeout.Seconds() / float64(concurrency))
	if seconds < 1 {
		seconds = 1
	}

	return time.Duration(seconds) * time.Second
}
