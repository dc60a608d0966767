package driven

import "time"

// Clock supplies the current time. Injected so backoff scheduling and
// manifest timestamps are testable without real sleeps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
