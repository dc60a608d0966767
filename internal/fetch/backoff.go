package fetch

import (
	"net/http"
	"strconv"
	"time"
)

// Delay returns the exponential backoff delay for a retry attempt
// (1-based), doubling from base and capped at ceiling.
func Delay(attempt int, base, ceiling time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	if d > ceiling {
		return ceiling
	}
	return d
}

// RetryAfter parses the Retry-After header of a 429/503 response.
// Only the delta-seconds form is honoured; the HTTP-date form falls
// back to the regular backoff schedule.
func RetryAfter(resp *http.Response) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	raw := resp.Header.Get("Retry-After")
	if raw == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

// Retryable reports whether an HTTP status is a transient failure worth
// another attempt: 5xx and the rate-limit signal.
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
