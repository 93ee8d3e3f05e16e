package conn

import "time"

// Delay returns the reconnect delay for the given attempt:
// min(base × 2^attempt, max).
func Delay(attempt int, base, max time.Duration) time.Duration {
	if base <= 0 || base >= max {
		return max
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= max || d <= 0 { // overflow guard
			return max
		}
	}
	return d
}
