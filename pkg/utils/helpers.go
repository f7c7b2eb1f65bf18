package utils

import "time"

// defaultRunTimeout bounds a run when no usable timeout is configured.
const defaultRunTimeout = 5 * time.Minute

// ParseDuration safely parses a duration string like "5m", falling back to
// the default run timeout on empty or malformed input.
func ParseDuration(d string) time.Duration {
	if d == "" {
		return defaultRunTimeout
	}
	duration, err := time.ParseDuration(d)
	if err != nil {
		return defaultRunTimeout
	}
	return duration
}
