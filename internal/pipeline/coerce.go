package pipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The two coercion policies are deliberately separate functions: timestamps
// are strict (a bad value fails the run), amounts are lenient (a bad value
// becomes a missing cell).

// eventTimeLayouts are the accepted ISO-8601 forms, tried in order. Layouts
// without a zone designator are interpreted as UTC. time.Parse also accepts
// fractional seconds after the seconds field for all of them.
var eventTimeLayouts = []string{
	time.RFC3339Nano,      // 2024-01-01T10:00:00Z, 2024-01-01T10:00:00+05:30
	"2006-01-02T15:04:05", // no zone designator
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseEventTime parses an event timestamp under the strict policy and
// normalizes the result to UTC. Any offset is converted; an unparsable value
// is an error for the caller to treat as fatal.
func ParseEventTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range eventTimeLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", value)
}

// ParseAmount coerces a metadata amount to float64 under the lenient policy.
// The second return is false when the value cannot be read as a number, in
// which case the cell renders as missing rather than failing the run.
func ParseAmount(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
