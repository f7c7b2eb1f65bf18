package model

import "time"

// GenericRecord is a schema-agnostic raw event as decoded from the input batch.
// Raw records are untrusted; nothing is guaranteed about their shape.
type GenericRecord map[string]interface{}

// ValidEvent is a raw record that passed required-field validation.
// UserID, EventType and Timestamp are always non-empty after trimming.
type ValidEvent struct {
	UserID    string                 `json:"user_id"`
	EventType string                 `json:"event_type"`
	Timestamp string                 `json:"timestamp"` // raw text, parsed during normalization
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Rejection pairs a failed record with the reason it was refused.
type Rejection struct {
	Index  int           `json:"index"` // position in the input batch
	Reason string        `json:"reason"`
	Record GenericRecord `json:"record"`
}

// CleanedEvent is one flattened, typed row of the analytics table.
// Metadata holds the flattened values keyed by original metadata key;
// a key absent from the map renders as a missing cell.
type CleanedEvent struct {
	UserID    string
	EventType string
	Timestamp time.Time // always UTC
	Metadata  map[string]interface{}
}

// EventTable is the normalized output: a fixed column schema plus rows.
type EventTable struct {
	MetadataKeys []string // union of metadata keys across all events, in schema order
	Events       []CleanedEvent
}

// MetadataColumnPrefix is prepended to metadata keys when they are promoted
// to top-level columns (a "screen" key becomes a "metadata_screen" column).
const MetadataColumnPrefix = "metadata_"

// Columns returns the full column schema: the three base columns followed by
// the prefixed metadata columns. Defined even for a zero-row table.
func (t *EventTable) Columns() []string {
	cols := make([]string, 0, 3+len(t.MetadataKeys))
	cols = append(cols, "user_id", "event_type", "timestamp")
	for _, key := range t.MetadataKeys {
		cols = append(cols, MetadataColumnPrefix+key)
	}
	return cols
}

// DailyEventCount is one row of the per-day-per-type summary.
type DailyEventCount struct {
	Date      string `json:"date"` // UTC calendar date, YYYY-MM-DD
	EventType string `json:"event_type"`
	Count     int    `json:"event_count"`
}

// UserActivity pairs a user with their total event count.
type UserActivity struct {
	UserID string `json:"user_id"`
	Count  int    `json:"event_count"`
}

// Summary bundles the three independent aggregates of a run.
type Summary struct {
	DailyCounts []DailyEventCount `json:"daily_counts"`
	ActiveUsers int               `json:"total_active_users"`
	MostActive  *UserActivity     `json:"most_active_user,omitempty"` // nil when the table has no rows
}
