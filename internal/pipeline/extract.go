package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"event-analytics-pipeline/internal/model"
)

// requiredFields must be present as non-empty strings on every raw event.
var requiredFields = []string{"user_id", "timestamp", "event_type"}

// LoadRecords reads and decodes the raw batch container. A missing file or a
// container that is not a JSON array is fatal; an empty array is fine.
func LoadRecords(path string) ([]model.GenericRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
	}

	var records []model.GenericRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse input file %s: %w", path, err)
	}
	return records, nil
}

// Extract classifies every raw record independently, preserving input order
// in both outputs. A malformed record never aborts the batch; it becomes a
// Rejection with a human-readable reason. len(valid)+len(rejected) always
// equals len(records).
func Extract(records []model.GenericRecord) ([]model.ValidEvent, []model.Rejection) {
	valid := make([]model.ValidEvent, 0, len(records))
	rejected := make([]model.Rejection, 0)

	for i, rec := range records {
		if reason := checkRequired(rec); reason != "" {
			rejected = append(rejected, model.Rejection{Index: i, Reason: reason, Record: rec})
			continue
		}

		ev := model.ValidEvent{
			UserID:    strings.TrimSpace(rec["user_id"].(string)),
			Timestamp: strings.TrimSpace(rec["timestamp"].(string)),
			EventType: strings.TrimSpace(rec["event_type"].(string)),
		}
		// metadata never affects validity; carry it along when it is a flat mapping
		if meta, ok := rec["metadata"].(map[string]interface{}); ok {
			ev.Metadata = meta
		}
		valid = append(valid, ev)
	}

	return valid, rejected
}

// checkRequired returns the rejection reason for the first failing required
// field, or "" when the record is valid. A required field of the wrong type
// (e.g. a numeric user_id) is rejected, not coerced.
func checkRequired(rec model.GenericRecord) string {
	for _, field := range requiredFields {
		val, ok := rec[field]
		if !ok {
			return "missing " + field
		}
		s, ok := val.(string)
		if !ok {
			return field + " is not a string"
		}
		if strings.TrimSpace(s) == "" {
			return "empty " + field
		}
	}
	return ""
}
