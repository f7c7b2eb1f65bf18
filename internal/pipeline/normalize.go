package pipeline

import (
	"fmt"
	"sort"

	"event-analytics-pipeline/internal/model"
)

// amountKey is the metadata key that gets numeric coercion.
const amountKey = "amount"

// Normalize flattens valid events into a single typed table: one row per
// event, metadata keys promoted to columns, timestamps parsed to UTC
// instants. The column schema is computed up front as the union of metadata
// keys across all events, so every row shares one fixed schema.
//
// An unparsable timestamp is fatal to the run: extraction has already
// certified the field was present and non-empty, so a bad format here is
// data corruption, not a per-record rejection.
func Normalize(valid []model.ValidEvent) (*model.EventTable, error) {
	table := &model.EventTable{
		MetadataKeys: metadataKeyUnion(valid),
		Events:       make([]model.CleanedEvent, 0, len(valid)),
	}

	for i, ev := range valid {
		ts, err := ParseEventTime(ev.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("event %d (user %s): %w", i, ev.UserID, err)
		}

		row := model.CleanedEvent{
			UserID:    ev.UserID,
			EventType: ev.EventType,
			Timestamp: ts,
		}
		if len(ev.Metadata) > 0 {
			row.Metadata = make(map[string]interface{}, len(ev.Metadata))
			for k, v := range ev.Metadata {
				row.Metadata[k] = v
			}
			if raw, ok := row.Metadata[amountKey]; ok {
				if f, numOK := ParseAmount(raw); numOK {
					row.Metadata[amountKey] = f
				} else {
					// unparsable amounts render as missing, same as absent
					delete(row.Metadata, amountKey)
				}
			}
		}
		table.Events = append(table.Events, row)
	}

	return table, nil
}

// metadataKeyUnion fixes the metadata column schema before any row is built:
// events are visited in input order and each event contributes its keys in
// alphabetical order, so the schema is deterministic across runs.
func metadataKeyUnion(valid []model.ValidEvent) []string {
	seen := make(map[string]bool)
	keys := make([]string, 0)

	for _, ev := range valid {
		if len(ev.Metadata) == 0 {
			continue
		}
		eventKeys := make([]string, 0, len(ev.Metadata))
		for k := range ev.Metadata {
			eventKeys = append(eventKeys, k)
		}
		sort.Strings(eventKeys)
		for _, k := range eventKeys {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}

	return keys
}
