package pipeline

import (
	"reflect"
	"testing"
	"time"

	"event-analytics-pipeline/internal/model"
)

func TestNormalizeKeyUnion(t *testing.T) {
	valid := []model.ValidEvent{
		{UserID: "u1", EventType: "click", Timestamp: "2024-01-01T10:00:00Z",
			Metadata: map[string]interface{}{"screen": "home"}},
		{UserID: "u2", EventType: "view", Timestamp: "2024-01-01T11:00:00Z",
			Metadata: map[string]interface{}{"amount": "9.99", "screen": "cart"}},
		{UserID: "u3", EventType: "click", Timestamp: "2024-01-01T12:00:00Z"},
	}

	table, err := Normalize(valid)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	// one column per distinct key, first-seen event order
	wantKeys := []string{"screen", "amount"}
	if !reflect.DeepEqual(table.MetadataKeys, wantKeys) {
		t.Errorf("MetadataKeys = %v, want %v", table.MetadataKeys, wantKeys)
	}
	wantCols := []string{"user_id", "event_type", "timestamp", "metadata_screen", "metadata_amount"}
	if !reflect.DeepEqual(table.Columns(), wantCols) {
		t.Errorf("Columns = %v, want %v", table.Columns(), wantCols)
	}

	if len(table.Events) != 3 {
		t.Fatalf("got %d rows, want 3", len(table.Events))
	}
	// rows lacking a key hold a missing value for that column
	if _, ok := table.Events[2].Metadata["screen"]; ok {
		t.Error("row without metadata should have no screen value")
	}
	// amount coerced to float64
	if got := table.Events[1].Metadata["amount"]; got != 9.99 {
		t.Errorf("amount = %v (%T), want 9.99", got, got)
	}
}

func TestNormalizeLenientAmount(t *testing.T) {
	valid := []model.ValidEvent{
		{UserID: "u1", EventType: "buy", Timestamp: "2024-01-01T10:00:00Z",
			Metadata: map[string]interface{}{"amount": "not-a-number"}},
	}

	table, err := Normalize(valid)
	if err != nil {
		t.Fatalf("unparsable amount must not fail the run: %v", err)
	}
	if _, ok := table.Events[0].Metadata["amount"]; ok {
		t.Error("unparsable amount should render as missing")
	}
	// the column still exists because the key was observed
	if !reflect.DeepEqual(table.MetadataKeys, []string{"amount"}) {
		t.Errorf("MetadataKeys = %v, want [amount]", table.MetadataKeys)
	}
}

func TestNormalizeStrictTimestamp(t *testing.T) {
	valid := []model.ValidEvent{
		{UserID: "u1", EventType: "click", Timestamp: "2024-01-01T10:00:00Z"},
		{UserID: "u2", EventType: "click", Timestamp: "yesterday-ish"},
	}

	if _, err := Normalize(valid); err == nil {
		t.Fatal("unparsable timestamp must be fatal under the strict policy")
	}
}

func TestNormalizeOffsetToUTC(t *testing.T) {
	valid := []model.ValidEvent{
		{UserID: "u1", EventType: "click", Timestamp: "2024-01-02T01:30:00+05:30"},
	}

	table, err := Normalize(valid)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	if !table.Events[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", table.Events[0].Timestamp, want)
	}
}

func TestNormalizeEmptyInput(t *testing.T) {
	table, err := Normalize(nil)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(table.Events) != 0 {
		t.Errorf("got %d rows, want 0", len(table.Events))
	}
	want := []string{"user_id", "event_type", "timestamp"}
	if !reflect.DeepEqual(table.Columns(), want) {
		t.Errorf("empty table must keep base columns, got %v", table.Columns())
	}
}
