package pipeline

import (
	"reflect"
	"testing"
	"time"

	"event-analytics-pipeline/internal/model"
)

func event(user, eventType, ts string) model.CleanedEvent {
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return model.CleanedEvent{UserID: user, EventType: eventType, Timestamp: parsed.UTC()}
}

func TestAggregateDailyCounts(t *testing.T) {
	table := &model.EventTable{Events: []model.CleanedEvent{
		event("u1", "view", "2024-01-02T09:00:00Z"),
		event("u1", "click", "2024-01-01T10:00:00Z"),
		event("u2", "click", "2024-01-01T23:59:59Z"),
		event("u2", "click", "2024-01-02T00:00:00Z"),
	}}

	summary := Aggregate(table)

	want := []model.DailyEventCount{
		{Date: "2024-01-01", EventType: "click", Count: 2},
		{Date: "2024-01-02", EventType: "click", Count: 1},
		{Date: "2024-01-02", EventType: "view", Count: 1},
	}
	if !reflect.DeepEqual(summary.DailyCounts, want) {
		t.Errorf("DailyCounts = %+v, want %+v", summary.DailyCounts, want)
	}
}

func TestAggregateDateBoundaryUsesUTC(t *testing.T) {
	// 23:30 UTC on Jan 1; an offset timestamp parsed earlier would already be
	// normalized, so grouping is always on the UTC calendar date.
	table := &model.EventTable{Events: []model.CleanedEvent{
		event("u1", "click", "2024-01-01T23:30:00Z"),
	}}

	summary := Aggregate(table)
	if summary.DailyCounts[0].Date != "2024-01-01" {
		t.Errorf("date = %q, want 2024-01-01", summary.DailyCounts[0].Date)
	}
}

func TestAggregateActiveUsers(t *testing.T) {
	table := &model.EventTable{Events: []model.CleanedEvent{
		event("u1", "click", "2024-01-01T10:00:00Z"),
		event("u1", "view", "2024-01-02T10:00:00Z"),
		event("u2", "click", "2024-01-01T10:00:00Z"),
	}}

	if got := Aggregate(table).ActiveUsers; got != 2 {
		t.Errorf("ActiveUsers = %d, want 2", got)
	}
}

func TestAggregateMostActiveTieBreak(t *testing.T) {
	table := &model.EventTable{Events: []model.CleanedEvent{
		event("bob", "click", "2024-01-01T10:00:00Z"),
		event("bob", "click", "2024-01-01T11:00:00Z"),
		event("alice", "view", "2024-01-01T10:00:00Z"),
		event("alice", "view", "2024-01-01T11:00:00Z"),
	}}

	got := Aggregate(table).MostActive
	if got == nil {
		t.Fatal("expected a most active user")
	}
	if got.UserID != "alice" || got.Count != 2 {
		t.Errorf("MostActive = %+v, want alice with 2", got)
	}
}

func TestAggregateEmptyTable(t *testing.T) {
	summary := Aggregate(&model.EventTable{})

	if len(summary.DailyCounts) != 0 {
		t.Errorf("DailyCounts = %+v, want empty", summary.DailyCounts)
	}
	if summary.ActiveUsers != 0 {
		t.Errorf("ActiveUsers = %d, want 0", summary.ActiveUsers)
	}
	if summary.MostActive != nil {
		t.Errorf("MostActive = %+v, want nil", summary.MostActive)
	}
}
