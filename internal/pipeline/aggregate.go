package pipeline

import (
	"sort"
	"sync"

	"event-analytics-pipeline/internal/model"
)

// Aggregate computes the three summary views of the cleaned table. The
// summaries have no data dependency on each other, so each runs in its own
// goroutine writing a distinct Summary field.
func Aggregate(table *model.EventTable) model.Summary {
	var summary model.Summary
	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		summary.DailyCounts = dailyCounts(table.Events)
	}()
	go func() {
		defer wg.Done()
		summary.ActiveUsers = activeUsers(table.Events)
	}()
	go func() {
		defer wg.Done()
		summary.MostActive = mostActiveUser(table.Events)
	}()
	wg.Wait()

	return summary
}

// dailyCounts groups events by (UTC calendar date, event type) and counts
// rows per group, ordered by date ascending then event type ascending.
func dailyCounts(events []model.CleanedEvent) []model.DailyEventCount {
	type group struct {
		date      string
		eventType string
	}

	counts := make(map[group]int)
	for _, ev := range events {
		counts[group{ev.Timestamp.UTC().Format("2006-01-02"), ev.EventType}]++
	}

	out := make([]model.DailyEventCount, 0, len(counts))
	for g, n := range counts {
		out = append(out, model.DailyEventCount{Date: g.date, EventType: g.eventType, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].EventType < out[j].EventType
	})
	return out
}

// activeUsers counts distinct user IDs.
func activeUsers(events []model.CleanedEvent) int {
	users := make(map[string]bool)
	for _, ev := range events {
		users[ev.UserID] = true
	}
	return len(users)
}

// mostActiveUser returns the user with the highest event count, or nil for
// an empty table. Ties break to the lexicographically smallest user ID.
func mostActiveUser(events []model.CleanedEvent) *model.UserActivity {
	if len(events) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, ev := range events {
		counts[ev.UserID]++
	}

	var best model.UserActivity
	for user, n := range counts {
		if n > best.Count || (n == best.Count && user < best.UserID) {
			best = model.UserActivity{UserID: user, Count: n}
		}
	}
	return &best
}
