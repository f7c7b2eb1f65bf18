package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"event-analytics-pipeline/internal/model"
)

var db *sql.DB

// InitDB opens the run-tracking database and creates the schema. The store
// is optional: one-shot CLI runs may skip it, and every write below is a
// no-op until InitDB has been called.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	tables := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			spec TEXT,
			status TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS run_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			error_message TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS rejections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			record_index INTEGER,
			reason TEXT,
			record TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS daily_event_counts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			date TEXT,
			event_type TEXT,
			event_count INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS run_summaries (
			run_id TEXT PRIMARY KEY,
			active_users INTEGER,
			most_active_user TEXT,
			most_active_count INTEGER
		);`,
	}

	for _, ddl := range tables {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a new pipeline run in "pending" state.
func SaveRun(runID string, spec model.RunSpec) error {
	if db == nil {
		return nil
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO runs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		runID, specJSON, "pending", now, now)
	return err
}

// UpdateRunStatus updates the run status.
func UpdateRunStatus(runID, status string) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// SaveRunError records a fatal error for a run.
func SaveRunError(runID string, runErr error) error {
	if db == nil || runErr == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO run_errors (run_id, error_message, created_at) VALUES (?, ?, ?)`,
		runID, runErr.Error(), now)
	return err
}

// GetRunErrors returns the recorded error messages for a run.
func GetRunErrors(runID string) ([]string, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(`SELECT error_message FROM run_errors WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, err
		}
		errors = append(errors, msg)
	}
	return errors, rows.Err()
}

// ListRuns returns all runs with basic info, newest first.
func ListRuns() ([]map[string]interface{}, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches full run spec and status.
func GetRun(runID string) (map[string]interface{}, error) {
	var specJSON, status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.RunSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        runID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// SaveRejections persists the rejection log for a run.
func SaveRejections(runID string, rejected []model.Rejection) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	for _, rej := range rejected {
		record, err := json.Marshal(rej.Record)
		if err != nil {
			record = []byte("{}")
		}
		_, err = db.Exec(`INSERT INTO rejections (run_id, record_index, reason, record, created_at) VALUES (?, ?, ?, ?, ?)`,
			runID, rej.Index, rej.Reason, record, now)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetRejections returns the rejection log for a run in input order.
func GetRejections(runID string) ([]model.Rejection, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(`SELECT record_index, reason, record FROM rejections WHERE run_id = ? ORDER BY record_index`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rejected []model.Rejection
	for rows.Next() {
		var rej model.Rejection
		var record []byte
		if err := rows.Scan(&rej.Index, &rej.Reason, &record); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(record, &rej.Record); err != nil {
			rej.Record = nil
		}
		rejected = append(rejected, rej)
	}
	return rejected, rows.Err()
}

// SaveDailyCounts persists the per-day-per-type counts for a run.
func SaveDailyCounts(runID string, counts []model.DailyEventCount) error {
	if db == nil {
		return nil
	}
	for _, dc := range counts {
		_, err := db.Exec(`INSERT INTO daily_event_counts (run_id, date, event_type, event_count) VALUES (?, ?, ?, ?)`,
			runID, dc.Date, dc.EventType, dc.Count)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveSummary persists the scalar summaries for a run.
func SaveSummary(runID string, summary model.Summary) error {
	if db == nil {
		return nil
	}
	var mostActiveUser sql.NullString
	var mostActiveCount sql.NullInt64
	if summary.MostActive != nil {
		mostActiveUser = sql.NullString{String: summary.MostActive.UserID, Valid: true}
		mostActiveCount = sql.NullInt64{Int64: int64(summary.MostActive.Count), Valid: true}
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO run_summaries (run_id, active_users, most_active_user, most_active_count) VALUES (?, ?, ?, ?)`,
		runID, summary.ActiveUsers, mostActiveUser, mostActiveCount)
	return err
}

// GetSummary returns the stored summaries for a run, with nil MostActive
// when the run saw no events.
func GetSummary(runID string) (*model.Summary, error) {
	var summary model.Summary
	var mostActiveUser sql.NullString
	var mostActiveCount sql.NullInt64

	err := db.QueryRow(`SELECT active_users, most_active_user, most_active_count FROM run_summaries WHERE run_id = ?`, runID).
		Scan(&summary.ActiveUsers, &mostActiveUser, &mostActiveCount)
	if err != nil {
		return nil, err
	}
	if mostActiveUser.Valid {
		summary.MostActive = &model.UserActivity{
			UserID: mostActiveUser.String,
			Count:  int(mostActiveCount.Int64),
		}
	}

	rows, err := db.Query(`SELECT date, event_type, event_count FROM daily_event_counts WHERE run_id = ? ORDER BY date, event_type`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var dc model.DailyEventCount
		if err := rows.Scan(&dc.Date, &dc.EventType, &dc.Count); err != nil {
			return nil, err
		}
		summary.DailyCounts = append(summary.DailyCounts, dc)
	}
	return &summary, rows.Err()
}
