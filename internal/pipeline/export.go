package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"event-analytics-pipeline/internal/model"
	"event-analytics-pipeline/internal/store"
)

// Artifact file names, one per output table plus the rejection log.
const (
	CleanedEventsFile = "cleaned_events.csv"
	DailyCountsFile   = "daily_event_counts.csv"
	ActiveUsersFile   = "total_active_users.csv"
	MostActiveFile    = "most_active_user.csv"
	RejectionLogFile  = "malformed_events.log"
)

// ExportManager writes a run's artifacts into one output directory.
type ExportManager struct {
	RunID     string
	OutputDir string
}

// NewExportManager creates an export manager for a run.
func NewExportManager(runID, outputDir string) *ExportManager {
	return &ExportManager{RunID: runID, OutputDir: outputDir}
}

// ExportAll persists the cleaned table, the three summaries and the
// rejection log, returning the paths written. Export runs only after the
// whole pipeline has succeeded, so a fatal run never leaves partial output.
func (em *ExportManager) ExportAll(table *model.EventTable, summary model.Summary, rejected []model.Rejection) ([]string, error) {
	if err := os.MkdirAll(em.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	writers := []struct {
		file  string
		write func(*csv.Writer) error
	}{
		{CleanedEventsFile, func(w *csv.Writer) error { return writeCleanedEvents(w, table) }},
		{DailyCountsFile, func(w *csv.Writer) error { return writeDailyCounts(w, summary.DailyCounts) }},
		{ActiveUsersFile, func(w *csv.Writer) error { return writeActiveUsers(w, summary.ActiveUsers) }},
		{MostActiveFile, func(w *csv.Writer) error { return writeMostActive(w, summary.MostActive) }},
	}

	paths := make([]string, 0, len(writers)+1)
	for _, spec := range writers {
		path := filepath.Join(em.OutputDir, spec.file)
		if err := em.writeCSV(path, spec.write); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	logPath := filepath.Join(em.OutputDir, RejectionLogFile)
	if err := writeRejectionLog(logPath, rejected); err != nil {
		return nil, err
	}
	paths = append(paths, logPath)

	fmt.Printf("💾 Export: wrote %d artifacts to %s\n", len(paths), em.OutputDir)
	return paths, nil
}

func (em *ExportManager) writeCSV(path string, write func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := write(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

// writeCleanedEvents emits the table with its full column schema; rows
// lacking a metadata key get an empty cell for that column.
func writeCleanedEvents(w *csv.Writer, table *model.EventTable) error {
	if err := w.Write(table.Columns()); err != nil {
		return err
	}
	for _, ev := range table.Events {
		row := make([]string, 0, 3+len(table.MetadataKeys))
		row = append(row, ev.UserID, ev.EventType, ev.Timestamp.Format(time.RFC3339))
		for _, key := range table.MetadataKeys {
			if val, ok := ev.Metadata[key]; ok {
				row = append(row, formatCell(val))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeDailyCounts(w *csv.Writer, counts []model.DailyEventCount) error {
	if err := w.Write([]string{"date", "event_type", "event_count"}); err != nil {
		return err
	}
	for _, dc := range counts {
		if err := w.Write([]string{dc.Date, dc.EventType, strconv.Itoa(dc.Count)}); err != nil {
			return err
		}
	}
	return nil
}

func writeActiveUsers(w *csv.Writer, total int) error {
	if err := w.Write([]string{"total_active_users"}); err != nil {
		return err
	}
	return w.Write([]string{strconv.Itoa(total)})
}

// writeMostActive emits a header-only file when there is no row to report.
func writeMostActive(w *csv.Writer, mostActive *model.UserActivity) error {
	if err := w.Write([]string{"user_id", "event_count"}); err != nil {
		return err
	}
	if mostActive == nil {
		return nil
	}
	return w.Write([]string{mostActive.UserID, strconv.Itoa(mostActive.Count)})
}

// writeRejectionLog persists one line per rejection: record reference,
// reason, then the offending record as JSON.
func writeRejectionLog(path string, rejected []model.Rejection) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	for _, rej := range rejected {
		raw, err := json.Marshal(rej.Record)
		if err != nil {
			raw = []byte("<unencodable record>")
		}
		if _, err := fmt.Fprintf(file, "record %d: %s: %s\n", rej.Index, rej.Reason, raw); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// formatCell renders one CSV cell. Floats print without exponent padding so
// re-running the pipeline yields byte-identical artifacts.
func formatCell(val interface{}) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ExportToDatabase writes the summary tables to the configured database
// target: the run-tracking sqlite store or an external postgres.
func (em *ExportManager) ExportToDatabase(ctx context.Context, spec *model.ExportSpec, summary model.Summary) error {
	switch spec.DB {
	case "sqlite":
		if err := store.SaveDailyCounts(em.RunID, summary.DailyCounts); err != nil {
			return fmt.Errorf("sqlite export failed: %w", err)
		}
		if err := store.SaveSummary(em.RunID, summary); err != nil {
			return fmt.Errorf("sqlite export failed: %w", err)
		}
		return nil
	case "postgres":
		return em.exportToPostgres(ctx, spec.DSN, summary)
	default:
		return fmt.Errorf("unknown export database %q", spec.DB)
	}
}

const (
	createDailyCountsSQL = `CREATE TABLE IF NOT EXISTS daily_event_counts (
		run_id TEXT,
		date TEXT,
		event_type TEXT,
		event_count INTEGER
	)`
	createRunSummariesSQL = `CREATE TABLE IF NOT EXISTS run_summaries (
		run_id TEXT PRIMARY KEY,
		active_users INTEGER,
		most_active_user TEXT,
		most_active_count INTEGER
	)`
)

func (em *ExportManager) exportToPostgres(ctx context.Context, dsn string, summary model.Summary) error {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, createDailyCountsSQL); err != nil {
		return fmt.Errorf("failed to create daily_event_counts: %w", err)
	}
	if _, err := conn.Exec(ctx, createRunSummariesSQL); err != nil {
		return fmt.Errorf("failed to create run_summaries: %w", err)
	}

	for _, dc := range summary.DailyCounts {
		_, err := conn.Exec(ctx,
			`INSERT INTO daily_event_counts (run_id, date, event_type, event_count) VALUES ($1, $2, $3, $4)`,
			em.RunID, dc.Date, dc.EventType, dc.Count)
		if err != nil {
			return fmt.Errorf("failed to insert daily count: %w", err)
		}
	}

	var mostActiveUser *string
	var mostActiveCount *int
	if summary.MostActive != nil {
		mostActiveUser = &summary.MostActive.UserID
		mostActiveCount = &summary.MostActive.Count
	}
	_, err = conn.Exec(ctx,
		`INSERT INTO run_summaries (run_id, active_users, most_active_user, most_active_count) VALUES ($1, $2, $3, $4)`,
		em.RunID, summary.ActiveUsers, mostActiveUser, mostActiveCount)
	if err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}

	fmt.Printf("💾 Export: summaries written to postgres for run %s\n", em.RunID)
	return nil
}
