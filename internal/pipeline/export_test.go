package pipeline

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"event-analytics-pipeline/internal/model"
)

func sampleTable() (*model.EventTable, model.Summary) {
	table := &model.EventTable{
		MetadataKeys: []string{"screen", "amount"},
		Events: []model.CleanedEvent{
			{
				UserID:    "u1",
				EventType: "click",
				Timestamp: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
				Metadata:  map[string]interface{}{"screen": "home", "amount": 9.99},
			},
			{
				UserID:    "u2",
				EventType: "view",
				Timestamp: time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC),
			},
		},
	}
	summary := model.Summary{
		DailyCounts: []model.DailyEventCount{
			{Date: "2024-01-01", EventType: "click", Count: 1},
			{Date: "2024-01-01", EventType: "view", Count: 1},
		},
		ActiveUsers: 2,
		MostActive:  &model.UserActivity{UserID: "u1", Count: 1},
	}
	return table, summary
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestExportAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	table, summary := sampleTable()
	rejected := []model.Rejection{
		{Index: 2, Reason: "missing user_id", Record: model.GenericRecord{"event_type": "click"}},
	}

	em := NewExportManager("run-1", dir)
	paths, err := em.ExportAll(table, summary, rejected)
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if len(paths) != 5 {
		t.Fatalf("got %d artifacts, want 5", len(paths))
	}

	cleaned := readCSV(t, filepath.Join(dir, CleanedEventsFile))
	wantHeader := []string{"user_id", "event_type", "timestamp", "metadata_screen", "metadata_amount"}
	if strings.Join(cleaned[0], ",") != strings.Join(wantHeader, ",") {
		t.Errorf("cleaned header = %v, want %v", cleaned[0], wantHeader)
	}
	if cleaned[1][3] != "home" || cleaned[1][4] != "9.99" {
		t.Errorf("row 1 metadata cells = %q, %q", cleaned[1][3], cleaned[1][4])
	}
	// row without metadata renders empty cells, not a shorter row
	if cleaned[2][3] != "" || cleaned[2][4] != "" {
		t.Errorf("row 2 should have empty metadata cells, got %q, %q", cleaned[2][3], cleaned[2][4])
	}
	if cleaned[1][2] != "2024-01-01T10:00:00Z" {
		t.Errorf("timestamp cell = %q", cleaned[1][2])
	}

	daily := readCSV(t, filepath.Join(dir, DailyCountsFile))
	if len(daily) != 3 || daily[1][2] != "1" {
		t.Errorf("daily counts = %v", daily)
	}

	active := readCSV(t, filepath.Join(dir, ActiveUsersFile))
	if active[1][0] != "2" {
		t.Errorf("active users = %v", active)
	}

	most := readCSV(t, filepath.Join(dir, MostActiveFile))
	if most[1][0] != "u1" {
		t.Errorf("most active = %v", most)
	}

	logData, err := os.ReadFile(filepath.Join(dir, RejectionLogFile))
	if err != nil {
		t.Fatal(err)
	}
	line := strings.TrimSpace(string(logData))
	if !strings.HasPrefix(line, "record 2: missing user_id:") {
		t.Errorf("rejection log line = %q", line)
	}
	if !strings.Contains(line, `"event_type":"click"`) {
		t.Errorf("rejection log should carry the original record, got %q", line)
	}
}

func TestExportEmptyRun(t *testing.T) {
	dir := t.TempDir()
	table := &model.EventTable{}

	em := NewExportManager("run-empty", dir)
	if _, err := em.ExportAll(table, model.Summary{}, nil); err != nil {
		t.Fatalf("ExportAll: %v", err)
	}

	cleaned := readCSV(t, filepath.Join(dir, CleanedEventsFile))
	if len(cleaned) != 1 {
		t.Errorf("empty run should write header only, got %d lines", len(cleaned))
	}
	most := readCSV(t, filepath.Join(dir, MostActiveFile))
	if len(most) != 1 {
		t.Errorf("no most-active row expected, got %d lines", len(most))
	}
	active := readCSV(t, filepath.Join(dir, ActiveUsersFile))
	if active[1][0] != "0" {
		t.Errorf("active users = %v, want 0", active)
	}
}

func TestExportIsDeterministic(t *testing.T) {
	table, summary := sampleTable()
	rejected := []model.Rejection{
		{Index: 0, Reason: "empty user_id", Record: model.GenericRecord{"user_id": ""}},
	}

	dirA, dirB := t.TempDir(), t.TempDir()
	if _, err := NewExportManager("run-a", dirA).ExportAll(table, summary, rejected); err != nil {
		t.Fatal(err)
	}
	if _, err := NewExportManager("run-b", dirB).ExportAll(table, summary, rejected); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{CleanedEventsFile, DailyCountsFile, ActiveUsersFile, MostActiveFile, RejectionLogFile} {
		a, err := os.ReadFile(filepath.Join(dirA, name))
		if err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(filepath.Join(dirB, name))
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(a, b) {
			t.Errorf("%s differs between identical runs", name)
		}
	}
}
