// Command report renders a run's persisted artifacts for human review.
package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"event-analytics-pipeline/internal/pipeline"
)

func main() {
	var (
		dir     = flag.String("dir", "output", "Directory holding the run artifacts")
		maxRows = flag.Int("rows", 10, "Maximum cleaned-event rows to print")
	)
	flag.Parse()

	tables := []struct {
		title string
		file  string
		limit int
	}{
		{"Cleaned Events", pipeline.CleanedEventsFile, *maxRows},
		{"Daily Event Counts", pipeline.DailyCountsFile, 0},
		{"Total Active Users", pipeline.ActiveUsersFile, 0},
		{"Most Active User", pipeline.MostActiveFile, 0},
	}

	for _, tbl := range tables {
		if err := printCSV(tbl.title, filepath.Join(*dir, tbl.file), tbl.limit); err != nil {
			fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", tbl.file, err)
			os.Exit(1)
		}
	}

	if err := printLog("Malformed Events", filepath.Join(*dir, pipeline.RejectionLogFile)); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", pipeline.RejectionLogFile, err)
		os.Exit(1)
	}
}

// printCSV renders a CSV artifact as an aligned table; limit > 0 caps the
// number of data rows shown.
func printCSV(title, path string, limit int) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return err
	}

	fmt.Printf("\n%s (%d rows):\n", title, max(len(records)-1, 0))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for i, record := range records {
		if limit > 0 && i > limit {
			fmt.Fprintf(w, "... %d more rows\n", len(records)-i)
			break
		}
		fmt.Fprintln(w, strings.Join(record, "\t"))
	}
	return w.Flush()
}

func printLog(title, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Printf("\n%s:\n", title)
	scanner := bufio.NewScanner(file)
	count := 0
	for scanner.Scan() {
		fmt.Println("  " + scanner.Text())
		count++
	}
	if count == 0 {
		fmt.Println("  (none)")
	}
	return scanner.Err()
}
