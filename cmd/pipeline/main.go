package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"event-analytics-pipeline/internal/model"
	"event-analytics-pipeline/internal/pipeline"
	"event-analytics-pipeline/internal/store"
)

func main() {
	var (
		input      = flag.String("input", "raw_data/raw_events.json", "Path to the raw events JSON batch")
		output     = flag.String("output", "output", "Directory for run artifacts")
		dbPath     = flag.String("db", "", "Optional sqlite path for run tracking")
		exportDB   = flag.String("export-db", "", "Optional summary export target: sqlite or postgres")
		exportDSN  = flag.String("export-dsn", "", "Postgres connection string for -export-db postgres")
		runTimeout = flag.String("timeout", "5m", "Run timeout, e.g. 5m")
	)
	flag.Parse()

	if *dbPath != "" {
		if err := store.InitDB(*dbPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to init run store: %v\n", err)
			os.Exit(1)
		}
	}

	spec := model.RunSpec{
		InputFile:  *input,
		OutputDir:  *output,
		RunTimeout: *runTimeout,
	}
	if *exportDB != "" {
		spec.Export = &model.ExportSpec{DB: *exportDB, DSN: *exportDSN}
	}

	runID := uuid.New().String()
	if err := store.SaveRun(runID, spec); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save run: %v\n", err)
	}

	result, err := pipeline.Run(context.Background(), runID, spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pipeline failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Processed %d records: %d valid, %d rejected, %d active users\n",
		result.TotalRecords, result.ValidRecords, result.RejectedRecords, result.ActiveUsers)
	for _, path := range result.Artifacts {
		fmt.Printf("  wrote %s\n", path)
	}
}
