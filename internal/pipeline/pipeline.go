package pipeline

import (
	"context"
	"fmt"
	"time"

	"event-analytics-pipeline/internal/model"
	"event-analytics-pipeline/internal/store"
	"event-analytics-pipeline/pkg/utils"
)

// ------------------- Pipeline Runner -------------------

// Run executes one batch run end to end: load, extract, normalize,
// aggregate, export. Stages are strictly sequential; each consumes the
// previous stage's output and holds no state between runs. A fatal error
// aborts before any artifact is written.
func Run(ctx context.Context, runID string, spec model.RunSpec) (result *model.RunResult, err error) {
	start := time.Now()
	fmt.Printf("🚀 Starting pipeline run %s\n", runID)

	store.UpdateRunStatus(runID, "running")
	defer func() {
		if err != nil {
			store.UpdateRunStatus(runID, "failed")
			store.SaveRunError(runID, err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, utils.ParseDuration(spec.RunTimeout))
	defer cancel()

	// --- EXTRACTION STAGE ---
	store.UpdateRunStatus(runID, "extracting")
	records, err := LoadRecords(spec.InputFile)
	if err != nil {
		return nil, err
	}
	valid, rejected := Extract(records)
	fmt.Printf("🔍 Extraction: %d valid, %d rejected of %d records\n", len(valid), len(rejected), len(records))
	if err := store.SaveRejections(runID, rejected); err != nil {
		fmt.Printf("❌ Failed to save rejections for run %s: %v\n", runID, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- NORMALIZATION STAGE ---
	store.UpdateRunStatus(runID, "normalizing")
	table, err := Normalize(valid)
	if err != nil {
		return nil, err
	}
	fmt.Printf("🔄 Normalization: %d rows, %d metadata columns\n", len(table.Events), len(table.MetadataKeys))

	// --- AGGREGATION STAGE ---
	store.UpdateRunStatus(runID, "aggregating")
	summary := Aggregate(table)
	fmt.Printf("📊 Aggregation: %d daily groups, %d active users\n", len(summary.DailyCounts), summary.ActiveUsers)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- EXPORT STAGE ---
	store.UpdateRunStatus(runID, "exporting")
	em := NewExportManager(runID, spec.OutputDir)
	artifacts, err := em.ExportAll(table, summary, rejected)
	if err != nil {
		return nil, err
	}
	if spec.Export != nil && spec.Export.DB != "" {
		if err := em.ExportToDatabase(ctx, spec.Export, summary); err != nil {
			return nil, err
		}
	}
	if err := store.SaveSummary(runID, summary); err != nil {
		fmt.Printf("❌ Failed to save summary for run %s: %v\n", runID, err)
	}
	if spec.Export == nil || spec.Export.DB != "sqlite" {
		if err := store.SaveDailyCounts(runID, summary.DailyCounts); err != nil {
			fmt.Printf("❌ Failed to save daily counts for run %s: %v\n", runID, err)
		}
	}

	store.UpdateRunStatus(runID, "completed")
	duration := time.Since(start)
	fmt.Printf("🏁 Pipeline run %s completed in %v\n", runID, duration)

	return &model.RunResult{
		RunID:           runID,
		TotalRecords:    len(records),
		ValidRecords:    len(valid),
		RejectedRecords: len(rejected),
		Rows:            len(table.Events),
		ActiveUsers:     summary.ActiveUsers,
		Artifacts:       artifacts,
		Duration:        duration,
	}, nil
}
