package model

import "time"

// RunSpec is the configuration for a single batch run.
// It is the payload of POST /api/v1/runs and the unit stored per run.
type RunSpec struct {
	InputFile  string      `json:"inputFile"`            // raw events JSON (list of objects)
	OutputDir  string      `json:"outputDir"`            // artifact directory; API fills a per-run default
	Export     *ExportSpec `json:"export,omitempty"`     // optional database export of the summaries
	RunTimeout string      `json:"runTimeout,omitempty"` // e.g. "5m"
}

// ExportSpec selects an optional database target for the summary tables.
type ExportSpec struct {
	DB  string `json:"db"`            // "sqlite" or "postgres"
	DSN string `json:"dsn,omitempty"` // postgres connection string
}

// RunResult captures counts and artifact paths for a completed run.
type RunResult struct {
	RunID           string        `json:"run_id"`
	TotalRecords    int           `json:"total_records"`
	ValidRecords    int           `json:"valid_records"`
	RejectedRecords int           `json:"rejected_records"`
	Rows            int           `json:"rows"`
	ActiveUsers     int           `json:"active_users"`
	Artifacts       []string      `json:"artifacts"`
	Duration        time.Duration `json:"duration"`
}
