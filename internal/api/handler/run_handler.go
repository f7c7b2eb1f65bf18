package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"event-analytics-pipeline/internal/model"
	"event-analytics-pipeline/internal/pipeline"
	"event-analytics-pipeline/internal/store"
	"event-analytics-pipeline/pkg/utils"
)

var outputManager = utils.NewOutputManager("output")

// Configure sets the base directory for per-run artifacts.
func Configure(om *utils.OutputManager) {
	outputManager = om
}

// CreateRun submits a new batch run
// @Summary Create a new run
// @Description Submit a batch of raw events for validation, normalization and aggregation
// @Tags runs
// @Accept json
// @Produce json
// @Param run body model.RunSpec true "Run configuration"
// @Success 200 {object} map[string]interface{} "Run created successfully"
// @Failure 400 {object} map[string]interface{} "Invalid request payload"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [post]
func CreateRun(w http.ResponseWriter, r *http.Request) {
	var spec model.RunSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	if spec.InputFile == "" {
		http.Error(w, "inputFile is required", http.StatusBadRequest)
		return
	}

	runID := uuid.New().String()

	if spec.OutputDir == "" {
		dir, err := outputManager.RunDir(runID)
		if err != nil {
			http.Error(w, "Failed to create output directory", http.StatusInternalServerError)
			return
		}
		spec.OutputDir = dir
	}

	if err := store.SaveRun(runID, spec); err != nil {
		http.Error(w, "Failed to save run", http.StatusInternalServerError)
		return
	}

	// Run asynchronously; fatal errors land in the run_errors table.
	ctx, cancel := context.WithTimeout(context.Background(), utils.ParseDuration(spec.RunTimeout))
	go func() {
		defer cancel()
		if _, err := pipeline.Run(ctx, runID, spec); err != nil {
			store.SaveRunError(runID, err)
		}
	}()

	resp := map[string]interface{}{
		"message":   "Run created successfully!",
		"runID":     runID,
		"status":    "pending",
		"createdAt": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListRuns retrieves all runs
// @Summary List all runs
// @Description Get a list of all batch runs with their current status
// @Tags runs
// @Accept json
// @Produce json
// @Success 200 {array} map[string]interface{} "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		http.Error(w, "Failed to fetch runs", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// GetRun retrieves a specific run
// @Summary Get run
// @Description Retrieve spec and status of a specific run
// @Tags runs
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func GetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "")
	if !ok {
		return
	}

	run, err := store.GetRun(runID)
	if err != nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// GetRunRejections retrieves the rejection log for a run
// @Summary Get run rejections
// @Description Retrieve the records rejected during extraction, with reasons
// @Tags runs
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Rejected records"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/rejections [get]
func GetRunRejections(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/rejections")
	if !ok {
		return
	}

	rejections, err := store.GetRejections(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve rejections", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":     runID,
		"rejections": rejections,
		"count":      len(rejections),
	})
}

// GetRunSummary retrieves the aggregated summaries for a run
// @Summary Get run summary
// @Description Retrieve daily counts, active user count and most active user
// @Tags runs
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run summary"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 404 {object} map[string]interface{} "Summary not found"
// @Router /runs/{id}/summary [get]
func GetRunSummary(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/summary")
	if !ok {
		return
	}

	summary, err := store.GetSummary(runID)
	if err != nil {
		http.Error(w, "Summary not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id":  runID,
		"summary": summary,
	})
}

// GetRunErrors retrieves fatal errors for a run
// @Summary Get run errors
// @Description Retrieve fatal errors recorded during run execution
// @Tags runs
// @Accept json
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 400 {object} map[string]interface{} "Invalid run ID"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/errors [get]
func GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID, ok := runIDFromPath(w, r, "/errors")
	if !ok {
		return
	}

	errors, err := store.GetRunErrors(runID)
	if err != nil {
		http.Error(w, "Failed to retrieve errors", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"run_id": runID,
		"errors": errors,
		"count":  len(errors),
	})
}

// runIDFromPath extracts the run ID between the API prefix and an optional
// suffix, writing a 400 response when the path does not fit.
func runIDFromPath(w http.ResponseWriter, r *http.Request, suffix string) (string, bool) {
	path := r.URL.Path
	prefix := "/api/v1/runs/"

	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		http.Error(w, "Invalid path", http.StatusBadRequest)
		return "", false
	}

	runID := path[len(prefix) : len(path)-len(suffix)]
	if runID == "" {
		http.Error(w, "Run ID is required", http.StatusBadRequest)
		return "", false
	}
	return runID, true
}
