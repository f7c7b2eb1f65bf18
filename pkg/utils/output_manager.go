package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputManager resolves per-run artifact directories under one base dir.
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates an output manager rooted at baseOutputDir.
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{BaseOutputDir: baseOutputDir}
}

// RunDir creates (if needed) and returns the artifact directory for a run.
func (om *OutputManager) RunDir(runID string) (string, error) {
	dir := filepath.Join(om.BaseOutputDir, runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run output directory: %w", err)
	}
	return dir, nil
}

// ArtifactPath returns the full path of a named artifact within a run's
// directory. The file name is cleaned so it cannot escape the run dir.
func (om *OutputManager) ArtifactPath(runID, fileName string) string {
	return filepath.Join(om.BaseOutputDir, runID, filepath.Base(fileName))
}
