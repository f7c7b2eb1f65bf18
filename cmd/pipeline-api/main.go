package main

import (
	"fmt"
	"os"

	"event-analytics-pipeline/internal/api"
	"event-analytics-pipeline/internal/api/handler"
	"event-analytics-pipeline/internal/config"
	"event-analytics-pipeline/internal/store"
	"event-analytics-pipeline/pkg/utils"
)

// @title Event Analytics Pipeline API
// @version 1.0
// @description Batch pipeline turning raw event records into validated, flattened analytics tables.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := store.InitDB(cfg.DBPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init run store: %v\n", err)
		os.Exit(1)
	}

	handler.Configure(utils.NewOutputManager(cfg.OutputDir))

	r := api.NewRouter()
	r.Start(":" + cfg.Port)
}
