package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "event-analytics-pipeline/docs"
	"event-analytics-pipeline/internal/api/handler"
	"event-analytics-pipeline/pkg/router"
)

// NewRouter builds the API router with all routes registered.
func NewRouter() *router.Router {
	r := router.New()
	RegisterRoutes(r)
	return r
}

func RegisterRoutes(r *router.Router) {
	r.POST("/api/v1/runs", handler.CreateRun)
	r.GET("/api/v1/runs", handler.ListRuns)
	// More specific routes first
	r.GET("/api/v1/runs/*/rejections", handler.GetRunRejections)
	r.GET("/api/v1/runs/*/summary", handler.GetRunSummary)
	r.GET("/api/v1/runs/*/errors", handler.GetRunErrors)
	// Generic run route last
	r.GET("/api/v1/runs/*", handler.GetRun)

	r.GET("/swagger/*", func(w http.ResponseWriter, req *http.Request) {
		httpSwagger.WrapHandler(w, req)
	})
}
