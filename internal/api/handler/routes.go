package handler

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/vfg2006/marketing-analyst/internal/api/handler/router"
	"github.com/vfg2006/marketing-analyst/internal/usecases/analyzing"
	"github.com/vfg2006/marketing-analyst/pkg/middleware"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
		{
			Path:    "/metrics",
			Method:  http.MethodGet,
			Handler: MetricsHandler(),
		},
	}
}

func Analysis(service analyzing.AnalyzerWithHistory, maxUploadBytes int64) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/analysis",
			Method:      http.MethodPost,
			Handler:     RunAnalysis(service, maxUploadBytes),
			Middlewares: []func(http.Handler) http.Handler{middleware.AnalysisScope()},
		},
		{
			Path:        "/v1/analysis/runs",
			Method:      http.MethodGet,
			Handler:     ListAnalysisRuns(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AnalysisScope()},
		},
		{
			Path:        "/v1/analysis/runs/:id",
			Method:      http.MethodGet,
			Handler:     GetAnalysisRun(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.AnalysisScope()},
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/:type/run",
			Method:      http.MethodPost,
			Handler:     RunCronJob(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(services),
			Middlewares: []func(http.Handler) http.Handler{middleware.AdminOnly()},
		},
	}
}
