package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// execuções de análise por status (ok, partial, failed)
	AnalysisRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_runs_total",
			Help: "Total analysis runs by outcome",
		},
		[]string{"status"},
	)

	// duração de uma execução completa
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "analyst_run_duration_seconds",
			Help:    "Histogram of analysis run durations",
			Buckets: prometheus.DefBuckets,
		},
	)

	// linhas descartadas pelo carregador
	DroppedRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analyst_dropped_rows_total",
			Help: "Total dataset rows dropped during load",
		},
	)

	// chaves omitidas por falta de dados
	InsufficientData = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_insufficient_data_total",
			Help: "Total insight keys omitted for insufficient data",
		},
		[]string{"key"},
	)

	// nota da última execução
	LastScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "analyst_last_score",
			Help: "Score of the most recent analysis run",
		},
	)

	// arquivos processados pela análise agendada
	ReportSyncFiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_report_sync_files_total",
			Help: "Total files processed by the scheduled report sync",
		},
		[]string{"status"},
	)

	// requisições por endpoint, método e status
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyst_requests_total",
			Help: "Total API requests received",
		},
		[]string{"endpoint", "method", "status"},
	)

	// latência das requisições em segundos
	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analyst_request_duration_seconds",
			Help:    "Histogram of request latencies",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)
)

// Status das execuções
const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

func init() {
	prometheus.MustRegister(
		AnalysisRuns,
		AnalysisDuration,
		DroppedRows,
		InsufficientData,
		LastScore,
		ReportSyncFiles,
		RequestCount,
		RequestLatency,
	)
}
