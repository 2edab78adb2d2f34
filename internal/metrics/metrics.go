package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IngestRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memepulse_ingest_runs_total",
		Help: "Total ingestion runs",
	})
	IngestErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memepulse_ingest_errors_total",
		Help: "Total ingestion errors",
	})
	IngestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "memepulse_ingest_duration_seconds",
		Help:    "Ingestion run duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	RecordsNormalized = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memepulse_records_normalized_total",
		Help: "Raw records normalized into canonical tweets",
	})
	RecordsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memepulse_records_skipped_total",
		Help: "Raw records skipped as malformed",
	})
	FilesSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memepulse_files_skipped_total",
		Help: "Source files skipped as unreadable",
	})
	TweetsInserted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memepulse_tweets_inserted_total",
		Help: "New tweet rows created",
	})
	TweetsScored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "memepulse_tweets_scored_total",
		Help: "Tweets scored by the sentiment scorer",
	})
	AggregationRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "memepulse_aggregation_runs_total",
		Help: "Aggregation runs by interval",
	}, []string{"interval"})
	AggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "memepulse_aggregation_duration_seconds",
		Help:    "Aggregation run duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "memepulse_command_runs_total",
		Help: "CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "memepulse_command_errors_total",
		Help: "CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(
		IngestRuns, IngestErrors, IngestDuration,
		RecordsNormalized, RecordsSkipped, FilesSkipped,
		TweetsInserted, TweetsScored,
		AggregationRuns, AggregationDuration,
		CommandRuns, CommandErrors,
	)
}

// IncCommandRun increments the invocation counter for a CLI command.
func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }

// IncCommandError increments the failure counter for a CLI command.
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, nil) }()
}

// ObserveIngestDuration records a run duration.
func ObserveIngestDuration(start time.Time) {
	IngestDuration.Observe(time.Since(start).Seconds())
}

// ObserveAggregationDuration records an aggregation run duration.
func ObserveAggregationDuration(start time.Time) {
	AggregationDuration.Observe(time.Since(start).Seconds())
}
