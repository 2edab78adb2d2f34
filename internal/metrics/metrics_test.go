package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	IngestRuns.Inc()
	RecordsSkipped.Inc()
	FilesSkipped.Inc()
	TweetsScored.Add(3)
	AggregationRuns.WithLabelValues("1m").Inc()
	IncCommandRun("ingest")
	ObserveIngestDuration(time.Now().Add(-1500 * time.Millisecond))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"memepulse_ingest_runs_total",
		"memepulse_records_skipped_total",
		"memepulse_files_skipped_total",
		"memepulse_tweets_scored_total",
		"memepulse_aggregation_runs_total",
		"memepulse_command_runs_total",
		"memepulse_ingest_duration_seconds",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
