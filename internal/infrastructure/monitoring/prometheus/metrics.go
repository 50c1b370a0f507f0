package prometheus

import (
	"github.com/medlens/reviewsignal/internal/infrastructure/monitoring/logging"
)

// Metrics bundles every instrument the pipeline emits.
type Metrics struct {
	// Pipeline
	RunsStarted       CounterVec
	RunsFinished      CounterVec
	RunDuration       HistogramVec
	RowsRead          CounterVec
	RowsKept          CounterVec
	RowsDropped       CounterVec
	StageDuration     HistogramVec
	MarkerEvents      CounterVec
	ChangeEvents      CounterVec
	ActiveRuns        GaugeVec

	// Serving client
	ServingRequests  CounterVec
	ServingDuration  HistogramVec
	ServingErrors    CounterVec

	// Infrastructure
	DBQueryDuration   HistogramVec
	CacheHits         CounterVec
	CacheMisses       CounterVec
	MessagesPublished CounterVec
	MessagesConsumed  CounterVec
}

// NewMetrics registers the full instrument set on the collector.
func NewMetrics(collector Collector, logger logging.Logger) *Metrics {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	m := &Metrics{}

	durationBuckets := []float64{.01, .05, .1, .5, 1, 5, 15, 60, 300}

	m.RunsStarted = collector.Counter("runs_started_total", "Pipeline runs started", "source")
	m.RunsFinished = collector.Counter("runs_finished_total", "Pipeline runs finished", "status")
	m.RunDuration = collector.Histogram("run_duration_seconds", "End to end run duration", durationBuckets, "source")
	m.RowsRead = collector.Counter("rows_read_total", "Review rows read from the dataset", "source")
	m.RowsKept = collector.Counter("rows_kept_total", "Review rows kept after filtering", "source")
	m.RowsDropped = collector.Counter("rows_dropped_total", "Review rows dropped during preprocessing", "reason")
	m.StageDuration = collector.Histogram("stage_duration_seconds", "Per stage processing duration", durationBuckets, "stage")
	m.MarkerEvents = collector.Counter("marker_events_total", "Disease marker mentions detected", "topic")
	m.ChangeEvents = collector.Counter("change_events_total", "Treatment change events detected", "treatment")
	m.ActiveRuns = collector.Gauge("active_runs", "Runs currently executing")

	m.ServingRequests = collector.Counter("serving_requests_total", "Model serving requests", "endpoint")
	m.ServingDuration = collector.Histogram("serving_request_duration_seconds", "Model serving request latency", nil, "endpoint")
	m.ServingErrors = collector.Counter("serving_errors_total", "Model serving request failures", "endpoint", "code")

	m.DBQueryDuration = collector.Histogram("db_query_duration_seconds", "Database query latency", nil, "operation")
	m.CacheHits = collector.Counter("cache_hits_total", "Cache lookups that found a value", "key_kind")
	m.CacheMisses = collector.Counter("cache_misses_total", "Cache lookups that missed", "key_kind")
	m.MessagesPublished = collector.Counter("messages_published_total", "Events published to the broker", "topic")
	m.MessagesConsumed = collector.Counter("messages_consumed_total", "Events consumed from the broker", "topic")

	logger.Info("metrics registered")
	return m
}
