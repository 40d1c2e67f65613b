package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds every importer collector. A CLI run is too short-lived to
// be scraped, so the registry is pushed to a Pushgateway at exit.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	ImportRuns = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_import_runs_total",
			Help: "Total number of import runs by outcome",
		},
		[]string{"status", "error_code"},
	)

	RowsWritten = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_import_rows_written_total",
			Help: "Rows written per table by committed imports",
		},
		[]string{"table"},
	)

	AssessorsCreated = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "application_import_assessors_created_total",
			Help: "Assessor rows created by lookup-or-create",
		},
	)

	ImportDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "application_import_duration_seconds",
			Help:    "Duration of a whole import in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
}

// RecordSuccess counts a committed import and its rows per table.
func RecordSuccess(rows map[string]int, assessorsCreated int, duration time.Duration) {
	ImportRuns.WithLabelValues("success", "").Inc()
	for table, n := range rows {
		RowsWritten.WithLabelValues(table).Add(float64(n))
	}
	AssessorsCreated.Add(float64(assessorsCreated))
	ImportDuration.Observe(duration.Seconds())
}

func RecordFailure(errorCode string, duration time.Duration) {
	ImportRuns.WithLabelValues("failure", errorCode).Inc()
	ImportDuration.Observe(duration.Seconds())
}

// RecordAborted counts a run that failed before the import started, such as
// an unreachable database. No duration is observed.
func RecordAborted(errorCode string) {
	ImportRuns.WithLabelValues("failure", errorCode).Inc()
}

// Push sends the registry, plus any extra gatherers, to a Pushgateway
// grouped by import id.
func Push(ctx context.Context, url, job, importID string, extra ...prometheus.Gatherer) error {
	gatherers := append(prometheus.Gatherers{Registry}, extra...)
	return push.New(url, job).
		Gatherer(gatherers).
		Grouping("import_id", importID).
		PushContext(ctx)
}
