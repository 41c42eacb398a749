package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	MetricRecordsGenerated = "records_generated_total"
	MetricRuns             = "runs_total"
	MetricRowsLoaded       = "rows_loaded_total"
	MetricRunDuration      = "run_duration_seconds"
)

var CounterRecordsGenerated = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "datacraft",
		Name:      MetricRecordsGenerated,
		Help:      "Records produced by the generator, by run source.",
	},
	[]string{"source"},
)

var CounterRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "datacraft",
		Name:      MetricRuns,
		Help:      "Finished generation runs, by source and status.",
	},
	[]string{"source", "status"},
)

var CounterRowsLoaded = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "datacraft",
		Name:      MetricRowsLoaded,
		Help:      "Rows written to sinks, by target kind.",
	},
	[]string{"kind"},
)

var HistogramRunDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "datacraft",
		Name:      MetricRunDuration,
		Help:      "Wall time of generation runs.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"source"},
)

func init() {
	prometheus.MustRegister(CounterRecordsGenerated)
	prometheus.MustRegister(CounterRuns)
	prometheus.MustRegister(CounterRowsLoaded)
	prometheus.MustRegister(HistogramRunDuration)
}

// ObserveRun records one finished run. records is ignored for failed runs.
func ObserveRun(source, status string, records int, elapsed time.Duration) {
	source = sourceLabel(source)
	CounterRuns.WithLabelValues(source, status).Inc()
	HistogramRunDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	if status == "success" && records > 0 {
		CounterRecordsGenerated.WithLabelValues(source).Add(float64(records))
	}
}

func ObserveLoad(kind string, rows int) {
	if rows > 0 {
		CounterRowsLoaded.WithLabelValues(kind).Add(float64(rows))
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// template:<name> sources collapse to one label to bound cardinality
func sourceLabel(source string) string {
	if strings.HasPrefix(source, "template:") {
		return "template"
	}
	return source
}
