package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	lookupsTotal   *prometheus.CounterVec
	lookupDuration prometheus.Histogram
	batchesTotal   prometheus.Counter
	filesTotal     prometheus.Gauge
	stagedPercent  prometheus.Gauge
	lastRun        prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,

		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stagestate_lookups_total",
				Help: "Total number of status lookups by resulting status",
			},
			[]string{"backend", "status"},
		),

		lookupDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stagestate_lookup_duration_seconds",
				Help:    "Status lookup duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),

		batchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stagestate_batches_total",
				Help: "Total number of lookup batches completed",
			},
		),

		filesTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stagestate_files",
				Help: "Number of files checked in the last run",
			},
		),

		stagedPercent: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stagestate_staged_percent",
				Help: "Percentage of files with a disk copy in the last run",
			},
		),

		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stagestate_last_run_timestamp_seconds",
				Help: "Unix time the last run finished",
			},
		),
	}

	reg.MustRegister(r.lookupsTotal)
	reg.MustRegister(r.lookupDuration)
	reg.MustRegister(r.batchesTotal)
	reg.MustRegister(r.filesTotal)
	reg.MustRegister(r.stagedPercent)
	reg.MustRegister(r.lastRun)

	return r
}

// RecordLookup records one status lookup.
func (r *Registry) RecordLookup(backend, status string, duration float64) {
	r.lookupsTotal.WithLabelValues(backend, status).Inc()
	r.lookupDuration.Observe(duration)
}

// RecordBatch records a completed batch.
func (r *Registry) RecordBatch() {
	r.batchesTotal.Inc()
}

// RecordSummary records the aggregate of a finished run.
func (r *Registry) RecordSummary(files int, percent float64) {
	r.filesTotal.Set(float64(files))
	r.stagedPercent.Set(percent)
	r.lastRun.SetToCurrentTime()
}

// WriteTextfile writes all metrics in the text exposition format, for
// pickup by the node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
