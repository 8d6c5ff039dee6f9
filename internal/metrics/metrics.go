// Package metrics registers the Prometheus collectors for imports, Sheets
// calls and exports. Helpers are safe to call before Init; they do nothing
// until the collectors exist.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "gaslog_"

	ResultSuccess = "success"
	ResultPartial = "partial"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	importRuns     *prometheus.CounterVec
	importRows     *prometheus.CounterVec
	importDuration *prometheus.HistogramVec

	sheetsRequests *prometheus.CounterVec
	sheetsLatency  *prometheus.HistogramVec

	exportsTotal *prometheus.CounterVec
)

// Init registers all collectors with the default registry.
func Init() {
	InitWith(prometheus.DefaultRegisterer)
}

// InitWith registers all collectors with reg. Only the first call has effect.
func InitWith(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		importRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_runs_total",
				Help: "Total CSV import runs by result",
			},
			[]string{"result"},
		)
		importRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "import_rows_total",
				Help: "Imported rows by outcome (succeeded, failed, skipped)",
			},
			[]string{"outcome"},
		)
		importDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "import_duration_seconds",
				Help:    "Import run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		sheetsRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sheets_requests_total",
				Help: "Google Sheets API requests by operation and result",
			},
			[]string{"operation", "result"},
		)
		sheetsLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "sheets_request_duration_seconds",
				Help:    "Google Sheets API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)

		exportsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "History exports by format and result",
			},
			[]string{"format", "result"},
		)

		reg.MustRegister(
			importRuns,
			importRows,
			importDuration,
			sheetsRequests,
			sheetsLatency,
			exportsTotal,
		)
	})
}

// ObserveImport records one import run.
func ObserveImport(result string, succeeded, failed, skipped int, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if importRuns != nil {
		importRuns.WithLabelValues(result).Inc()
	}
	if importRows != nil {
		importRows.WithLabelValues("succeeded").Add(float64(succeeded))
		importRows.WithLabelValues("failed").Add(float64(failed))
		importRows.WithLabelValues("skipped").Add(float64(skipped))
	}
	if importDuration != nil {
		importDuration.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveSheetsRequest records one Sheets or Drive API call.
func ObserveSheetsRequest(operation string, err error, duration time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	if sheetsRequests != nil {
		sheetsRequests.WithLabelValues(operation, result).Inc()
	}
	if sheetsLatency != nil {
		sheetsLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// IncExport records one history export.
func IncExport(format string, err error) {
	if format == "" {
		format = "unknown"
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	if exportsTotal != nil {
		exportsTotal.WithLabelValues(format, result).Inc()
	}
}
