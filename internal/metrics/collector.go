package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all metrics for the intake service
type Collector struct {
	uploadRequests  *prometheus.CounterVec
	uploadErrors    *prometheus.CounterVec
	rowsValidated   *prometheus.CounterVec
	rowsInvalid     *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	validationDuration prometheus.Histogram
	rulesActive     prometheus.Gauge
	ruleOperations  *prometheus.CounterVec
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		uploadRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skedplan",
			Subsystem: "intake",
			Name:      "upload_requests_total",
			Help:      "Total number of dataset uploads",
		}, []string{"kind"}),
		uploadErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skedplan",
			Subsystem: "intake",
			Name:      "upload_errors_total",
			Help:      "Total number of unreadable uploads",
		}, []string{"kind"}),
		rowsValidated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skedplan",
			Subsystem: "intake",
			Name:      "rows_validated_total",
			Help:      "Total number of rows run through validation",
		}, []string{"kind"}),
		rowsInvalid: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skedplan",
			Subsystem: "intake",
			Name:      "rows_invalid_total",
			Help:      "Total number of rows carrying at least one error",
		}, []string{"kind"}),
		validationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skedplan",
			Subsystem: "intake",
			Name:      "validation_errors_total",
			Help:      "Total number of validation errors by collection kind",
		}, []string{"kind"}),
		validationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skedplan",
			Subsystem: "intake",
			Name:      "validation_duration_seconds",
			Help:      "Time spent validating one upload",
			Buckets:   prometheus.DefBuckets,
		}),
		rulesActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "skedplan",
			Subsystem: "rules",
			Name:      "rules_total",
			Help:      "Number of configured rules",
		}),
		ruleOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skedplan",
			Subsystem: "rules",
			Name:      "rule_operations_total",
			Help:      "Total rule store operations by kind",
		}, []string{"operation"}),
	}
}

// RecordUpload records one upload attempt for a collection kind
func (c *Collector) RecordUpload(kind string) {
	c.uploadRequests.WithLabelValues(kind).Inc()
}

// RecordUploadError records an unreadable upload
func (c *Collector) RecordUploadError(kind string) {
	c.uploadErrors.WithLabelValues(kind).Inc()
}

// RecordValidation records the outcome of one validation run
func (c *Collector) RecordValidation(kind string, totalRows, invalidRows, errorCount int, seconds float64) {
	c.rowsValidated.WithLabelValues(kind).Add(float64(totalRows))
	c.rowsInvalid.WithLabelValues(kind).Add(float64(invalidRows))
	c.validationErrors.WithLabelValues(kind).Add(float64(errorCount))
	c.validationDuration.Observe(seconds)
}

// SetActiveRules tracks the current rule count
func (c *Collector) SetActiveRules(n int) {
	c.rulesActive.Set(float64(n))
}

// RecordRuleOperation counts a rule store operation
func (c *Collector) RecordRuleOperation(op string) {
	c.ruleOperations.WithLabelValues(op).Inc()
}
