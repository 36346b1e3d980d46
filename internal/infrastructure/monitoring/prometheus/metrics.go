package prometheus

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Outcome label values.
const (
	OutcomeCreated  = "created"
	OutcomeReplaced = "replaced"
	OutcomeDeleted  = "deleted"
	OutcomeSkipped  = "skipped"
	OutcomeNotFound = "not_found"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeOK       = "ok"
)

// AppMetrics holds the billing service metrics. A nil *AppMetrics records
// nothing, so components can run without a collector.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec

	// Billing entries
	EntrySavesTotal         CounterVec
	EntryDeletesTotal       CounterVec
	EntryStatusChangesTotal CounterVec
	EntryOperationDuration  HistogramVec
	InvoiceTotalINR         HistogramVec
	LegacyImportRowsTotal   CounterVec

	// Exports
	ExportsTotal    CounterVec
	ExportSizeBytes HistogramVec

	// Events
	EventsPublishedTotal CounterVec
	EventsConsumedTotal  CounterVec

	// Health
	HealthCheckStatus GaugeVec
}

var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
	DefaultInvoiceBuckets      = []float64{0, 1000, 5000, 10000, 50000, 100000, 500000, 1000000, 5000000}
	DefaultSizeBuckets         = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
)

// NewAppMetrics registers every billing metric on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")

	m.EntrySavesTotal = collector.RegisterCounter("entry_saves_total", "Billing entry saves by outcome", "outcome")
	m.EntryDeletesTotal = collector.RegisterCounter("entry_deletes_total", "Billing entry deletes by outcome", "outcome")
	m.EntryStatusChangesTotal = collector.RegisterCounter("entry_status_changes_total", "Billing entry status updates", "status", "invoice_status")
	m.EntryOperationDuration = collector.RegisterHistogram("entry_operation_duration_seconds", "Billing entry operation duration", DefaultDBDurationBuckets, "operation")
	m.InvoiceTotalINR = collector.RegisterHistogram("invoice_total_inr", "Total invoice value of saved entries in INR", DefaultInvoiceBuckets, "month")
	m.LegacyImportRowsTotal = collector.RegisterCounter("legacy_import_rows_total", "Legacy billing rows imported by outcome", "outcome")

	m.ExportsTotal = collector.RegisterCounter("exports_total", "CSV exports by kind and outcome", "kind", "outcome")
	m.ExportSizeBytes = collector.RegisterHistogram("export_size_bytes", "Size of rendered CSV exports", DefaultSizeBuckets, "kind")

	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Billing events published", "event_type", "outcome")
	m.EventsConsumedTotal = collector.RegisterCounter("events_consumed_total", "Billing events consumed by the worker", "event_type", "outcome")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")

	return m
}

func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordEntrySave counts a save and, when it succeeded, observes the invoice total.
func (m *AppMetrics) RecordEntrySave(outcome string, month string, invoice decimal.Decimal, duration time.Duration) {
	if m == nil {
		return
	}
	m.EntrySavesTotal.WithLabelValues(outcome).Inc()
	m.EntryOperationDuration.WithLabelValues("save").Observe(duration.Seconds())
	if outcome == OutcomeCreated || outcome == OutcomeReplaced {
		m.InvoiceTotalINR.WithLabelValues(month).Observe(invoice.InexactFloat64())
	}
}

func (m *AppMetrics) RecordEntryDelete(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.EntryDeletesTotal.WithLabelValues(outcome).Inc()
	m.EntryOperationDuration.WithLabelValues("delete").Observe(duration.Seconds())
}

func (m *AppMetrics) RecordStatusChange(status, invoiceStatus string) {
	if m == nil {
		return
	}
	m.EntryStatusChangesTotal.WithLabelValues(status, invoiceStatus).Inc()
}

func (m *AppMetrics) RecordImportRows(created, skipped, failed int) {
	if m == nil {
		return
	}
	m.LegacyImportRowsTotal.WithLabelValues(OutcomeCreated).Add(float64(created))
	m.LegacyImportRowsTotal.WithLabelValues(OutcomeSkipped).Add(float64(skipped))
	m.LegacyImportRowsTotal.WithLabelValues(OutcomeError).Add(float64(failed))
}

func (m *AppMetrics) RecordExport(kind string, size int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ExportsTotal.WithLabelValues(kind, OutcomeError).Inc()
		return
	}
	m.ExportsTotal.WithLabelValues(kind, OutcomeOK).Inc()
	m.ExportSizeBytes.WithLabelValues(kind).Observe(float64(size))
}

func (m *AppMetrics) RecordEventPublished(eventType string, err error) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(eventType, outcomeOf(err)).Inc()
}

func (m *AppMetrics) RecordEventConsumed(eventType string, err error) {
	if m == nil {
		return
	}
	m.EventsConsumedTotal.WithLabelValues(eventType, outcomeOf(err)).Inc()
}

func (m *AppMetrics) SetHealth(component string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}

//Personal.AI order the ending
