package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewAppMetrics_RecordsEntryLifecycle(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordEntrySave(OutcomeCreated, "apr", decimal.RequireFromString("11800"), 5*time.Millisecond)
	m.RecordEntrySave(OutcomeRejected, "apr", decimal.Zero, time.Millisecond)
	m.RecordEntryDelete(OutcomeDeleted, time.Millisecond)
	m.RecordStatusChange("submitted", "pending")

	output := scrapeMetrics(t, c)
	assertMetricLine(t, output, `test_unit_entry_saves_total{outcome="created"} 1`)
	assertMetricLine(t, output, `test_unit_entry_saves_total{outcome="rejected"} 1`)
	assertMetricLine(t, output, `test_unit_entry_deletes_total{outcome="deleted"} 1`)
	assertMetricLine(t, output, `test_unit_entry_status_changes_total{invoice_status="pending",status="submitted"} 1`)
	assertMetricLine(t, output, `test_unit_invoice_total_inr_count{month="apr"} 1`)
	assertMetricLine(t, output, `test_unit_invoice_total_inr_sum{month="apr"} 11800`)
	assertMetricLine(t, output, `test_unit_entry_operation_duration_seconds_count{operation="save"} 2`)
}

func TestAppMetrics_RecordExport(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordExport("royalty", 2048, nil)
	m.RecordExport("gst", 0, errors.New("boom"))

	output := scrapeMetrics(t, c)
	assertMetricLine(t, output, `test_unit_exports_total{kind="royalty",outcome="ok"} 1`)
	assertMetricLine(t, output, `test_unit_exports_total{kind="gst",outcome="error"} 1`)
	assertMetricLine(t, output, `test_unit_export_size_bytes_sum{kind="royalty"} 2048`)
	assert.NotContains(t, output, `test_unit_export_size_bytes_count{kind="gst"}`)
}

func TestAppMetrics_EventsImportAndHealth(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)

	m.RecordEventPublished("billing.entry.saved", nil)
	m.RecordEventConsumed("billing.entry.deleted", errors.New("handler failed"))
	m.RecordImportRows(3, 1, 0)
	m.SetHealth("postgres", true)
	m.SetHealth("redis", false)
	m.RecordHTTPRequest("GET", "/api/v1/entries", 200, 20*time.Millisecond)

	output := scrapeMetrics(t, c)
	assertMetricLine(t, output, `test_unit_events_published_total{event_type="billing.entry.saved",outcome="ok"} 1`)
	assertMetricLine(t, output, `test_unit_events_consumed_total{event_type="billing.entry.deleted",outcome="error"} 1`)
	assertMetricLine(t, output, `test_unit_legacy_import_rows_total{outcome="created"} 3`)
	assertMetricLine(t, output, `test_unit_legacy_import_rows_total{outcome="skipped"} 1`)
	assertMetricLine(t, output, `test_unit_health_check_status{component="postgres"} 1`)
	assertMetricLine(t, output, `test_unit_health_check_status{component="redis"} 0`)
	assertMetricLine(t, output, `test_unit_http_requests_total{method="GET",path="/api/v1/entries",status_code="200"} 1`)
}

func TestAppMetrics_NilReceiver(t *testing.T) {
	var m *AppMetrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordEntrySave(OutcomeCreated, "apr", decimal.NewFromInt(1), time.Millisecond)
		m.RecordEntryDelete(OutcomeNotFound, time.Millisecond)
		m.RecordStatusChange("draft", "draft")
		m.RecordImportRows(1, 0, 0)
		m.RecordExport("invoice", 10, nil)
		m.RecordEventPublished("x", nil)
		m.RecordEventConsumed("x", nil)
		m.SetHealth("kafka", true)
	})
}

//Personal.AI order the ending
