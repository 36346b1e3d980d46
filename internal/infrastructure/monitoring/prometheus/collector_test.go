package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MRM-Billing/internal/infrastructure/monitoring/logging"
)

func newTestCollector(t *testing.T) MetricsCollector {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "mrm"}, logging.NewNopLogger())
	require.NoError(t, err)
	return c
}

func scrapeMetrics(t *testing.T, collector MetricsCollector) string {
	t.Helper()
	w := httptest.NewRecorder()
	collector.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func assertMetricLine(t *testing.T, output, line string) {
	t.Helper()
	for _, l := range strings.Split(output, "\n") {
		if l == line {
			return
		}
	}
	t.Errorf("metric line %q not found in:\n%s", line, output)
}

func TestNewMetricsCollector_EmptyNamespace(t *testing.T) {
	_, err := NewMetricsCollector(CollectorConfig{}, nil)
	assert.Error(t, err)
}

func TestNewMetricsCollector_WithProcessMetrics(t *testing.T) {
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "mrm", EnableProcessMetrics: true}, nil)
	require.NoError(t, err)
	assert.Contains(t, scrapeMetrics(t, c), "process_cpu_seconds_total")
}

func TestRegisterCounter_WithLabels(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("entry_saves_total", "saves", "outcome").WithLabelValues("created").Add(2)

	assertMetricLine(t, scrapeMetrics(t, c), `mrm_entry_saves_total{outcome="created"} 2`)
}

func TestRegisterCounter_DuplicateSharesVector(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("exports_total", "help").WithLabelValues().Inc()
	c.RegisterCounter("exports_total", "help").WithLabelValues().Inc()

	assertMetricLine(t, scrapeMetrics(t, c), "mrm_exports_total 2")
}

func TestRegisterGauge(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterGauge("health_check_status", "health", "component").WithLabelValues("postgres").Set(1)

	assertMetricLine(t, scrapeMetrics(t, c), `mrm_health_check_status{component="postgres"} 1`)
}

func TestRegisterHistogram_DefaultBuckets(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterHistogram("entry_operation_duration_seconds", "latency", nil).WithLabelValues().Observe(0.1)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `mrm_entry_operation_duration_seconds_bucket{le="0.1"} 1`)
	assert.Contains(t, output, `mrm_entry_operation_duration_seconds_bucket{le="10"} 1`)
}

func TestConcurrentRegistration(t *testing.T) {
	c := newTestCollector(t)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RegisterCounter("events_consumed_total", "help", "event_type").WithLabelValues("entry.saved").Inc()
		}()
	}
	wg.Wait()

	assertMetricLine(t, scrapeMetrics(t, c), `mrm_events_consumed_total{event_type="entry.saved"} 50`)
}

func TestRegisterGauge_TypeConflictFallsBackToNoop(t *testing.T) {
	c := newTestCollector(t)
	c.RegisterCounter("conflict", "help").WithLabelValues().Inc()

	gauge := c.RegisterGauge("conflict", "help")
	assert.NotPanics(t, func() { gauge.WithLabelValues().Set(10) })

	hist := c.RegisterHistogram("conflict", "help", nil)
	assert.NotPanics(t, func() { hist.WithLabelValues().Observe(1) })

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "# TYPE mrm_conflict counter")
	assertMetricLine(t, output, "mrm_conflict 1")
}

//Personal.AI order the ending
