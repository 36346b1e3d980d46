package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedApril(t *testing.T, api *testAPI) {
	t.Helper()
	api.save(t, map[string]interface{}{"client_id": "C001", "month": "apr", "amounts": map[string]string{"iprs": "1000"}})
	api.save(t, map[string]interface{}{"client_id": "C002", "month": "apr", "amounts": map[string]string{"iprs": "1000"}})
}

func TestReportHandler_Summary(t *testing.T) {
	api := newTestAPI(t)
	seedApril(t, api)

	w := api.do(t, http.MethodGet, "/api/v1/billing/reports/summary?month=apr", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sum := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(2), sum["total_entries"])
	assert.Equal(t, "250", sum["total_commission"])
	assert.Equal(t, "45", sum["total_gst"])
	assert.Equal(t, "295", sum["total_invoice"])

	w = api.do(t, http.MethodGet, "/api/v1/billing/reports/summary?month=may", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decode(t, w)["data"].(map[string]interface{})["total_entries"])

	w = api.do(t, http.MethodGet, "/api/v1/billing/reports/summary?month=13", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_ClientReport(t *testing.T) {
	api := newTestAPI(t)
	seedApril(t, api)
	api.save(t, map[string]interface{}{"client_id": "C001", "month": "may", "amounts": map[string]string{"iprs": "1000"}})

	w := api.do(t, http.MethodGet, "/api/v1/billing/reports/client/C001?financialYear=2025-26", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "C001", report["client_id"])
	assert.Len(t, report["entries"], 2)
	assert.Equal(t, "236", report["summary"].(map[string]interface{})["total_invoice"])

	w = api.do(t, http.MethodGet, "/api/v1/billing/reports/client/NOPE", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandler_Download(t *testing.T) {
	api := newTestAPI(t)
	seedApril(t, api)

	w := api.do(t, http.MethodGet, "/api/v1/billing/exports/gst?month=apr", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Equal(t, `attachment; filename="MRM_GST_Report_apr.csv"`, w.Header().Get("Content-Disposition"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "C001,Asha Rao,April 2025,100.00,18%,18.00,118.00", lines[1])
	assert.Equal(t, "C002,Bela Sen,April 2025,150.00,18%,27.00,177.00", lines[2])

	w = api.do(t, http.MethodGet, "/api/v1/billing/exports/client-master", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "C900,Dormant,Composer,10%")

	w = api.do(t, http.MethodGet, "/api/v1/billing/exports/pdf?month=apr", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EXPORT_001", decode(t, w)["code"])

	w = api.do(t, http.MethodGet, "/api/v1/billing/exports/royalty", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandler_Publish(t *testing.T) {
	api := newTestAPI(t)
	seedApril(t, api)

	w := api.do(t, http.MethodPost, "/api/v1/billing/exports/invoice?month=apr", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "fy=2025/apr/MRM_Invoice_Report_apr.csv", res["object_key"])
	assert.Equal(t, "mrm-exports", res["bucket"])

	stored, ok := api.objects.objects["fy=2025/apr/MRM_Invoice_Report_apr.csv"]
	require.True(t, ok)
	assert.Contains(t, string(stored), "INV/2025-26/APR/C002")
}

func TestReportHandler_ExportsNotConfigured(t *testing.T) {
	api := newTestAPI(t)
	h := NewReportHandler(nil, nil, api.logger)
	api.engine.GET("/detached/:kind", h.Download)

	w := api.do(t, http.MethodGet, "/detached/gst?month=apr", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

//Personal.AI order the ending
