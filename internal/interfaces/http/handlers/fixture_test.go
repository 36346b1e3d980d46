package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appbilling "github.com/turtacn/MRM-Billing/internal/application/billing"
	"github.com/turtacn/MRM-Billing/internal/application/reporting"
	"github.com/turtacn/MRM-Billing/internal/domain/settings"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/memstore"
	"github.com/turtacn/MRM-Billing/internal/infrastructure/storage/minio"
	"github.com/turtacn/MRM-Billing/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memObjectStore) Upload(_ context.Context, req *minio.UploadRequest) (*minio.UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[req.ObjectKey] = req.Data
	return &minio.UploadResult{Bucket: "mrm-exports", ObjectKey: req.ObjectKey, Size: int64(len(req.Data))}, nil
}

type testAPI struct {
	engine  *gin.Engine
	entries *memstore.EntryStore
	objects *memObjectStore
	logger  *testutil.MockLogger
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	api := &testAPI{
		entries: memstore.NewEntryStore(),
		objects: &memObjectStore{objects: map[string][]byte{}},
		logger:  testutil.NewMockLogger(),
	}
	inactive := testutil.NewClient("C900", "Dormant", "0.10")
	inactive.IsActive = false
	clients := memstore.NewClientStore(
		testutil.NewClient("C001", "Asha Rao", "0.10"),
		testutil.NewClient("C002", "Bela Sen", "0.15"),
		inactive,
	)
	set := settings.NewStatic(nil)
	clock := func() time.Time { return time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC) }

	svc, err := appbilling.NewService(appbilling.Dependencies{
		Entries: api.entries, Clients: clients, Settings: set, Logger: api.logger, Clock: clock,
	})
	require.NoError(t, err)
	exports, err := reporting.NewExportService(reporting.ExportDependencies{
		Entries: api.entries, Clients: clients, Settings: set, Store: api.objects, Logger: api.logger, Clock: clock,
	})
	require.NoError(t, err)

	bh := NewBillingHandler(svc, api.logger)
	rh := NewReportHandler(svc, exports, api.logger)
	ch := NewClientHandler(clients, api.logger)

	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.GET("/billing", bh.List)
	v1.POST("/billing", bh.Save)
	v1.GET("/billing/reports/summary", rh.Summary)
	v1.GET("/billing/reports/client/:clientId", rh.ClientReport)
	v1.GET("/billing/exports/:kind", rh.Download)
	v1.POST("/billing/exports/:kind", rh.Publish)
	v1.GET("/billing/:clientId/:month", bh.Get)
	v1.DELETE("/billing/:clientId/:month", bh.Delete)
	v1.GET("/billing/:clientId/:month/carry-in", bh.CarryIn)
	v1.PUT("/billing/:clientId/:month/status", bh.UpdateStatus)
	v1.GET("/clients", ch.List)
	v1.GET("/clients/:clientId", ch.Get)
	api.engine = r
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

// decode unmarshals the response body into a generic map.
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *testAPI) save(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/billing", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["data"].(map[string]interface{})
}

//Personal.AI order the ending
