package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MRM-Billing/internal/testutil"
)

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := serve(r, http.MethodGet, "/api/v1/billing", nil)
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)

	w = serve(r, http.MethodGet, "/api/v1/billing", map[string]string{HeaderRequestID: "req-42"})
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
}

func TestRequestLogging_Levels(t *testing.T) {
	log := testutil.NewMockLogger()
	r := newEngine(RequestID(), RequestLogging(log, nil, DefaultLoggingConfig()))
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	serve(r, http.MethodGet, "/api/v1/billing?month=apr", map[string]string{HeaderRequestID: "req-1"})
	require.True(t, log.HasMessage("info", "HTTP request completed"))
	path, _ := log.Field("HTTP request completed", "path")
	assert.Equal(t, "/api/v1/billing?month=apr", path)
	id, _ := log.Field("HTTP request completed", "request_id")
	assert.Equal(t, "req-1", id)

	serve(r, http.MethodGet, "/missing", nil)
	assert.True(t, log.HasMessage("warn", "HTTP request completed with client error"))

	serve(r, http.MethodGet, "/boom", nil)
	assert.True(t, log.HasMessage("error", "HTTP request completed with server error"))
}

func TestRequestLogging_SkipsProbes(t *testing.T) {
	log := testutil.NewMockLogger()
	r := newEngine(RequestLogging(log, nil, DefaultLoggingConfig()))

	serve(r, http.MethodGet, "/healthz", nil)
	assert.Empty(t, log.GetMessages())
}

func TestRecovery(t *testing.T) {
	log := testutil.NewMockLogger()
	r := newEngine(Recovery(log))
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, log.HasMessage("error", "panic recovered"))
}

//Personal.AI order the ending
