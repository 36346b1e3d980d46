package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/api/v1/billing", ok)
	r.OPTIONS("/api/v1/billing", ok)
	r.GET("/healthz", ok)
	return r
}

func serve(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_PreflightRequest(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://billing.example.com"}

	w := serve(newEngine(CORS(config)), http.MethodOptions, "/api/v1/billing", map[string]string{
		"Origin":                        "https://billing.example.com",
		"Access-Control-Request-Method": "POST",
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://billing.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_SimpleRequest(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://billing.example.com"}

	w := serve(newEngine(CORS(config)), http.MethodGet, "/api/v1/billing", map[string]string{"Origin": "https://billing.example.com"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://billing.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Content-Disposition")
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	config := DefaultCORSConfig()
	config.AllowedOrigins = []string{"https://billing.example.com"}

	w := serve(newEngine(CORS(config)), http.MethodGet, "/api/v1/billing", map[string]string{"Origin": "https://evil.example.org"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoOriginHeader(t *testing.T) {
	w := serve(newEngine(CORS(DefaultCORSConfig())), http.MethodGet, "/api/v1/billing", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcards(t *testing.T) {
	all := DefaultCORSConfig()
	all.AllowedOrigins = []string{"*"}
	w := serve(newEngine(CORS(all)), http.MethodGet, "/api/v1/billing", map[string]string{"Origin": "https://any.example.net"})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	all.AllowCredentials = true
	w = serve(newEngine(CORS(all)), http.MethodGet, "/api/v1/billing", map[string]string{"Origin": "https://any.example.net"})
	assert.Equal(t, "https://any.example.net", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	sub := DefaultCORSConfig()
	sub.AllowedOrigins = []string{"*.example.com"}
	sub.AllowWildcard = true
	w = serve(newEngine(CORS(sub)), http.MethodGet, "/api/v1/billing", map[string]string{"Origin": "https://Ops.Example.com"})
	assert.Equal(t, "https://Ops.Example.com", w.Header().Get("Access-Control-Allow-Origin"))
	w = serve(newEngine(CORS(sub)), http.MethodGet, "/api/v1/billing", map[string]string{"Origin": "https://example.org"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDefaultCORSConfig(t *testing.T) {
	cfg := DefaultCORSConfig()
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.Contains(t, cfg.AllowedMethods, http.MethodDelete)
}

//Personal.AI order the ending
