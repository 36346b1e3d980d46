package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	c, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Equal(t, "mrm-go-sdk/"+Version, c.userAgent)

	_, err = NewClient("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewClient("ftp://api.example.com")
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewClient("://bad")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestClient_SubClients_ConcurrentAccess(t *testing.T) {
	c, err := NewClient("http://api.example.com")
	require.NoError(t, err)

	var wg sync.WaitGroup
	billing := make([]*BillingClient, 10)
	for i := range billing {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			billing[i] = c.Billing()
			_ = c.Clients()
		}(i)
	}
	wg.Wait()
	for _, b := range billing {
		assert.Same(t, billing[0], b)
	}
	assert.Same(t, c.Clients(), c.Clients())
}

func TestClient_Do_RequestHeaders(t *testing.T) {
	var ids sync.Map
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "sdk-test", r.Header.Get("User-Agent"))
		id := r.Header.Get("X-Request-ID")
		assert.NotEmpty(t, id)
		_, dup := ids.LoadOrStore(id, true)
		assert.False(t, dup)
		writeJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	}, WithAPIKey("test-key"), WithUserAgent("sdk-test"))

	var out map[string]string
	for i := 0; i < 2; i++ {
		require.NoError(t, c.do(context.Background(), http.MethodPost, "echo", map[string]int{"a": 1}, &out))
	}
	assert.Equal(t, "yes", out["ok"])
}

func TestClient_Do_NoAPIKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.do(context.Background(), http.MethodDelete, "/x", nil, nil))
}

func TestClient_Do_4xxNoRetry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusNotFound, map[string]string{
			"code": "ENTRY_001", "message": "billing entry not found", "detail": "C001/apr",
		})
	})

	err := c.do(context.Background(), http.MethodGet, "/x", nil, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "ENTRY_001", apiErr.Code)
	assert.Equal(t, "C001/apr", apiErr.Detail)
	assert.True(t, apiErr.IsNotFound())
	assert.NotEmpty(t, apiErr.RequestID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Do_5xxRetry(t *testing.T) {
	var calls int32
	logger := &testLogger{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	}, WithLogger(logger))

	require.NoError(t, c.do(context.Background(), http.MethodGet, "/x", nil, nil))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Positive(t, logger.count())
}

func TestClient_Do_5xxRetryExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"code": "COMMON_503", "message": "down"})
	}, WithRetryMax(2))

	err := c.do(context.Background(), http.MethodGet, "/x", nil, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsServerError())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Do_429RetryAfter(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"code": "COMMON_429", "message": "slow down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{})
	})

	require.NoError(t, c.do(context.Background(), http.MethodGet, "/x", nil, nil))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_Do_NonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("plain failure"))
	})
	err := c.do(context.Background(), http.MethodGet, "/x", nil, nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "plain failure", apiErr.Message)
	assert.True(t, apiErr.IsValidation())
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.do(ctx, http.MethodGet, "/x", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_Do_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	c, err := NewClient(url, WithRetryMax(1), WithRetryWait(time.Millisecond, time.Millisecond))
	require.NoError(t, err)
	assert.Error(t, c.do(context.Background(), http.MethodGet, "/x", nil, nil))
}

func TestAPIError_Methods(t *testing.T) {
	e := &APIError{StatusCode: http.StatusTooManyRequests, Code: "COMMON_429", Message: "slow", RequestID: "r1"}
	assert.True(t, e.IsRateLimited())
	assert.False(t, e.IsServerError())
	assert.Contains(t, e.Error(), "COMMON_429")
	assert.Contains(t, e.Error(), "request_id=r1")

	assert.True(t, (&APIError{StatusCode: http.StatusUnprocessableEntity}).IsValidation())
}

func TestCalculateBackoff(t *testing.T) {
	c := &Client{retryWaitMin: 100 * time.Millisecond, retryWaitMax: 300 * time.Millisecond}
	first := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.Less(t, first, 125*time.Millisecond)

	capped := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, capped, 300*time.Millisecond)
	assert.Less(t, capped, 375*time.Millisecond)
}

//Personal.AI order the ending
