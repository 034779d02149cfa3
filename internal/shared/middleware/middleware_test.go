package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ClientIPKey))
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func get(r *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = "10.0.0.1:5555"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newEngine(RequestID())

	w := get(r, "/ping", nil)
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	w = get(r, "/ping", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestClientIP(t *testing.T) {
	r := newEngine(ClientIP())

	assert.Equal(t, "10.0.0.1", get(r, "/ping", nil).Body.String())
	assert.Equal(t, "203.0.113.9", get(r, "/ping", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}).Body.String())
	assert.Equal(t, "198.51.100.7", get(r, "/ping", map[string]string{"X-Real-IP": "198.51.100.7"}).Body.String())
}

func TestRecovery(t *testing.T) {
	r := newEngine(RequestID(), Recovery(), Logger())

	w := get(r, "/panic", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"InternalError","details":[]}`, w.Body.String())
}

func TestRateLimit(t *testing.T) {
	store := NewLimiterStore(0.001, 2)
	r := newEngine(ClientIP(), RateLimit(store))

	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)

	w := get(r, "/ping", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"RateLimited","details":[]}`, w.Body.String())

	// a different client has its own bucket
	assert.Equal(t, http.StatusOK, get(r, "/ping", map[string]string{"X-Real-IP": "192.0.2.1"}).Code)
}

func TestLimiterStore_Cleanup(t *testing.T) {
	store := NewLimiterStore(1, 1)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Get("a")
	store.Get("b")
	require.Equal(t, 2, store.Len())

	now = now.Add(10 * time.Minute)
	store.Get("b")
	now = now.Add(10 * time.Minute)
	store.Cleanup()

	assert.Equal(t, 1, store.Len())
}
