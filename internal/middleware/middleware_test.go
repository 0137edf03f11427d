package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := CORSMiddleware(DefaultCORSConfig([]string{"http://app.test"}))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/getTweets", nil)
	req.Header.Set("Origin", "http://app.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Store-Dataset")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCORSIgnoresOtherOrigins(t *testing.T) {
	handler := CORSMiddleware(DefaultCORSConfig([]string{"http://app.test"}))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/getTweets", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	handler := CORSMiddleware(nil)(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/addPost", nil)
	req.Header.Set("Origin", "http://anywhere.test")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestPrometheusMiddlewareCountsByStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusMiddleware(okHandler(), registry)

	for i := 0; i < 3; i++ {
		m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/getTweets", nil))
	}
	m.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, float64(3), testutil.ToFloat64(m.requests.WithLabelValues("/getTweets", "418")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.active))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requests))
}
