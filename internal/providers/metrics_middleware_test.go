package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
	hits            int
	misses          int
}

func (m *mockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *mockMetrics) ObserveRequestDuration(_ string, _ time.Duration)              { m.durationCalls++ }
func (m *mockMetrics) IncCacheHits()                                                 { m.hits++ }
func (m *mockMetrics) IncCacheMisses()                                               { m.misses++ }
func (m *mockMetrics) ObserveStorageOperation(_, _ string, _ time.Duration, _ error) {}
func (m *mockMetrics) IncPointsRecorded(_ string)                                    {}
func (m *mockMetrics) IncCompactions(_ string)                                       {}
func (m *mockMetrics) SetStoreBytes(_ string, _ int)                                 {}

func TestMetricsMiddleware_CapturesStatusAndEndpoint(t *testing.T) {
	metrics := &mockMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	mw := MetricsMiddleware(metrics, handler)

	req := httptest.NewRequest(http.MethodPost, "/points", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, 1, metrics.requestCalls)
	assert.Equal(t, "/points", metrics.requestEndpoint)
	assert.Equal(t, http.StatusCreated, metrics.requestStatus)
	assert.Equal(t, 1, metrics.durationCalls)
}

func TestMetricsMiddleware_DefaultStatus200(t *testing.T) {
	metrics := &mockMetrics{}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	mw := MetricsMiddleware(metrics, handler)

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, metrics.requestStatus)
}

func TestStatusWriter_WriteHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rr, status: http.StatusOK}

	sw.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusNotFound, sw.status)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsMiddleware_UsesMuxPattern(t *testing.T) {
	metrics := &mockMetrics{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /export", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/export?room=42&session=abc", nil)
	MetricsMiddleware(metrics, mux).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "GET /export", metrics.requestEndpoint)
}

type recordingLogger struct {
	types []TypeEnum
}

func (l *recordingLogger) Errorf(TypeEnum, string, ...interface{}) {}
func (l *recordingLogger) Warnf(TypeEnum, string, ...interface{})  {}
func (l *recordingLogger) Debugf(t TypeEnum, _ string, _ ...interface{}) {
	l.types = append(l.types, t)
}
func (l *recordingLogger) Infof(TypeEnum, string, ...interface{})  {}
func (l *recordingLogger) Fatalf(TypeEnum, string, ...interface{}) {}
func (l *recordingLogger) Close()                                  {}

func TestAccessLogMiddleware_RoutesByMethod(t *testing.T) {
	logger := &recordingLogger{}
	handler := AccessLogMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/points", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions", nil))

	assert.Equal(t, []TypeEnum{TypePost, TypeGet}, logger.types)
}
