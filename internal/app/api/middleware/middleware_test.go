package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/pledge/pkg/response"
)

func newObservedEngine(withStack bool) (*gin.Engine, *observer.ObservedLogs) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core).Sugar()

	r := gin.New()
	r.Use(TraceMiddleware(), RecoveryMiddleware(log, withStack), RequestLoggerMiddleware(log), AccessLogMiddleware())
	r.NoRoute(NotFoundHandler())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(c *gin.Context) { panic("kaboom") })
	return r, logs
}

func TestTraceAndAccessLog(t *testing.T) {
	r, logs := newObservedEngine(false)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "trace-123")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "trace-123", w.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("http_access").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "trace-123", fields["trace_id"])
	require.Equal(t, "/ok", fields["path"])
	require.EqualValues(t, http.StatusNoContent, fields["status"])
}

func TestTraceGeneratesID(t *testing.T) {
	r, _ := newObservedEngine(false)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestNotFoundHandler(t *testing.T) {
	r, _ := newObservedEngine(false)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, "/api/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var body response.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Not found", body.Error)
	require.Equal(t, "Route PATCH /api/nope not found", body.Message)
}

func TestRecoveryMiddleware(t *testing.T) {
	for _, withStack := range []bool{false, true} {
		r, logs := newObservedEngine(withStack)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		require.Equal(t, http.StatusInternalServerError, w.Code)
		var body response.ErrorBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, "Request failed", body.Error)
		require.Equal(t, "kaboom", body.Message)
		require.Equal(t, withStack, body.Stack != "")
		require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	}
}
