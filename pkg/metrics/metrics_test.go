package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestNewBilling_ReusesExistingCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewBilling(reg)
	require.NoError(t, err)
	b, err := NewBilling(reg)
	require.NoError(t, err)

	a.IncCharge("minute")
	b.IncCharge("minute")
	require.Equal(t, 2.0, testutil.ToFloat64(a.Charges.WithLabelValues("minute")))

	a.IncFailure()
	require.Equal(t, 1.0, testutil.ToFloat64(b.Failures))

	a.ObserveTick(time.Now())
	require.Equal(t, 1, testutil.CollectAndCount(a.TickDuration))
}

func TestBilling_NilIsNoop(t *testing.T) {
	var b *Billing
	b.IncCharge("daily")
	b.IncFailure()
	b.ObserveTick(time.Now())
}

func TestPrometheus_CountsRequestsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(NewPrometheusOptions{Registerer: reg})
	require.NoError(t, err)

	r := gin.New()
	require.Nil(t, p.Use(r))
	r.DELETE("/api/subscriptions/:donorId", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/subscriptions/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	got := testutil.ToFloat64(p.reqCnt.WithLabelValues("200", http.MethodDelete, "/api/subscriptions/:donorId", ""))
	require.Equal(t, 2.0, got)
}

func TestPrometheus_DedicatedListener(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p, err := NewPrometheus(NewPrometheusOptions{Registerer: prometheus.NewRegistry()})
	require.NoError(t, err)
	p.SetListenAddress(":0")

	srv := p.Use(gin.New())
	require.NotNil(t, srv)
	require.Equal(t, ":0", srv.Addr)
}
