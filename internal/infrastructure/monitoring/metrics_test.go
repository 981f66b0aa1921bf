package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return NewMetrics(prometheus.NewRegistry())
}

func TestRecordFlow(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordSent()
	m.RecordSent()
	m.RecordDropped()
	m.RecordReceived()
	m.RecordAllocFailure("producer")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecordsSent))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsDropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsReceived))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AllocFailures.WithLabelValues("producer")))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Sent)
	assert.Equal(t, int64(1), snap.Dropped)
	assert.Equal(t, int64(1), snap.Received)
}

func TestEscalationMetrics(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordTimeout(1)
	m.RecordTimeout(2)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TimeoutStreak))

	m.RecordAlert()
	m.RecordRecovery(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReceiveTimeouts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConsumerAlerts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Recoveries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecordsReset))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TimeoutStreak))
}

func TestRecordStatusIsOneHot(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordStatus("ok")
	m.RecordStatus("failure")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SupervisorStatus.WithLabelValues("failure")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.SupervisorStatus.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SupervisorCycles.WithLabelValues("ok")))
	assert.Equal(t, "failure", m.Snapshot().Status)
}

func TestWatchdogMetrics(t *testing.T) {
	m := newTestMetrics(t)

	m.RecordFeed("producer")
	m.RecordExpiry("consumer")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.WatchdogFeeds.WithLabelValues("producer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WatchdogExpiries.WithLabelValues("consumer")))
	assert.Equal(t, int64(1), m.Snapshot().Expiries)
}

func TestSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := newTestMetrics(t)

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/health", "200")))
}

func TestTimer(t *testing.T) {
	m := newTestMetrics(t)

	NewTimer(m, "producer").Stop("sent")

	assert.Equal(t, 1, testutil.CollectAndCount(m.CycleDuration))
}
