package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewDispatchMetrics(reg)
	require.NoError(t, err)

	m.RecordRequest(OutcomeNotified)
	m.RecordRequest(OutcomeNotified)
	m.RecordRequest(OutcomeStoreFailed)
	m.RecordSend(models.RoleDriver, SendDelivered)
	m.RecordSend(models.RoleDriver, SendFailed)
	m.ObserveFanout(20 * time.Millisecond)
	m.SetBreakerState(1)

	expected := `
# HELP dispatch_requests_total Pickup requests handled, by outcome
# TYPE dispatch_requests_total counter
dispatch_requests_total{outcome="notified"} 2
dispatch_requests_total{outcome="store_failed"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(m.requests, strings.NewReader(expected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sends.WithLabelValues("driver", SendFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fanout))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.breaker))
}

func TestNewDispatchMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewDispatchMetrics(reg)
	require.NoError(t, err)
	second, err := NewDispatchMetrics(reg)
	require.NoError(t, err)

	first.RecordRequest(OutcomeNotified)

	assert.Equal(t, 1.0, testutil.ToFloat64(second.requests.WithLabelValues(OutcomeNotified)))
}

func TestDispatchMetrics_NilIsNoop(t *testing.T) {
	var m *DispatchMetrics

	assert.NotPanics(t, func() {
		m.RecordRequest(OutcomeNotified)
		m.RecordSend(models.RoleRider, SendSkipped)
		m.ObserveFanout(time.Second)
		m.SetBreakerState(0)
	})
}

func TestRegisterConnectionGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	counts := map[models.Role]int{models.RoleDriver: 3, models.RoleRider: 1}
	require.NoError(t, RegisterConnectionGauges(reg, func(r models.Role) int { return counts[r] }))
	require.NoError(t, RegisterConnectionGauges(reg, func(r models.Role) int { return counts[r] }))

	expected := `
# HELP dispatch_connections Live realtime connections by role
# TYPE dispatch_connections gauge
dispatch_connections{role="driver"} 3
dispatch_connections{role="rider"} 1
dispatch_connections{role="unassigned"} 0
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "dispatch_connections"))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `dispatch_connections{role="driver"} 3`)
}
