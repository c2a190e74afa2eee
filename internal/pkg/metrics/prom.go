package metrics

import (
	"net/http"
	"time"

	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes
const (
	OutcomeNotified    = "notified"
	OutcomeStoreFailed = "store_failed"
)

// Send outcomes
const (
	SendDelivered = "delivered"
	SendSkipped   = "skipped"
	SendFailed    = "failed"
)

// DispatchMetrics records dispatch activity in Prometheus metrics. A nil
// *DispatchMetrics records nothing.
type DispatchMetrics struct {
	requests *prometheus.CounterVec
	sends    *prometheus.CounterVec
	fanout   prometheus.Histogram
	breaker  prometheus.Gauge
}

// NewDispatchMetrics registers dispatch metrics on reg. A nil registerer
// defaults to the global Prometheus registerer.
func NewDispatchMetrics(reg prometheus.Registerer) (*DispatchMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_requests_total",
		Help: "Pickup requests handled, by outcome",
	}, []string{"outcome"})
	sends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_sends_total",
		Help: "Outbound frames per target connection, by role and outcome",
	}, []string{"role", "outcome"})
	fanout := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dispatch_fanout_duration_seconds",
		Help:    "Time to fan a request out to every driver in the snapshot",
		Buckets: prometheus.DefBuckets,
	})
	breaker := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dispatch_store_breaker_state",
		Help: "Request store circuit breaker state (0 closed, 1 open, 2 half-open)",
	})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if sends, err = register(reg, sends); err != nil {
		return nil, err
	}
	if fanout, err = register(reg, fanout); err != nil {
		return nil, err
	}
	if breaker, err = register(reg, breaker); err != nil {
		return nil, err
	}

	return &DispatchMetrics{requests: requests, sends: sends, fanout: fanout, breaker: breaker}, nil
}

// register returns the already registered collector when c was registered before
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRequest counts one handled request
func (m *DispatchMetrics) RecordRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// RecordSend counts one outbound frame to a connection of role
func (m *DispatchMetrics) RecordSend(role models.Role, outcome string) {
	if m == nil {
		return
	}
	m.sends.WithLabelValues(string(role), outcome).Inc()
}

// ObserveFanout records how long one fan-out took
func (m *DispatchMetrics) ObserveFanout(d time.Duration) {
	if m == nil {
		return
	}
	m.fanout.Observe(d.Seconds())
}

// SetBreakerState records the store breaker state
func (m *DispatchMetrics) SetBreakerState(state int) {
	if m == nil {
		return
	}
	m.breaker.Set(float64(state))
}

// RegisterConnectionGauges exposes the live connection count per role,
// read from count at scrape time.
func RegisterConnectionGauges(reg prometheus.Registerer, count func(models.Role) int) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, role := range []models.Role{models.RoleUnassigned, models.RoleRider, models.RoleDriver} {
		role := role
		gauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "dispatch_connections",
			Help:        "Live realtime connections by role",
			ConstLabels: prometheus.Labels{"role": string(role)},
		}, func() float64 {
			return float64(count(role))
		})
		if err := reg.Register(gauge); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
