package usecase

import (
	"errors"
	"time"

	"github.com/evgo/dispatch/internal/pkg/circuitbreaker"
	"github.com/evgo/dispatch/internal/pkg/logger"
	"github.com/evgo/dispatch/internal/pkg/metrics"
	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/evgo/dispatch/internal/pkg/retry"
	pkgws "github.com/evgo/dispatch/internal/pkg/websocket"
	"github.com/evgo/dispatch/services/dispatch"
)

const defaultFanoutConcurrency = 32

// Connections is the part of the connection registry the dispatch flow uses
type Connections interface {
	ClaimRole(id string, role models.Role, identity string) error
	Get(id string) (*pkgws.Connection, bool)
	ListByRole(role models.Role) []*pkgws.Connection
	Riders(identity string) []*pkgws.Connection
	Send(conn *pkgws.Connection, frame interface{}) error
}

// DispatchUC implements the dispatch use case
type DispatchUC struct {
	cfg      models.DispatchConfig
	repo     dispatch.DispatchRepo
	cache    dispatch.OpenRequestCache
	gw       dispatch.DispatchGW
	identity dispatch.IdentityVerifier
	conns    Connections
	breaker  *circuitbreaker.CircuitBreaker
	retrier  *retry.Retrier
	metrics  *metrics.DispatchMetrics
	logger   *logger.ZapLogger
	now      func() time.Time
}

// NewDispatchUC creates a new dispatch use case. cache may be nil, which
// disables open-request replay; m may be nil.
func NewDispatchUC(
	cfg *models.Config,
	repo dispatch.DispatchRepo,
	cache dispatch.OpenRequestCache,
	gw dispatch.DispatchGW,
	identity dispatch.IdentityVerifier,
	conns Connections,
	m *metrics.DispatchMetrics,
	l *logger.ZapLogger,
) *DispatchUC {
	if l == nil {
		l = logger.NewNopLogger()
	}
	dcfg := cfg.Dispatch
	if dcfg.FanoutConcurrency <= 0 {
		dcfg.FanoutConcurrency = defaultFanoutConcurrency
	}
	if !dcfg.ReplayEnabled {
		cache = nil
	}

	isStoreFailure := func(err error) bool {
		return errors.Is(err, dispatch.ErrStoreUnavailable)
	}

	breakerCfg := circuitbreaker.DefaultConfig("request-store")
	if dcfg.BreakerThreshold > 0 {
		breakerCfg.FailureThreshold = dcfg.BreakerThreshold
	}
	if dcfg.BreakerCooldown > 0 {
		breakerCfg.Timeout = dcfg.BreakerCooldown
	}
	breakerCfg.IsFailure = isStoreFailure
	breakerCfg.OnStateChange = func(_ string, _, to circuitbreaker.State) {
		m.SetBreakerState(int(to))
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = dcfg.NotifyRetries
	retryCfg.BaseDelay = 50 * time.Millisecond
	retryCfg.MaxDelay = time.Second
	retryCfg.RetryableFunc = isStoreFailure

	return &DispatchUC{
		cfg:      dcfg,
		repo:     repo,
		cache:    cache,
		gw:       gw,
		identity: identity,
		conns:    conns,
		breaker:  circuitbreaker.New(breakerCfg, l),
		retrier:  retry.New(retryCfg, l),
		metrics:  m,
		logger:   l,
		now:      time.Now,
	}
}
