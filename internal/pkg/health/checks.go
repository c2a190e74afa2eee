package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/evgo/dispatch/internal/pkg/logger"
)

// Dependency statuses
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

const checkTimeout = 3 * time.Second

// HealthChecker reports whether one dependency is usable
type HealthChecker interface {
	CheckHealth(ctx context.Context) error
}

// Pinger is satisfied by the database clients
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker adapts a Pinger. A nil Pinger is reported healthy so optional
// dependencies can be registered unconditionally.
type PingChecker struct {
	Pinger Pinger
}

// CheckHealth pings the dependency
func (p PingChecker) CheckHealth(ctx context.Context) error {
	if p.Pinger == nil {
		return nil
	}
	return p.Pinger.Ping(ctx)
}

// ConnectedChecker adapts a client exposing IsConnected, such as the NATS client
type ConnectedChecker struct {
	Client interface{ IsConnected() bool }
}

// CheckHealth reports an error while the client is disconnected
func (c ConnectedChecker) CheckHealth(context.Context) error {
	if c.Client == nil || c.Client.IsConnected() {
		return nil
	}
	return errors.New("not connected")
}

// HealthService manages health checks for multiple dependencies
type HealthService struct {
	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthService creates a new health service
func NewHealthService() *HealthService {
	return &HealthService{checkers: make(map[string]HealthChecker)}
}

// AddChecker registers a health checker for a dependency
func (h *HealthService) AddChecker(name string, checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string                    `json:"status"`
	Timestamp    time.Time                 `json:"timestamp"`
	Service      string                    `json:"service"`
	Version      string                    `json:"version,omitempty"`
	Dependencies map[string]DependencyInfo `json:"dependencies"`
}

// DependencyInfo represents health info for a dependency
type DependencyInfo struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// CheckAll runs every registered checker with a bounded timeout
func (h *HealthService) CheckAll(ctx context.Context) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	h.mu.RLock()
	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	h.mu.RUnlock()
	sort.Strings(names)

	response := HealthResponse{
		Status:       StatusHealthy,
		Timestamp:    time.Now(),
		Dependencies: make(map[string]DependencyInfo, len(names)),
	}

	for _, name := range names {
		h.mu.RLock()
		checker := h.checkers[name]
		h.mu.RUnlock()

		if err := checker.CheckHealth(ctx); err != nil {
			logger.Warn("Health check failed",
				logger.String("dependency", name),
				logger.Err(err))
			response.Dependencies[name] = DependencyInfo{Status: StatusUnhealthy, Error: err.Error()}
			response.Status = StatusUnhealthy
			continue
		}
		response.Dependencies[name] = DependencyInfo{Status: StatusHealthy}
	}

	return response
}
