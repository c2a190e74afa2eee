package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/evgo/dispatch/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks github.com/evgo/dispatch/services/dispatch DispatchRepo,OpenRequestCache

// DispatchRepo is the durable request store
type DispatchRepo interface {
	Create(ctx context.Context, riderID string, location, pickupLocation json.RawMessage) (*models.DispatchRequest, error)
	MarkNotified(ctx context.Context, requestID string, recipients []models.NotifiedDriver) error
	UpdateStatus(ctx context.Context, requestID string, status models.DispatchStatus) (*models.DispatchRequest, error)
	GetByID(ctx context.Context, requestID string) (*models.DispatchRequest, error)
}

// OpenRequestCache indexes requests that drivers may still pick up
type OpenRequestCache interface {
	Add(ctx context.Context, req *models.DispatchRequest) error
	Remove(ctx context.Context, requestID string) error
	ListSince(ctx context.Context, since time.Time) ([]*models.DispatchRequest, error)
}
