package dispatch

import (
	"context"

	"github.com/evgo/dispatch/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_usecase.go -package=mocks github.com/evgo/dispatch/services/dispatch DispatchUC

// DispatchUC coordinates role claims, request dispatch and status changes
type DispatchUC interface {
	JoinAs(ctx context.Context, connectionID string, credential models.Credential) error
	HandleNewRequest(ctx context.Context, req models.NewDispatchRequest) (*models.DispatchOutcome, error)
	UpdateStatus(ctx context.Context, requestID string, status models.DispatchStatus) (*models.DispatchRequest, error)
	GetRequest(ctx context.Context, requestID string) (*models.DispatchRequest, error)
}
