package dispatch

import (
	"context"

	"github.com/evgo/dispatch/internal/pkg/models"
)

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/evgo/dispatch/services/dispatch DispatchGW,IdentityVerifier

// DispatchGW publishes dispatch events to the event broker
type DispatchGW interface {
	PublishNotified(ctx context.Context, event models.DispatchNotifiedEvent) error
	PublishUpdated(ctx context.Context, event models.DispatchUpdatedEvent) error
}

// IdentityVerifier turns a role frame credential into an identity
type IdentityVerifier interface {
	Verify(ctx context.Context, credential models.Credential) (*models.Identity, error)
}
