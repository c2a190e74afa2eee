package usecase

import (
	"context"
	"fmt"

	"github.com/evgo/dispatch/internal/pkg/logger"
	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/evgo/dispatch/services/dispatch"
)

// UpdateStatus applies an externally driven status change. Closed requests
// leave the open-request index.
func (uc *DispatchUC) UpdateStatus(ctx context.Context, requestID string, status models.DispatchStatus) (*models.DispatchRequest, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", dispatch.ErrInvalidTransition, status)
	}

	updated, err := uc.repo.UpdateStatus(ctx, requestID, status)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil && !updated.Status.IsOpen() {
		if err := uc.cache.Remove(ctx, requestID); err != nil {
			uc.logger.Warn("Failed to drop closed request from open index",
				logger.String("request_id", requestID),
				logger.Err(err))
		}
	}

	event := models.DispatchUpdatedEvent{
		RequestID: updated.ID,
		Status:    updated.Status,
		UpdatedAt: updated.UpdatedAt,
	}
	if err := uc.gw.PublishUpdated(ctx, event); err != nil {
		uc.logger.Warn("Failed to publish updated event",
			logger.String("request_id", requestID),
			logger.Err(err))
	}

	uc.logger.Info("Dispatch request status updated",
		logger.String("request_id", requestID),
		logger.String("status", string(updated.Status)))
	return updated, nil
}

// GetRequest returns a stored request with its recipients
func (uc *DispatchUC) GetRequest(ctx context.Context, requestID string) (*models.DispatchRequest, error) {
	return uc.repo.GetByID(ctx, requestID)
}
