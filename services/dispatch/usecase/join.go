package usecase

import (
	"context"
	"errors"

	"github.com/evgo/dispatch/internal/pkg/logger"
	"github.com/evgo/dispatch/internal/pkg/metrics"
	"github.com/evgo/dispatch/internal/pkg/models"
	pkgws "github.com/evgo/dispatch/internal/pkg/websocket"
)

// JoinAs verifies the credential and binds its role and identity to the
// connection. A joining driver is caught up on requests that are still open.
func (uc *DispatchUC) JoinAs(ctx context.Context, connectionID string, credential models.Credential) error {
	identity, err := uc.identity.Verify(ctx, credential)
	if err != nil {
		return err
	}
	if err := uc.conns.ClaimRole(connectionID, credential.Role, identity.UserID); err != nil {
		return err
	}

	uc.logger.Info("Connection joined",
		logger.String("connection_id", connectionID),
		logger.String("role", string(credential.Role)),
		logger.String("user_id", identity.UserID))

	if credential.Role == models.RoleDriver {
		if conn, ok := uc.conns.Get(connectionID); ok {
			uc.replayOpenRequests(ctx, conn)
		}
	}
	return nil
}

// replayOpenRequests sends requests notified within the replay window to a
// newly joined driver and adds the driver to their recipients.
func (uc *DispatchUC) replayOpenRequests(ctx context.Context, conn *pkgws.Connection) {
	if uc.cache == nil {
		return
	}

	open, err := uc.cache.ListSince(ctx, uc.now().Add(-uc.cfg.ReplayWindow))
	if err != nil {
		uc.logger.Warn("Failed to load open requests for replay",
			logger.String("connection_id", conn.ID()),
			logger.Err(err))
		return
	}

	for _, req := range open {
		if err := uc.conns.Send(conn, models.NewRequestFrameFrom(req)); err != nil {
			outcome := metrics.SendFailed
			if errors.Is(err, pkgws.ErrConnectionNotOpen) {
				outcome = metrics.SendSkipped
			}
			uc.metrics.RecordSend(models.RoleDriver, outcome)
			return
		}
		uc.metrics.RecordSend(models.RoleDriver, metrics.SendDelivered)

		recipient := models.NotifiedDriver{
			RequestID:    req.ID,
			ConnectionID: conn.ID(),
			DriverID:     conn.Identity(),
			NotifiedAt:   uc.now().UTC(),
		}
		if err := uc.repo.MarkNotified(ctx, req.ID, []models.NotifiedDriver{recipient}); err != nil {
			uc.logger.Warn("Failed to record replayed recipient",
				logger.String("request_id", req.ID),
				logger.String("connection_id", conn.ID()),
				logger.Err(err))
		}
	}

	if len(open) > 0 {
		uc.logger.Info("Replayed open requests",
			logger.String("connection_id", conn.ID()),
			logger.Int("count", len(open)))
	}
}
