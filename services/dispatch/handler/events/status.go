package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/evgo/dispatch/internal/pkg/constants"
	"github.com/evgo/dispatch/internal/pkg/logger"
	"github.com/evgo/dispatch/internal/pkg/models"
	natspkg "github.com/evgo/dispatch/internal/pkg/nats"
	nsqpkg "github.com/evgo/dispatch/internal/pkg/nsq"
	"github.com/evgo/dispatch/services/dispatch"
	"github.com/nats-io/nats.go"
)

const (
	queueGroup    = "dispatch"
	handleTimeout = 10 * time.Second
)

// StatusHandler applies status updates received from the event broker
type StatusHandler struct {
	dispatchUC dispatch.DispatchUC
}

// NewStatusHandler creates a new status update consumer
func NewStatusHandler(dispatchUC dispatch.DispatchUC) *StatusHandler {
	return &StatusHandler{
		dispatchUC: dispatchUC,
	}
}

// SubscribeNATS consumes the status subject as part of the dispatch queue group
func (h *StatusHandler) SubscribeNATS(client *natspkg.Client) (*nats.Subscription, error) {
	return client.QueueSubscribe(constants.SubjectDispatchStatus, queueGroup, h.Handle)
}

// SubscribeNSQ consumes the status topic on the configured channel
func (h *StatusHandler) SubscribeNSQ(cfg models.NSQConfig) (*nsqpkg.Consumer, error) {
	return nsqpkg.NewConsumer(constants.TopicDispatchStatus, cfg.Channel, cfg.NSQDAddress, h.Handle)
}

// Handle applies one status update message. Malformed messages and rejected
// updates are dropped; only store failures are returned, so NSQ redelivers them.
func (h *StatusHandler) Handle(data []byte) error {
	var msg models.StatusUpdateRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Warn("Dropped malformed status update", logger.Err(err))
		return nil
	}
	if msg.RequestID == "" || msg.Status == "" {
		logger.Warn("Dropped incomplete status update",
			logger.String("request_id", msg.RequestID),
			logger.String("status", string(msg.Status)))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	_, err := h.dispatchUC.UpdateStatus(ctx, msg.RequestID, msg.Status)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dispatch.ErrRequestNotFound), errors.Is(err, dispatch.ErrInvalidTransition):
		logger.Warn("Rejected status update",
			logger.String("request_id", msg.RequestID),
			logger.String("status", string(msg.Status)),
			logger.Err(err))
		return nil
	default:
		return fmt.Errorf("apply status update for %s: %w", msg.RequestID, err)
	}
}
