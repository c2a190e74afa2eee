package gateway

import (
	"context"
	"fmt"

	"github.com/evgo/dispatch/internal/pkg/constants"
	"github.com/evgo/dispatch/internal/pkg/logger"
	"github.com/evgo/dispatch/internal/pkg/models"
	natspkg "github.com/evgo/dispatch/internal/pkg/nats"
	nsqpkg "github.com/evgo/dispatch/internal/pkg/nsq"
	"github.com/evgo/dispatch/services/dispatch"
)

// Publisher is the broker client events go through. Both the NATS client and
// the NSQ producer encode the message as JSON.
type Publisher interface {
	Publish(topic string, message interface{}) error
}

// BrokerGateway publishes dispatch events to one broker
type BrokerGateway struct {
	publisher     Publisher
	notifiedTopic string
	updatedTopic  string
}

// NewBrokerGateway creates a gateway publishing to the given topics
func NewBrokerGateway(publisher Publisher, notifiedTopic, updatedTopic string) *BrokerGateway {
	return &BrokerGateway{
		publisher:     publisher,
		notifiedTopic: notifiedTopic,
		updatedTopic:  updatedTopic,
	}
}

// NewNATSGateway publishes on the dispatch NATS subjects
func NewNATSGateway(client *natspkg.Client) dispatch.DispatchGW {
	return NewBrokerGateway(client, constants.SubjectDispatchNotified, constants.SubjectDispatchUpdated)
}

// NewNSQGateway publishes on the dispatch NSQ topics
func NewNSQGateway(producer *nsqpkg.Producer) dispatch.DispatchGW {
	return NewBrokerGateway(producer, constants.TopicDispatchNotified, constants.TopicDispatchUpdated)
}

// PublishNotified announces a request that was fanned out to drivers
func (g *BrokerGateway) PublishNotified(ctx context.Context, event models.DispatchNotifiedEvent) error {
	logger.Debug("Publishing dispatch notified event",
		logger.String("request_id", event.RequestID),
		logger.Int("drivers", len(event.DriverIDs)))
	if err := g.publisher.Publish(g.notifiedTopic, event); err != nil {
		return fmt.Errorf("failed to publish notified event: %w", err)
	}
	return nil
}

// PublishUpdated announces an applied status change
func (g *BrokerGateway) PublishUpdated(ctx context.Context, event models.DispatchUpdatedEvent) error {
	logger.Debug("Publishing dispatch updated event",
		logger.String("request_id", event.RequestID),
		logger.String("status", string(event.Status)))
	if err := g.publisher.Publish(g.updatedTopic, event); err != nil {
		return fmt.Errorf("failed to publish updated event: %w", err)
	}
	return nil
}

// NoopGateway drops every event, used when no broker is configured
type NoopGateway struct{}

func (NoopGateway) PublishNotified(context.Context, models.DispatchNotifiedEvent) error { return nil }
func (NoopGateway) PublishUpdated(context.Context, models.DispatchUpdatedEvent) error   { return nil }
