package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/evgo/dispatch/internal/pkg/constants"
	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	topic   string
	message interface{}
}

type fakePublisher struct {
	calls []published
	err   error
}

func (f *fakePublisher) Publish(topic string, message interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, published{topic: topic, message: message})
	return nil
}

func TestBrokerGateway_PublishNotified(t *testing.T) {
	pub := &fakePublisher{}
	gw := NewBrokerGateway(pub, constants.TopicDispatchNotified, constants.TopicDispatchUpdated)
	event := models.DispatchNotifiedEvent{
		RequestID:      "req-1",
		RiderID:        "rider-1",
		PickupLocation: json.RawMessage(`{"lat":1,"lng":2}`),
		DriverIDs:      []string{"driver-1"},
		NotifiedAt:     time.Now(),
	}

	err := gw.PublishNotified(context.Background(), event)

	require.NoError(t, err)
	require.Len(t, pub.calls, 1)
	assert.Equal(t, constants.TopicDispatchNotified, pub.calls[0].topic)
	assert.Equal(t, event, pub.calls[0].message)
}

func TestBrokerGateway_PublishUpdated(t *testing.T) {
	pub := &fakePublisher{}
	gw := NewBrokerGateway(pub, constants.TopicDispatchNotified, constants.TopicDispatchUpdated)

	err := gw.PublishUpdated(context.Background(), models.DispatchUpdatedEvent{RequestID: "req-1", Status: models.DispatchStatusAccepted})

	require.NoError(t, err)
	require.Len(t, pub.calls, 1)
	assert.Equal(t, constants.TopicDispatchUpdated, pub.calls[0].topic)
}

func TestBrokerGateway_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nsqd unavailable")}
	gw := NewBrokerGateway(pub, constants.TopicDispatchNotified, constants.TopicDispatchUpdated)

	err := gw.PublishNotified(context.Background(), models.DispatchNotifiedEvent{RequestID: "req-1"})
	assert.ErrorContains(t, err, "nsqd unavailable")

	err = gw.PublishUpdated(context.Background(), models.DispatchUpdatedEvent{RequestID: "req-1"})
	assert.ErrorContains(t, err, "failed to publish updated event")
}

func TestNoopGateway(t *testing.T) {
	var gw NoopGateway
	assert.NoError(t, gw.PublishNotified(context.Background(), models.DispatchNotifiedEvent{}))
	assert.NoError(t, gw.PublishUpdated(context.Background(), models.DispatchUpdatedEvent{}))
}
