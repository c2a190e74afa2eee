package nsq

import (
	"errors"
	"testing"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
)

func TestNewProducer_Unreachable(t *testing.T) {
	producer, err := NewProducer("127.0.0.1:1")

	assert.Error(t, err)
	assert.Nil(t, producer)
	assert.Contains(t, err.Error(), "failed to ping NSQ daemon")
}

func TestNewConsumer_InvalidTopic(t *testing.T) {
	consumer, err := NewConsumer("not a valid topic!", "dispatch", "127.0.0.1:1", func([]byte) error { return nil })

	assert.Error(t, err)
	assert.Nil(t, consumer)
	assert.Contains(t, err.Error(), "failed to create NSQ consumer")
}

func TestMessageHandler(t *testing.T) {
	var got []byte
	h := messageHandler("dispatch_request_status", func(body []byte) error {
		got = body
		return nil
	})

	msg := nsq.NewMessage(nsq.MessageID{}, []byte(`{"requestId":"r1"}`))
	assert.NoError(t, h.HandleMessage(msg))
	assert.Equal(t, `{"requestId":"r1"}`, string(got))

	failing := messageHandler("dispatch_request_status", func([]byte) error { return errors.New("boom") })
	assert.Error(t, failing.HandleMessage(msg))
}
