package consumer

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsumer() *PaymentEventConsumer {
	return &PaymentEventConsumer{
		closeChan: make(chan struct{}),
	}
}

func TestTransformData(t *testing.T) {
	consumer := newTestConsumer()

	msg := kafka.Message{
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.PaymentSucceededEventName)},
		},
		Value: []byte(`{"order_id":"order-1","payment_intent_id":"pi_123"}`),
	}

	evt, err := consumer.transformData(msg)
	require.NoError(t, err)
	assert.Equal(t, "order-1", evt.OrderID)
	assert.Equal(t, "pi_123", evt.PaymentIntentID)
}

func TestTransformDataWrongEventType(t *testing.T) {
	consumer := newTestConsumer()

	msg := kafka.Message{
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.OrderCreatedEventName)},
		},
		Value: []byte(`{"order_id":"order-1"}`),
	}

	_, err := consumer.transformData(msg)
	assert.ErrorIs(t, err, ErrUnknownEventFormat)
}

func TestTransformDataMissingOrderID(t *testing.T) {
	consumer := newTestConsumer()

	msg := kafka.Message{
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.PaymentSucceededEventName)},
		},
		Value: []byte(`{"payment_intent_id":"pi_123"}`),
	}

	_, err := consumer.transformData(msg)
	assert.ErrorIs(t, err, ErrUnknownEventFormat)
}

func TestStartAfterStop(t *testing.T) {
	consumer := newTestConsumer()
	close(consumer.closeChan)

	err := consumer.Start(context.Background())
	assert.ErrorIs(t, err, ErrConsumerClosed)
}
