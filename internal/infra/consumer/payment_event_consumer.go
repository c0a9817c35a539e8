package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/segmentio/kafka-go"
)

var (
	ErrConsumerClosed     = errors.New("consumer closed")
	ErrUnknownEventFormat = errors.New("unknown event format")
)

// PaymentConfirmer 收到付款成功事件後要做的事
// 由 order service 實作 awaiting_payment -> pending
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, orderID string) error
}

type IPaymentEventConsumer interface {
	Start(ctx context.Context) error
	Stop()
}

// PaymentEventConsumer 消費外部金流發布的付款結果事件
// topic: payment-events 分區: orderID
type PaymentEventConsumer struct {
	reader    *kafka.Reader
	confirmer PaymentConfirmer
	closeOnce sync.Once
	closeChan chan struct{}
}

func NewPaymentEventConsumer(brokers []string, topic, groupID string, confirmer PaymentConfirmer) *PaymentEventConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return &PaymentEventConsumer{
		reader:    reader,
		confirmer: confirmer,
		closeChan: make(chan struct{}),
	}
}

func (c *PaymentEventConsumer) checkIsClosed() bool {
	select {
	case <-c.closeChan:
		return true
	default:
		return false
	}
}

func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	if c.checkIsClosed() {
		return ErrConsumerClosed
	}

	go func() {
		for {
			select {
			case <-c.closeChan:
				return
			case <-ctx.Done():
				return
			default:
			}

			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				log.Println("error", err)
				continue
			}

			evt, err := c.transformData(msg)
			if err != nil {
				log.Println("error", err)
				continue
			}

			if err := c.confirmer.ConfirmPayment(ctx, evt.OrderID); err != nil {
				log.Println("error", err)
			}
		}
	}()

	return nil
}

func (c *PaymentEventConsumer) transformData(msg kafka.Message) (*event.PaymentSucceededEvent, error) {
	var eventType event.EventType
	for _, header := range msg.Headers {
		if header.Key == "event_type" {
			eventType = event.EventType(header.Value)
			break
		}
	}

	if eventType != event.PaymentSucceededEventName {
		return nil, ErrUnknownEventFormat
	}

	var evt event.PaymentSucceededEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		return nil, err
	}
	if evt.OrderID == "" {
		return nil, ErrUnknownEventFormat
	}
	return &evt, nil
}

func (c *PaymentEventConsumer) Stop() {
	c.closeOnce.Do(func() {
		close(c.closeChan)
		if err := c.reader.Close(); err != nil {
			log.Println("error", err)
		}
	})
}

var _ IPaymentEventConsumer = (*PaymentEventConsumer)(nil)
