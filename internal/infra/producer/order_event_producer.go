package producer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model/event"
	"github.com/segmentio/kafka-go"
)

// IOrderEventProducer 訂單事件發布介面
// 事件發布失敗不影響訂單主流程 由呼叫端決定是否只記log
type IOrderEventProducer interface {
	ProduceOrderCreated(ctx context.Context, order *model.Order) error
	ProduceOrderPaid(ctx context.Context, userID int, orderID string, from, to model.OrderStatus) error
	ProduceOrderStatusChanged(ctx context.Context, userID int, orderID string, from, to model.OrderStatus) error
	ProduceOrderCancelled(ctx context.Context, userID int, orderID string, from model.OrderStatus, reason string) error
	Close() error
}

// 需要根據userID做分區 同一用戶的訂單事件保持有序
// topic: 由producer創建時設置
type OrderEventProducer struct {
	writer *kafka.Writer
}

func NewOrderEventProducer(brokers []string, topic string) *OrderEventProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return &OrderEventProducer{writer: writer}
}

func (p *OrderEventProducer) ProduceOrderCreated(ctx context.Context, order *model.Order) error {
	return p.produce(ctx, order.UserID, event.NewOrderCreatedEvent(order))
}

func (p *OrderEventProducer) ProduceOrderPaid(ctx context.Context, userID int, orderID string, from, to model.OrderStatus) error {
	return p.produce(ctx, userID, event.NewOrderPaidEvent(orderID, from, to))
}

func (p *OrderEventProducer) ProduceOrderStatusChanged(ctx context.Context, userID int, orderID string, from, to model.OrderStatus) error {
	return p.produce(ctx, userID, event.NewOrderStatusChangedEvent(orderID, from, to))
}

func (p *OrderEventProducer) ProduceOrderCancelled(ctx context.Context, userID int, orderID string, from model.OrderStatus, reason string) error {
	return p.produce(ctx, userID, event.NewOrderCancelledEvent(orderID, from, reason))
}

func (p *OrderEventProducer) produce(ctx context.Context, userID int, evt event.Event) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", evt.Type(), err)
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", userID)),
		Value: value,
		Headers: []kafka.Header{
			{
				Key:   "event_type",
				Value: []byte(evt.Type()),
			},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to produce event %s: %w", evt.Type(), err)
	}
	return nil
}

func (p *OrderEventProducer) Close() error {
	return p.writer.Close()
}

var _ IOrderEventProducer = (*OrderEventProducer)(nil)
