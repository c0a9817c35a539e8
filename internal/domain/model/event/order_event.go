package event

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 訂單階段 OrderItems 不會變動 事件只描述狀態遷移
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     string            `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	UserID      int               `json:"user_id"`
	Items       []model.OrderItem `json:"items"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      model.OrderStatus `json:"status"`
}

func (e *OrderCreatedEvent) Type() EventType {
	return OrderCreatedEventName
}

type OrderPaidEvent struct {
	BaseEvent
	OrderID    string            `json:"order_id"`
	FromStatus model.OrderStatus `json:"from_status"`
	ToStatus   model.OrderStatus `json:"to_status"`
}

func (e *OrderPaidEvent) Type() EventType {
	return OrderPaidEventName
}

type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    string            `json:"order_id"`
	FromStatus model.OrderStatus `json:"from_status"`
	ToStatus   model.OrderStatus `json:"to_status"`
}

func (e *OrderStatusChangedEvent) Type() EventType {
	return OrderStatusChangedEventName
}

type OrderCancelledEvent struct {
	BaseEvent
	OrderID    string            `json:"order_id"`
	FromStatus model.OrderStatus `json:"from_status"`
	Reason     string            `json:"reason"`
}

func (e *OrderCancelledEvent) Type() EventType {
	return OrderCancelledEventName
}

// PaymentSucceededEvent 外部金流確認付款成功 由 payment consumer 消費
type PaymentSucceededEvent struct {
	BaseEvent
	OrderID         string `json:"order_id"`
	PaymentIntentID string `json:"payment_intent_id"`
}

func (e *PaymentSucceededEvent) Type() EventType {
	return PaymentSucceededEventName
}

func newBaseEvent(aggregateID string, eventType EventType) BaseEvent {
	return BaseEvent{
		EventID:     uuid.New().String(),
		AggregateID: aggregateID,
		CreatedAt:   time.Now(),
		EventType:   eventType,
	}
}

func NewOrderCreatedEvent(order *model.Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseEvent:   newBaseEvent(order.OrderID, OrderCreatedEventName),
		OrderID:     order.OrderID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Items:       order.OrderItems,
		Amount:      order.Amount,
		Status:      order.Status,
	}
}

func NewOrderPaidEvent(orderID string, from, to model.OrderStatus) *OrderPaidEvent {
	return &OrderPaidEvent{
		BaseEvent:  newBaseEvent(orderID, OrderPaidEventName),
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
	}
}

func NewOrderStatusChangedEvent(orderID string, from, to model.OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseEvent:  newBaseEvent(orderID, OrderStatusChangedEventName),
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
	}
}

func NewOrderCancelledEvent(orderID string, from model.OrderStatus, reason string) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseEvent:  newBaseEvent(orderID, OrderCancelledEventName),
		OrderID:    orderID,
		FromStatus: from,
		Reason:     reason,
	}
}
