package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	// OrderStatusAwaitingPayment 訂單已建立 庫存已預留 尚未收到付款確認
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	// OrderStatusPending 已付款 待處理
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusProcessing 處理中
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped 已出貨
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered 已送達 終態
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled 已取消 終態 取消時需歸還庫存
	OrderStatusCancelled OrderStatus = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// 訂單狀態機
// awaiting_payment -> pending -> processing -> shipped -> delivered
// cancelled 可由 awaiting_payment / pending / processing 進入
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusAwaitingPayment: {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPending:         {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:         {OrderStatusDelivered},
	OrderStatusDelivered:       {},
	OrderStatusCancelled:       {},
}

func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusTransitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	targets, ok := orderStatusTransitions[s]
	return ok && len(targets) == 0
}

func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, t := range orderStatusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// ValidateTransition 檢查狀態轉移是否合法 不合法回傳 ErrInvalidTransition
func ValidateTransition(from, to OrderStatus) error {
	if !from.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, from)
	}
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// 訂單階段 OrderItems 不會變動 只有 Status 會變動
type Order struct {
	OrderID        string          `gorm:"primaryKey;type:varchar(255)" json:"order_id"`
	OrderNumber    string          `gorm:"not null;type:varchar(50);uniqueIndex" json:"order_number"`
	UserID         int             `gorm:"not null;index;uniqueIndex:idx_orders_user_idem_key" json:"user_id"`
	IdempotencyKey string          `gorm:"not null;type:varchar(255);uniqueIndex:idx_orders_user_idem_key" json:"-"`
	OrderItems     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"`
	Amount         decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"amount"`
	Status         OrderStatus     `gorm:"not null;type:varchar(20);default:'awaiting_payment'" json:"status"`
	OrderDate      time.Time       `gorm:"not null" json:"order_date"`
	BaseModel
}

// OrderItem 下單當下商品資訊的凍結快照
// 商品之後改價或改名不影響歷史訂單
type OrderItem struct {
	OrderID     string          `gorm:"primaryKey;type:varchar(255)" json:"order_id"`
	ProductID   string          `gorm:"primaryKey;type:varchar(255)" json:"product_id"`
	ProductName string          `gorm:"not null;type:varchar(100)" json:"product_name"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Size        string          `gorm:"type:varchar(20)" json:"size"`
	Image       string          `gorm:"type:varchar(255)" json:"image"`
	BaseModel
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalAmount 計算訂單項目總金額
func TotalAmount(items ...OrderItem) decimal.Decimal {
	amount := decimal.NewFromInt(0)
	for _, item := range items {
		amount = amount.Add(item.Subtotal())
	}
	return amount
}
