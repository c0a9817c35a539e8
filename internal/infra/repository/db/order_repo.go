package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 訂單不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder 冪等鍵或訂單編號重複
	ErrDuplicateOrder = errors.New("duplicate order")
)

// IOrderRepository 訂單持久化介面
// 訂單建立後除 status 外不可變
type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, orderID string) (*model.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, userID int, key string) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, from, to model.OrderStatus) (bool, error)
	GetAwaitingPaymentBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error)
}

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create - 創建訂單 連同訂單項目一起寫入
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	err := s.db.WithContext(ctx).Create(order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: idempotency key %s", ErrDuplicateOrder, order.IdempotencyKey)
		}
		return err
	}
	return nil
}

// Read - 根據ID查詢訂單
func (s *OrderRepo) GetOrderByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
		return nil, err
	}
	return &order, nil
}

// Read - 根據冪等鍵查詢訂單 不存在時回傳 (nil, nil)
// 冪等鍵以用戶為範圍 不同用戶撞到同一把key互不可見
func (s *OrderRepo) GetOrderByIdempotencyKey(ctx context.Context, userID int, key string) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").First(&order, "user_id = ? AND idempotency_key = ?", userID, key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Read - 根據用戶ID查詢訂單
func (s *OrderRepo) GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

// Read - 查詢所有訂單
func (s *OrderRepo) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Order("order_date DESC").
		Find(&orders).Error
	return orders, err
}

// UpdateOrderStatus 條件式更新訂單狀態
// WHERE 帶上 from 狀態 讓同一筆訂單的併發轉移只會有一個成功
// 回傳是否真的有更新到 讓呼叫端決定補償動作只做一次
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, orderID string, from, to model.OrderStatus) (bool, error) {
	result := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Read - 查詢逾期未付款訂單 供背景清掃取消用
func (s *OrderRepo) GetAwaitingPaymentBefore(ctx context.Context, cutoff time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).Preload("OrderItems").
		Where("status = ? AND order_date < ?", model.OrderStatusAwaitingPayment, cutoff).
		Find(&orders).Error
	return orders, err
}

var _ IOrderRepository = (*OrderRepo)(nil)
