package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type IOrderService interface {
	PlaceOrder(ctx context.Context, userID int, idempotencyKey string) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error)
	GetAllOrders(ctx context.Context) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, to model.OrderStatus) (*model.Order, error)
	ConfirmPayment(ctx context.Context, orderID string) error
	CancelOrder(ctx context.Context, orderID, reason string) (*model.Order, error)
}

// OrderService 下單管線的唯一入口
// 驗證庫存 預留庫存 落地訂單 之後的狀態遷移也從這裡走
type OrderService struct {
	orderRepo   db.IOrderRepository
	productRepo db.IProductRepository
	cartService ICartService
	producer    producer.IOrderEventProducer
}

func NewOrderService(
	orderRepo db.IOrderRepository,
	productRepo db.IProductRepository,
	cartService ICartService,
	eventProducer producer.IOrderEventProducer,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartService: cartService,
		producer:    eventProducer,
	}
}

// generateOrderNumber 訂單編號由server端產生 避免client端以時間戳產生造成碰撞
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

// PlaceOrder 把購物車變成一筆訂單
// 流程:
//  1. 冪等檢查 同一用戶同一把key重送直接回first win的訂單 不動庫存 (key以用戶為範圍)
//  2. 購物車快照 (ErrEmptyCart)
//  3. 驗證階段 逐項檢查庫存 任一項不足就中止 此時還沒動到庫存
//  4. 預留階段 逐項原子扣減 中途失敗要回補本次已扣的每一項
//  5. 落地訂單 status=awaiting_payment 金額以快照價格計算後寫死
//
// 付款授權是client另外呼叫的 訂單成立時尚未付款
/*
	錯誤:
		- ErrEmptyCart: 購物車為空
		- db.ErrProductNotFound: 購物車內商品已不存在
		- db.ErrProductStockNotEnough: 庫存不足 訊息會帶第一個不足的商品
		- 其他: 基礎設施錯誤 呼叫端可退避重試
*/
func (o *OrderService) PlaceOrder(ctx context.Context, userID int, idempotencyKey string) (*model.Order, error) {
	if idempotencyKey == "" {
		// 沒帶key就當成不可重試的一次性請求
		idempotencyKey = uuid.New().String()
	} else {
		existing, err := o.orderRepo.GetOrderByIdempotencyKey(ctx, userID, idempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to check idempotency key: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}

	items, err := o.cartService.Snapshot(ctx, userID)
	if err != nil {
		metrics.OrdersTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	// 驗證階段 不動庫存 縮小部分失敗的窗口
	for _, item := range items {
		stock, err := o.productRepo.GetProductStock(ctx, item.ProductID)
		if err != nil {
			metrics.OrdersTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
		if stock < item.Quantity {
			metrics.OrdersTotal.WithLabelValues("rejected").Inc()
			return nil, fmt.Errorf("%w: product %s has %d in stock, requested %d",
				db.ErrProductStockNotEnough, item.ProductID, stock, item.Quantity)
		}
	}

	// 預留階段 與其他結帳請求的競爭由原子扣減裁決
	// 任何一項輸了都要把本次已扣的全部補回去
	reserved := make([]model.OrderItem, 0, len(items))
	for _, item := range items {
		if _, err := o.productRepo.ReserveStock(ctx, item.ProductID, uint(item.Quantity)); err != nil {
			o.rollbackReservations(ctx, reserved)
			metrics.OrdersTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
		reserved = append(reserved, item)
	}

	orderID := uuid.New().String()
	orderItems := make([]model.OrderItem, len(items))
	for i, item := range items {
		item.OrderID = orderID
		orderItems[i] = item
	}

	order := &model.Order{
		OrderID:        orderID,
		OrderNumber:    generateOrderNumber(),
		UserID:         userID,
		IdempotencyKey: idempotencyKey,
		OrderItems:     orderItems,
		Amount:         model.TotalAmount(orderItems...),
		Status:         model.OrderStatusAwaitingPayment,
		OrderDate:      time.Now(),
	}

	if err := o.orderRepo.CreateOrder(ctx, order); err != nil {
		o.rollbackReservations(ctx, reserved)
		if errors.Is(err, db.ErrDuplicateOrder) {
			// 同一把冪等鍵的併發請求 輸的一方回頭拿贏家的訂單
			existing, getErr := o.orderRepo.GetOrderByIdempotencyKey(ctx, userID, idempotencyKey)
			if getErr == nil && existing != nil {
				return existing, nil
			}
		}
		metrics.OrdersTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	// 訂單已成立 以下都是best effort 失敗只記log
	if err := o.cartService.Clear(ctx, userID); err != nil {
		log.Error().Err(err).Int("user_id", userID).Msg("failed to clear cart after order commit")
	}
	if o.producer != nil {
		if err := o.producer.ProduceOrderCreated(ctx, order); err != nil {
			log.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to produce order created event")
		}
	}

	metrics.OrdersTotal.WithLabelValues("created").Inc()
	return order, nil
}

// rollbackReservations 回補本次已預留的庫存
// 回補失敗沒有再補救的手段 只能記log讓人工對帳
func (o *OrderService) rollbackReservations(ctx context.Context, reserved []model.OrderItem) {
	for _, item := range reserved {
		if _, err := o.productRepo.ReleaseStock(ctx, item.ProductID, uint(item.Quantity)); err != nil {
			log.Error().Err(err).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("failed to rollback stock reservation")
		}
	}
	if len(reserved) > 0 {
		metrics.StockReservationRollbacks.Inc()
	}
}

func (o *OrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	return o.orderRepo.GetOrderByID(ctx, orderID)
}

func (o *OrderService) GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error) {
	return o.orderRepo.GetOrdersByUserID(ctx, userID)
}

func (o *OrderService) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return o.orderRepo.GetAllOrders(ctx)
}

// UpdateOrderStatus 套用狀態機的狀態遷移
// 轉移到 cancelled 時逐項歸還庫存 與下單時的預留對稱
// 條件式更新保證併發下補償動作只會做一次
/*
	錯誤:
		- db.ErrOrderNotFound: 訂單不存在
		- model.ErrInvalidTransition: 狀態機不允許的轉移
*/
func (o *OrderService) UpdateOrderStatus(ctx context.Context, orderID string, to model.OrderStatus) (*model.Order, error) {
	order, err := o.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := model.ValidateTransition(from, to); err != nil {
		return nil, err
	}

	updated, err := o.orderRepo.UpdateOrderStatus(ctx, orderID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !updated {
		// 狀態已被併發請求改走 視同非法轉移
		return nil, fmt.Errorf("%w: order %s status changed concurrently", model.ErrInvalidTransition, orderID)
	}

	if to == model.OrderStatusCancelled {
		o.restoreStock(ctx, order)
	}

	o.produceStatusEvent(ctx, order, from, to)

	order.Status = to
	return order, nil
}

// restoreStock 取消訂單時歸還每一項的庫存
func (o *OrderService) restoreStock(ctx context.Context, order *model.Order) {
	for _, item := range order.OrderItems {
		if _, err := o.productRepo.ReleaseStock(ctx, item.ProductID, uint(item.Quantity)); err != nil {
			log.Error().Err(err).
				Str("order_id", order.OrderID).
				Str("product_id", item.ProductID).
				Msg("failed to restore stock on cancellation")
		}
	}
}

func (o *OrderService) produceStatusEvent(ctx context.Context, order *model.Order, from, to model.OrderStatus) {
	if o.producer == nil {
		return
	}

	var err error
	switch {
	case to == model.OrderStatusCancelled:
		err = o.producer.ProduceOrderCancelled(ctx, order.UserID, order.OrderID, from, "")
	case from == model.OrderStatusAwaitingPayment && to == model.OrderStatusPending:
		err = o.producer.ProduceOrderPaid(ctx, order.UserID, order.OrderID, from, to)
	default:
		err = o.producer.ProduceOrderStatusChanged(ctx, order.UserID, order.OrderID, from, to)
	}
	if err != nil {
		log.Error().Err(err).Str("order_id", order.OrderID).Msg("failed to produce order status event")
	}
}

// ConfirmPayment 收到付款確認 awaiting_payment -> pending
// webhook會重送 已付款的訂單再次確認視為成功
func (o *OrderService) ConfirmPayment(ctx context.Context, orderID string) error {
	order, err := o.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status == model.OrderStatusPending {
		return nil
	}

	_, err = o.UpdateOrderStatus(ctx, orderID, model.OrderStatusPending)
	return err
}

// CancelOrder 取消訂單並歸還庫存
func (o *OrderService) CancelOrder(ctx context.Context, orderID, reason string) (*model.Order, error) {
	order, err := o.UpdateOrderStatus(ctx, orderID, model.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		log.Info().Str("order_id", orderID).Str("reason", reason).Msg("order cancelled")
	}
	return order, nil
}

var _ IOrderService = (*OrderService)(nil)
