package service

import (
	"context"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/rs/zerolog/log"
)

// PaymentSweeper 背景清掃逾期未付款的訂單
// awaiting_payment 超過期限未收到付款確認就取消並歸還庫存
type PaymentSweeper struct {
	orderRepo    db.IOrderRepository
	orderService IOrderService
	expiry       time.Duration
	interval     time.Duration
}

func NewPaymentSweeper(orderRepo db.IOrderRepository, orderService IOrderService, expiry, interval time.Duration) *PaymentSweeper {
	return &PaymentSweeper{
		orderRepo:    orderRepo,
		orderService: orderService,
		expiry:       expiry,
		interval:     interval,
	}
}

// Start 啟動清掃迴圈 ctx取消時結束
func (s *PaymentSweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Sweep(ctx); err != nil {
					log.Error().Err(err).Msg("payment sweep failed")
				}
			}
		}
	}()
}

// Sweep 執行一輪清掃
// 單筆取消失敗不中斷整輪 已被併發改走狀態的訂單取消會失敗 屬預期情況
func (s *PaymentSweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().Add(-s.expiry)
	orders, err := s.orderRepo.GetAwaitingPaymentBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, order := range orders {
		if _, err := s.orderService.CancelOrder(ctx, order.OrderID, "payment not confirmed in time"); err != nil {
			log.Warn().Err(err).Str("order_id", order.OrderID).Msg("failed to cancel expired order")
		}
	}
	return nil
}
