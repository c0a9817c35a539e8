package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{
		orderService: orderService,
	}
}

// PlaceOrder - 從購物車結帳成訂單
// 冪等性以 Idempotency-Key header 控制 重送同一把key回傳同一筆訂單
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	idempotencyKey := r.Header.Get(constants.IdempotencyKeyHeader)

	order, err := h.orderService.PlaceOrder(r.Context(), payload.UserID, idempotencyKey)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			api.ErrorJSON(w, http.StatusBadRequest, err, "cart is empty")
		case errors.Is(err, db.ErrProductNotFound):
			api.ErrorJSON(w, http.StatusNotFound, err, "product no longer exists")
		case errors.Is(err, db.ErrProductStockNotEnough):
			api.ErrorJSON(w, http.StatusBadRequest, err, "insufficient stock")
		default:
			api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to place order")
		}
		return
	}

	api.CreatedJSON(w, dto.ConvertOrderToDTO(order))
}

// GetOrders - 取得自己的訂單
func (h *OrderHandler) GetOrders(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())

	orders, err := h.orderService.GetOrdersByUserID(r.Context(), payload.UserID)
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to list orders")
		return
	}

	api.SuccessJSON(w, dto.ConvertOrdersToDTO(orders), nil)
}

// GetAllOrders - 取得全部訂單 admin限定
func (h *OrderHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.GetAllOrders(r.Context())
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to list orders")
		return
	}

	api.SuccessJSON(w, dto.ConvertOrdersToDTO(orders), nil)
}

// GetOrder - 取得單一訂單 只能看自己的 admin不受限
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")

	order, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, err, "order not found")
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to get order")
		return
	}

	if order.UserID != payload.UserID && payload.Role != model.RoleAdmin {
		api.ErrorJSON(w, http.StatusForbidden, nil, "not your order")
		return
	}

	api.SuccessJSON(w, dto.ConvertOrderToDTO(order), nil)
}

// UpdateOrderStatus - 更新訂單狀態 admin限定
// 狀態機之外的轉移一律拒絕
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	var updateDTO dto.UpdateOrderStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&updateDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}

	status := model.OrderStatus(updateDTO.Status)
	if !status.IsValid() {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "unknown order status")
		return
	}

	order, err := h.orderService.UpdateOrderStatus(r.Context(), orderID, status)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrOrderNotFound):
			api.ErrorJSON(w, http.StatusNotFound, err, "order not found")
		case errors.Is(err, model.ErrInvalidTransition):
			api.ErrorJSON(w, http.StatusBadRequest, err, "invalid status transition")
		default:
			api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to update order status")
		}
		return
	}

	api.SuccessJSON(w, dto.ConvertOrderToDTO(order), nil)
}

// CancelOrder - 取消訂單並歸還庫存 只能取消自己的 admin不受限
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())
	orderID := chi.URLParam(r, "orderID")

	existing, err := h.orderService.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, err, "order not found")
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to get order")
		return
	}
	if existing.UserID != payload.UserID && payload.Role != model.RoleAdmin {
		api.ErrorJSON(w, http.StatusForbidden, nil, "not your order")
		return
	}

	var cancelDTO dto.CancelOrderDTO
	// body可以不帶
	_ = json.NewDecoder(r.Body).Decode(&cancelDTO)

	order, err := h.orderService.CancelOrder(r.Context(), orderID, cancelDTO.Reason)
	if err != nil {
		if errors.Is(err, model.ErrInvalidTransition) {
			api.ErrorJSON(w, http.StatusBadRequest, err, "order can no longer be cancelled")
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to cancel order")
		return
	}

	api.SuccessJSON(w, dto.ConvertOrderToDTO(order), nil)
}
