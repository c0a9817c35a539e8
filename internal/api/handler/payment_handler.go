package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api"
	"github.com/RoyceAzure/lab/storefront/internal/api/dto"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// stripe webhook的payment intent成功事件
const stripeEventPaymentSucceeded = "payment_intent.succeeded"

type PaymentHandler struct {
	orderService   service.IOrderService
	paymentGateway gateway.IPaymentGateway
}

func NewPaymentHandler(orderService service.IOrderService, paymentGateway gateway.IPaymentGateway) *PaymentHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	if paymentGateway == nil {
		panic("paymentGateway cannot be nil")
	}
	return &PaymentHandler{
		orderService:   orderService,
		paymentGateway: paymentGateway,
	}
}

// CreatePaymentIntent - 以訂單金額向金流請求授權 回傳client_secret給前端
func (h *PaymentHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext(r.Context())

	var createDTO dto.CreatePaymentIntentDTO
	if err := json.NewDecoder(r.Body).Decode(&createDTO); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid request body")
		return
	}
	if createDTO.OrderID == "" {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "order_id is required")
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), createDTO.OrderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, err, "order not found")
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to get order")
		return
	}
	if order.UserID != payload.UserID {
		api.ErrorJSON(w, http.StatusForbidden, nil, "not your order")
		return
	}
	if order.Status != model.OrderStatusAwaitingPayment {
		api.ErrorJSON(w, http.StatusConflict, nil, "order is not awaiting payment")
		return
	}

	// 金流端以最小貨幣單位計價
	amount := order.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	intent, err := h.paymentGateway.CreatePaymentIntent(r.Context(), amount, createDTO.Currency, order.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrInvalidAmount):
			api.ErrorJSON(w, http.StatusBadRequest, err, "invalid payment amount")
		case errors.Is(err, gateway.ErrPaymentRejected):
			api.ErrorJSON(w, http.StatusBadRequest, err, "payment rejected")
		case errors.Is(err, gateway.ErrGatewayUnavailable):
			api.ErrorJSON(w, http.StatusServiceUnavailable, err, "payment gateway unavailable")
		default:
			api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to create payment intent")
		}
		return
	}

	api.SuccessJSON(w, dto.PaymentIntentDTO{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     intent.Currency,
	}, nil)
}

// StripeWebhook - 接收金流回呼 確認付款
// 回2xx表示已收下 金流端才不會一直重送
func (h *PaymentHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	var event dto.StripeWebhookDTO
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, err, "invalid webhook payload")
		return
	}

	if event.Type != stripeEventPaymentSucceeded {
		// 不處理的事件直接收下
		api.SuccessJSON(w, nil, nil)
		return
	}

	orderID := event.Data.Object.Metadata["order_id"]
	if orderID == "" {
		api.ErrorJSON(w, http.StatusBadRequest, nil, "missing order_id metadata")
		return
	}

	if err := h.orderService.ConfirmPayment(r.Context(), orderID); err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, err, "order not found")
			return
		}
		log.Error().Err(err).Str("order_id", orderID).Msg("failed to confirm payment from webhook")
		api.ErrorJSON(w, http.StatusInternalServerError, err, "failed to confirm payment")
		return
	}

	api.SuccessJSON(w, nil, nil)
}
