package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/token"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderService struct {
	orders        map[string]*model.Order
	confirmed     []string
	placed        *model.Order
	placeOrderErr error
}

func newFakeOrderService() *fakeOrderService {
	return &fakeOrderService{orders: make(map[string]*model.Order)}
}

func (f *fakeOrderService) PlaceOrder(ctx context.Context, userID int, idempotencyKey string) (*model.Order, error) {
	if f.placeOrderErr != nil {
		return nil, f.placeOrderErr
	}
	return f.placed, nil
}

func (f *fakeOrderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", db.ErrOrderNotFound, orderID)
	}
	return order, nil
}

func (f *fakeOrderService) GetOrdersByUserID(ctx context.Context, userID int) ([]model.Order, error) {
	return nil, nil
}

func (f *fakeOrderService) GetAllOrders(ctx context.Context) ([]model.Order, error) {
	return nil, nil
}

func (f *fakeOrderService) UpdateOrderStatus(ctx context.Context, orderID string, to model.OrderStatus) (*model.Order, error) {
	return nil, nil
}

func (f *fakeOrderService) ConfirmPayment(ctx context.Context, orderID string) error {
	if _, ok := f.orders[orderID]; !ok {
		return fmt.Errorf("%w: %s", db.ErrOrderNotFound, orderID)
	}
	f.confirmed = append(f.confirmed, orderID)
	return nil
}

func (f *fakeOrderService) CancelOrder(ctx context.Context, orderID, reason string) (*model.Order, error) {
	return nil, nil
}

type fakePaymentGateway struct {
	lastAmount  int64
	lastOrderID string
}

func (f *fakePaymentGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string, orderID string) (*gateway.PaymentIntent, error) {
	f.lastAmount = amount
	f.lastOrderID = orderID
	return &gateway.PaymentIntent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		Amount:       amount,
		Currency:     "usd",
	}, nil
}

func withPayload(r *http.Request, userID int) *http.Request {
	ctx := context.WithValue(r.Context(), constants.AuthorizationPayloadKey, &token.Payload{
		UserID: userID,
		Role:   model.RoleUser,
	})
	return r.WithContext(ctx)
}

func TestCreatePaymentIntentHandler(t *testing.T) {
	orderService := newFakeOrderService()
	orderService.orders["order-1"] = &model.Order{
		OrderID: "order-1",
		UserID:  1,
		Amount:  decimal.RequireFromString("45.50"),
		Status:  model.OrderStatusAwaitingPayment,
	}
	fakeGateway := &fakePaymentGateway{}
	h := NewPaymentHandler(orderService, fakeGateway)

	body := bytes.NewBufferString(`{"order_id":"order-1"}`)
	r := withPayload(httptest.NewRequest(http.MethodPost, "/api/v1/stripe/payment-intent", body), 1)
	w := httptest.NewRecorder()

	h.CreatePaymentIntent(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	// 金額轉成最小貨幣單位
	assert.Equal(t, int64(4550), fakeGateway.lastAmount)
	assert.Equal(t, "order-1", fakeGateway.lastOrderID)
	assert.Contains(t, w.Body.String(), "pi_test_secret")
}

func TestCreatePaymentIntentHandlerNotOwner(t *testing.T) {
	orderService := newFakeOrderService()
	orderService.orders["order-1"] = &model.Order{
		OrderID: "order-1",
		UserID:  1,
		Amount:  decimal.NewFromInt(10),
		Status:  model.OrderStatusAwaitingPayment,
	}
	h := NewPaymentHandler(orderService, &fakePaymentGateway{})

	body := bytes.NewBufferString(`{"order_id":"order-1"}`)
	r := withPayload(httptest.NewRequest(http.MethodPost, "/api/v1/stripe/payment-intent", body), 2)
	w := httptest.NewRecorder()

	h.CreatePaymentIntent(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatePaymentIntentHandlerNotAwaiting(t *testing.T) {
	orderService := newFakeOrderService()
	orderService.orders["order-1"] = &model.Order{
		OrderID: "order-1",
		UserID:  1,
		Amount:  decimal.NewFromInt(10),
		Status:  model.OrderStatusPending,
	}
	h := NewPaymentHandler(orderService, &fakePaymentGateway{})

	body := bytes.NewBufferString(`{"order_id":"order-1"}`)
	r := withPayload(httptest.NewRequest(http.MethodPost, "/api/v1/stripe/payment-intent", body), 1)
	w := httptest.NewRecorder()

	h.CreatePaymentIntent(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStripeWebhookConfirmsPayment(t *testing.T) {
	orderService := newFakeOrderService()
	orderService.orders["order-1"] = &model.Order{OrderID: "order-1", UserID: 1}
	h := NewPaymentHandler(orderService, &fakePaymentGateway{})

	body := bytes.NewBufferString(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_test", "metadata": {"order_id": "order-1"}}}
	}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/stripe/webhook", body)
	w := httptest.NewRecorder()

	h.StripeWebhook(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"order-1"}, orderService.confirmed)
}

func TestStripeWebhookIgnoresOtherEvents(t *testing.T) {
	orderService := newFakeOrderService()
	h := NewPaymentHandler(orderService, &fakePaymentGateway{})

	body := bytes.NewBufferString(`{
		"id": "evt_1",
		"type": "payment_intent.created",
		"data": {"object": {"id": "pi_test", "metadata": {"order_id": "order-1"}}}
	}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/stripe/webhook", body)
	w := httptest.NewRecorder()

	h.StripeWebhook(w, r)

	// 不處理的事件也回2xx 金流端才不會重送
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, orderService.confirmed)
}

func TestStripeWebhookMissingMetadata(t *testing.T) {
	h := NewPaymentHandler(newFakeOrderService(), &fakePaymentGateway{})

	body := bytes.NewBufferString(`{
		"id": "evt_1",
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_test", "metadata": {}}}
	}`)
	r := httptest.NewRequest(http.MethodPost, "/api/v1/stripe/webhook", body)
	w := httptest.NewRecorder()

	h.StripeWebhook(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
