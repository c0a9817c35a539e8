package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
)

var (
	// ErrInvalidAmount 金額必須為正整數(最小貨幣單位)
	ErrInvalidAmount = errors.New("invalid payment amount")
	// ErrGatewayUnavailable 金流服務無法使用 呼叫端可自行重試
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrPaymentRejected 金流服務拒絕本次請求
	ErrPaymentRejected = errors.New("payment request rejected")
)

const defaultStripeBaseURL = "https://api.stripe.com"

// PaymentIntent 外部金流發出的授權意圖 不落地
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// IPaymentGateway 金流授權介面
// orderID 會放進intent metadata 讓webhook回來時對得上訂單
type IPaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string, orderID string) (*PaymentIntent, error)
}

// StripeClient 包一層 circuit breaker 的 Stripe client
// 不在內部重試 重試是呼叫端的事
type StripeClient struct {
	client  *resty.Client
	breaker *gobreaker.CircuitBreaker
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type StripeOption func(*StripeClient)

// WithBaseURL 替換Stripe API位址 測試時指向 httptest server
func WithBaseURL(baseURL string) StripeOption {
	return func(s *StripeClient) {
		s.client.SetBaseURL(baseURL)
	}
}

// WithTimeout 替換預設的請求逾時
func WithTimeout(timeout time.Duration) StripeOption {
	return func(s *StripeClient) {
		s.client.SetTimeout(timeout)
	}
}

func NewStripeClient(secretKey string, options ...StripeOption) *StripeClient {
	client := resty.New().
		SetBaseURL(defaultStripeBaseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(0).
		SetAuthToken(secretKey)

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "stripe",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.WithLabelValues(name).Set(state)
		},
	})

	s := &StripeClient{client: client, breaker: breaker}
	for _, option := range options {
		option(s)
	}
	return s
}

// CreatePaymentIntent 向Stripe請求一筆授權
// amount 為最小貨幣單位的正整數 非正數直接拒絕 不發出請求
/*
	錯誤:
		- ErrInvalidAmount: 金額不合法
		- ErrGatewayUnavailable: 傳輸錯誤 5xx 或斷路器打開
		- ErrPaymentRejected: Stripe 拒絕請求 (4xx)
*/
func (s *StripeClient) CreatePaymentIntent(ctx context.Context, amount int64, currency string, orderID string) (*PaymentIntent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}
	if currency == "" {
		currency = "usd"
	}

	formData := map[string]string{
		"amount":   strconv.FormatInt(amount, 10),
		"currency": currency,
	}
	if orderID != "" {
		formData["metadata[order_id]"] = orderID
	}

	result, err := s.breaker.Execute(func() (interface{}, error) {
		var intent PaymentIntent
		var stripeErr stripeErrorResponse

		resp, err := s.client.R().
			SetContext(ctx).
			SetFormData(formData).
			SetResult(&intent).
			SetError(&stripeErr).
			Post("/v1/payment_intents")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}

		if resp.StatusCode() >= 500 {
			return nil, fmt.Errorf("%w: stripe returned %d", ErrGatewayUnavailable, resp.StatusCode())
		}
		if resp.IsError() {
			return nil, fmt.Errorf("%w: %s", ErrPaymentRejected, stripeErr.Error.Message)
		}

		return &intent, nil
	})
	if err != nil {
		metrics.PaymentIntentsTotal.WithLabelValues("failed").Inc()
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit breaker open", ErrGatewayUnavailable)
		}
		return nil, err
	}

	metrics.PaymentIntentsTotal.WithLabelValues("succeeded").Inc()
	return result.(*PaymentIntent), nil
}

var _ IPaymentGateway = (*StripeClient)(nil)
