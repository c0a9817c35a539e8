package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration tracks HTTP request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// OrdersTotal tracks order commit attempts by outcome
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of order commit attempts",
		},
		[]string{"outcome"},
	)

	// StockReservationRollbacks tracks compensating stock releases
	StockReservationRollbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stock_reservation_rollbacks_total",
			Help: "Total number of compensating stock releases after partial reservation failure",
		},
	)

	// CircuitBreakerState tracks circuit breaker state (0=closed, 1=open, 2=half-open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit_name"},
	)

	// PaymentIntentsTotal tracks payment intent requests by outcome
	PaymentIntentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_intents_total",
			Help: "Total number of payment intent requests",
		},
		[]string{"outcome"},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Middleware 記錄每個請求的次數與耗時
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(recorder.status)).Inc()
		RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
