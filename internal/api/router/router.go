package router

import (
	"net/http"

	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	m "github.com/RoyceAzure/lab/storefront/internal/api/middleware"
	"github.com/RoyceAzure/lab/storefront/internal/metrics"
	"github.com/RoyceAzure/lab/storefront/internal/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

func SetupRouter(server *handler.Server, tokenMaker token.Maker, logger *zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// 全局中間件
	r.Use(m.RequestIdMiddleware)
	r.Use(m.AuthPayloadMiddleware(tokenMaker))
	r.Use(middleware.RealIP)
	r.Use(m.LoggerMiddleware(logger))
	r.Use(metrics.Middleware)
	r.Use(m.RecoverMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// API 路由
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", server.ProductHandler.GetProducts)
			r.Get("/{productID}", server.ProductHandler.GetProduct)
			r.With(m.AuthMiddleware, m.AdminMiddleware).Post("/", server.ProductHandler.CreateProduct)
			r.With(m.AuthMiddleware, m.AdminMiddleware).Put("/{productID}", server.ProductHandler.UpdateProduct)
			r.With(m.AuthMiddleware, m.AdminMiddleware).Delete("/{productID}", server.ProductHandler.DeleteProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Get("/", server.CartHandler.GetCart)
			r.Delete("/", server.CartHandler.Clear)
			r.Post("/items", server.CartHandler.AddItem)
			r.Put("/items/{productID}", server.CartHandler.UpdateQuantity)
			r.Delete("/items/{productID}", server.CartHandler.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Post("/", server.OrderHandler.PlaceOrder)
			r.Get("/", server.OrderHandler.GetOrders)
			r.With(m.AdminMiddleware).Get("/all", server.OrderHandler.GetAllOrders)
			r.Get("/{orderID}", server.OrderHandler.GetOrder)
			r.With(m.AdminMiddleware).Put("/{orderID}/status", server.OrderHandler.UpdateOrderStatus)
			r.Post("/{orderID}/cancel", server.OrderHandler.CancelOrder)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(m.AuthMiddleware)
			r.Get("/me", server.UserHandler.Me)
			r.Put("/me", server.UserHandler.UpdateProfile)
		})

		r.Route("/stripe", func(r chi.Router) {
			r.With(m.AuthMiddleware).Post("/payment-intent", server.PaymentHandler.CreatePaymentIntent)
			// webhook由金流端呼叫 不走token驗證
			r.Post("/webhook", server.PaymentHandler.StripeWebhook)
		})
	})

	return r
}
