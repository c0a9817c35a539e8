package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/api/handler"
	"github.com/RoyceAzure/lab/storefront/internal/api/router"
	"github.com/RoyceAzure/lab/storefront/internal/appcontext"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339

	app, err := appcontext.NewApplicationContext(config.GetConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init application context")
		return
	}

	// 初始化 handler
	productHandler := handler.NewProductHandler(app.ProductService)
	cartHandler := handler.NewCartHandler(app.CartService)
	orderHandler := handler.NewOrderHandler(app.OrderService)
	paymentHandler := handler.NewPaymentHandler(app.OrderService, app.PaymentGateway)
	userHandler := handler.NewUserHandler(app.UserService)

	server := handler.NewServer(productHandler, cartHandler, orderHandler, paymentHandler, userHandler)

	// 設置路由
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	r := router.SetupRouter(server, app.TokenMaker, &logger)

	// 啟動背景工作
	backgroundCtx, cancelBackground := context.WithCancel(context.Background())
	app.StartBackground(backgroundCtx)

	// 設定服務器參數
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", app.Cf.ServerPort),
		Handler: r,
	}

	// 設置訊號監聽
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	shutDownCompleted := make(chan struct{}, 1)
	// 監聽退出訊號
	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal")

		cancelBackground()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}

		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Application shutdown error")
		}

		shutDownCompleted <- struct{}{}
	}()

	// 啟動服務
	log.Info().Str("addr", srv.Addr).Msg("Server starting")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
	<-shutDownCompleted
	log.Info().Msg("closed completed")
}
