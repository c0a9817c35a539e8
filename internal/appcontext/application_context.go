package appcontext

import (
	"context"
	"fmt"
	"log"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/consumer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/gateway"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/token"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type ApplicationContext struct {
	Cf              *config.Config
	DbConn          *gorm.DB
	DbDao           *db.DbDao
	RedisClient     *redis.Client
	TokenMaker      token.Maker
	OrderProducer   *producer.OrderEventProducer
	PaymentConsumer *consumer.PaymentEventConsumer
	PaymentGateway  gateway.IPaymentGateway
	ProductService  service.IProductService
	CartService     service.ICartService
	OrderService    service.IOrderService
	UserService     service.IUserService
	PaymentSweeper  *service.PaymentSweeper
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	err := app.Init()

	if err != nil {
		return nil, err
	}

	return &app, nil
}

func (app *ApplicationContext) Init() error {
	err := app.setUpdbConn()
	if err != nil {
		return err
	}
	err = app.setUpdbDao()
	if err != nil {
		return err
	}
	err = app.setUpRedis()
	if err != nil {
		return err
	}
	err = app.setTokenMaker()
	if err != nil {
		return err
	}
	app.setUpProducer()
	app.setUpGateway()
	app.setUpServices()
	app.setUpPaymentConsumer()
	app.setUpPaymentSweeper()

	return nil
}

func (app *ApplicationContext) setUpdbConn() error {
	log.Printf("Start setup database connection")
	conn, err := db.GetDbConn(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas)
	if err != nil {
		return err
	}
	app.DbConn = conn
	log.Printf("Finish setup database connection")
	return nil
}

func (app *ApplicationContext) setUpdbDao() error {
	log.Printf("Start setup database DAO")
	app.DbDao = db.NewDbDao(app.DbConn)
	if err := app.DbDao.InitMigrate(); err != nil {
		return err
	}
	log.Printf("Finish setup database DAO")
	return nil
}

func (app *ApplicationContext) setUpRedis() error {
	log.Printf("Start setup redis client")
	app.RedisClient = redis.NewClient(&redis.Options{
		Addr:     app.Cf.RedisAddr,
		Password: app.Cf.RedisPas,
	})
	if err := app.RedisClient.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("failed to connect redis: %w", err)
	}
	log.Printf("Finish setup redis client")
	return nil
}

func (app *ApplicationContext) setTokenMaker() error {
	log.Printf("Start setup token maker")
	tokenMaker, err := token.NewPasetoMaker(app.Cf.AuthTokenKey)
	if err != nil {
		return err
	}
	app.TokenMaker = tokenMaker
	log.Printf("Finish setup token maker")
	return nil
}

func (app *ApplicationContext) setUpProducer() {
	if len(app.Cf.KafkaBrokers) == 0 {
		log.Printf("No kafka brokers configured, order events disabled")
		return
	}
	log.Printf("Start setup order event producer")
	app.OrderProducer = producer.NewOrderEventProducer(app.Cf.KafkaBrokers, app.Cf.KafkaOrderTopic)
	log.Printf("Finish setup order event producer")
}

func (app *ApplicationContext) setUpGateway() {
	log.Printf("Start setup payment gateway")
	options := []gateway.StripeOption{}
	if app.Cf.StripeBaseURL != "" {
		options = append(options, gateway.WithBaseURL(app.Cf.StripeBaseURL))
	}
	app.PaymentGateway = gateway.NewStripeClient(app.Cf.StripeSecretKey, options...)
	log.Printf("Finish setup payment gateway")
}

func (app *ApplicationContext) setUpServices() {
	log.Printf("Start setup services")
	productRepo := db.NewProductRepo(app.DbDao)
	orderRepo := db.NewOrderRepo(app.DbDao)
	userRepo := db.NewUserRepo(app.DbDao)
	cartRepo := redis_repo.NewCartRepo(app.RedisClient)

	app.UserService = service.NewUserService(userRepo)
	app.ProductService = service.NewProductService(productRepo)
	app.CartService = service.NewCartService(cartRepo, productRepo)

	var orderProducer producer.IOrderEventProducer
	if app.OrderProducer != nil {
		orderProducer = app.OrderProducer
	}
	app.OrderService = service.NewOrderService(orderRepo, productRepo, app.CartService, orderProducer)
	log.Printf("Finish setup services")
}

func (app *ApplicationContext) setUpPaymentConsumer() {
	if len(app.Cf.KafkaBrokers) == 0 {
		log.Printf("No kafka brokers configured, payment consumer disabled")
		return
	}
	log.Printf("Start setup payment event consumer")
	app.PaymentConsumer = consumer.NewPaymentEventConsumer(
		app.Cf.KafkaBrokers,
		app.Cf.KafkaPaymentTopic,
		app.Cf.KafkaConsumerGroup,
		app.OrderService,
	)
	log.Printf("Finish setup payment event consumer")
}

func (app *ApplicationContext) setUpPaymentSweeper() {
	log.Printf("Start setup payment sweeper")
	orderRepo := db.NewOrderRepo(app.DbDao)
	app.PaymentSweeper = service.NewPaymentSweeper(
		orderRepo,
		app.OrderService,
		app.Cf.PaymentExpiry,
		app.Cf.PaymentSweepInterval,
	)
	log.Printf("Finish setup payment sweeper")
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	log.Printf("Start application shutdown")

	// buffered 讓timeout分支先走時goroutine也能送完收尾
	done := make(chan error, 1)
	go func() {
		defer close(done)

		if app.PaymentConsumer != nil {
			log.Printf("Stopping payment consumer...")
			app.PaymentConsumer.Stop()
		}

		if app.OrderProducer != nil {
			log.Printf("Closing order event producer...")
			if err := app.OrderProducer.Close(); err != nil {
				//有錯誤不結束流程
				log.Printf("producer close error: %v", err)
			}
		}

		if app.RedisClient != nil {
			log.Printf("Closing redis client...")
			if err := app.RedisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}

		// 關閉 DB
		if app.DbConn != nil {
			log.Printf("Closing database connection...")
			if sqlDB, err := app.DbConn.DB(); err == nil {
				sqlDB.Close()
			}
		}

		log.Printf("Application shutdown complete")
		done <- nil
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %v", ctx.Err())
	}
}

// StartBackground 啟動sweeper與付款事件consumer
func (app *ApplicationContext) StartBackground(ctx context.Context) {
	app.PaymentSweeper.Start(ctx)

	if app.PaymentConsumer != nil {
		if err := app.PaymentConsumer.Start(ctx); err != nil {
			log.Printf("failed to start payment consumer: %v", err)
		}
	}
}
