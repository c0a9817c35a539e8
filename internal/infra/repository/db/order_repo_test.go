package db

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type OrderRepoTestSuite struct {
	suite.Suite
	db        *gorm.DB
	orderRepo *OrderRepo
}

func (suite *OrderRepoTestSuite) SetupSuite() {
	db, err := GetDbConn("storefront", "localhost", "5432", "royce", "password")
	require.NoError(suite.T(), err)

	dbDao := NewDbDao(db)
	err = dbDao.InitMigrate()
	require.NoError(suite.T(), err)

	suite.db = db
	suite.orderRepo = NewOrderRepo(dbDao)
}

func (suite *OrderRepoTestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM order_items")
	suite.db.Exec("DELETE FROM orders")
}

func (suite *OrderRepoTestSuite) TearDownSuite() {
	db, err := suite.db.DB()
	require.NoError(suite.T(), err)
	db.Close()
}

func TestOrderRepoTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepoTestSuite))
}

func (suite *OrderRepoTestSuite) newOrder(userID int) *model.Order {
	orderID := uuid.New().String()
	return &model.Order{
		OrderID:        orderID,
		OrderNumber:    "ORD-TEST-" + orderID[:8],
		UserID:         userID,
		IdempotencyKey: uuid.New().String(),
		Amount:         decimal.NewFromInt(100),
		Status:         model.OrderStatusAwaitingPayment,
		OrderDate:      time.Now(),
		OrderItems: []model.OrderItem{
			{
				OrderID:     orderID,
				ProductID:   "P1",
				ProductName: "Test Product",
				Price:       decimal.NewFromInt(50),
				Quantity:    2,
			},
		},
	}
}

func (suite *OrderRepoTestSuite) TestCreateAndGetOrder() {
	ctx := context.Background()
	order := suite.newOrder(1)
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, order))

	retrieved, err := suite.orderRepo.GetOrderByID(ctx, order.OrderID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), order.OrderNumber, retrieved.OrderNumber)
	require.Equal(suite.T(), model.OrderStatusAwaitingPayment, retrieved.Status)
	// 訂單項目要一起寫入跟讀回
	require.Len(suite.T(), retrieved.OrderItems, 1)
	require.True(suite.T(), retrieved.OrderItems[0].Price.Equal(decimal.NewFromInt(50)))
}

func (suite *OrderRepoTestSuite) TestGetOrderNotFound() {
	_, err := suite.orderRepo.GetOrderByID(context.Background(), "missing")
	require.ErrorIs(suite.T(), err, ErrOrderNotFound)
}

func (suite *OrderRepoTestSuite) TestDuplicateIdempotencyKey() {
	ctx := context.Background()
	first := suite.newOrder(1)
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, first))

	second := suite.newOrder(1)
	second.IdempotencyKey = first.IdempotencyKey
	err := suite.orderRepo.CreateOrder(ctx, second)
	require.ErrorIs(suite.T(), err, ErrDuplicateOrder)

	// 用冪等鍵撈回第一筆
	retrieved, err := suite.orderRepo.GetOrderByIdempotencyKey(ctx, 1, first.IdempotencyKey)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), retrieved)
	require.Equal(suite.T(), first.OrderID, retrieved.OrderID)
}

// 冪等鍵以用戶為範圍 不同用戶可以各自用同一把key
func (suite *OrderRepoTestSuite) TestIdempotencyKeyScopedPerUser() {
	ctx := context.Background()
	first := suite.newOrder(1)
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, first))

	other := suite.newOrder(2)
	other.IdempotencyKey = first.IdempotencyKey
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, other))

	// 用戶2查不到用戶1的訂單
	retrieved, err := suite.orderRepo.GetOrderByIdempotencyKey(ctx, 2, first.IdempotencyKey)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), retrieved)
	require.Equal(suite.T(), other.OrderID, retrieved.OrderID)
	require.Equal(suite.T(), 2, retrieved.UserID)
}

func (suite *OrderRepoTestSuite) TestGetOrderByIdempotencyKeyMissing() {
	retrieved, err := suite.orderRepo.GetOrderByIdempotencyKey(context.Background(), 1, "no-such-key")
	require.NoError(suite.T(), err)
	require.Nil(suite.T(), retrieved)
}

// 條件式更新 同一個from只會成功一次
func (suite *OrderRepoTestSuite) TestUpdateOrderStatusConditional() {
	ctx := context.Background()
	order := suite.newOrder(1)
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, order))

	updated, err := suite.orderRepo.UpdateOrderStatus(ctx, order.OrderID, model.OrderStatusAwaitingPayment, model.OrderStatusPending)
	require.NoError(suite.T(), err)
	require.True(suite.T(), updated)

	// 狀態已經不是awaiting_payment 再更新一次要失敗
	updated, err = suite.orderRepo.UpdateOrderStatus(ctx, order.OrderID, model.OrderStatusAwaitingPayment, model.OrderStatusPending)
	require.NoError(suite.T(), err)
	require.False(suite.T(), updated)
}

func (suite *OrderRepoTestSuite) TestGetOrdersByUserID() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, suite.newOrder(1)))
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, suite.newOrder(1)))
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, suite.newOrder(2)))

	orders, err := suite.orderRepo.GetOrdersByUserID(ctx, 1)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), orders, 2)
}

func (suite *OrderRepoTestSuite) TestGetAwaitingPaymentBefore() {
	ctx := context.Background()

	expired := suite.newOrder(1)
	expired.OrderDate = time.Now().Add(-2 * time.Hour)
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, expired))

	fresh := suite.newOrder(1)
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, fresh))

	paid := suite.newOrder(1)
	paid.OrderDate = time.Now().Add(-2 * time.Hour)
	paid.Status = model.OrderStatusPending
	require.NoError(suite.T(), suite.orderRepo.CreateOrder(ctx, paid))

	orders, err := suite.orderRepo.GetAwaitingPaymentBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(suite.T(), err)
	require.Len(suite.T(), orders, 1)
	require.Equal(suite.T(), expired.OrderID, orders[0].OrderID)
}
