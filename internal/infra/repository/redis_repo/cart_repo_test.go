package redis_repo

import (
	"context"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	testRedisAddr     = "localhost:6379"
	testRedisPassword = "password"
	testUserID        = 9901
)

type CartRepoTestSuite struct {
	suite.Suite
	client   *redis.Client
	cartRepo *CartRepo
}

func (suite *CartRepoTestSuite) SetupSuite() {
	client := redis.NewClient(&redis.Options{
		Addr:     testRedisAddr,
		Password: testRedisPassword,
	})
	require.NoError(suite.T(), client.Ping(context.Background()).Err())

	suite.client = client
	suite.cartRepo = NewCartRepo(client)
}

func (suite *CartRepoTestSuite) SetupTest() {
	require.NoError(suite.T(), suite.cartRepo.Clear(context.Background(), testUserID))
}

func (suite *CartRepoTestSuite) TearDownSuite() {
	suite.cartRepo.Clear(context.Background(), testUserID)
	suite.client.Close()
}

func TestCartRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CartRepoTestSuite))
}

func (suite *CartRepoTestSuite) TestSetAndGetItem() {
	ctx := context.Background()

	err := suite.cartRepo.SetItem(ctx, testUserID, model.CartItem{
		ProductID: "P1",
		Quantity:  2,
		Size:      "M",
		Color:     "blue",
	})
	require.NoError(suite.T(), err)

	cart, err := suite.cartRepo.Get(ctx, testUserID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), cart.Items, 1)
	require.Equal(suite.T(), "P1", cart.Items[0].ProductID)
	require.Equal(suite.T(), 2, cart.Items[0].Quantity)
	require.Equal(suite.T(), "M", cart.Items[0].Size)
	require.Equal(suite.T(), "blue", cart.Items[0].Color)
}

func (suite *CartRepoTestSuite) TestSetItemAccumulates() {
	ctx := context.Background()

	require.NoError(suite.T(), suite.cartRepo.SetItem(ctx, testUserID, model.CartItem{ProductID: "P1", Quantity: 2}))
	require.NoError(suite.T(), suite.cartRepo.SetItem(ctx, testUserID, model.CartItem{ProductID: "P1", Quantity: 3}))

	cart, err := suite.cartRepo.Get(ctx, testUserID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), cart.Items, 1)
	require.Equal(suite.T(), 5, cart.Items[0].Quantity)
}

func (suite *CartRepoTestSuite) TestSetItemInvalidQuantity() {
	err := suite.cartRepo.SetItem(context.Background(), testUserID, model.CartItem{ProductID: "P1", Quantity: 0})
	require.ErrorIs(suite.T(), err, ErrInsufficientQuantity)
}

func (suite *CartRepoTestSuite) TestGetEmptyCart() {
	cart, err := suite.cartRepo.Get(context.Background(), testUserID)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), cart.Items)
	require.Equal(suite.T(), testUserID, cart.UserID)
}

func (suite *CartRepoTestSuite) TestUpdateQuantity() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.cartRepo.SetItem(ctx, testUserID, model.CartItem{ProductID: "P1", Quantity: 5}))

	require.NoError(suite.T(), suite.cartRepo.UpdateQuantity(ctx, testUserID, "P1", -2))

	cart, err := suite.cartRepo.Get(ctx, testUserID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 3, cart.Items[0].Quantity)
}

// 減到0要直接從hash移除
func (suite *CartRepoTestSuite) TestUpdateQuantityToZeroRemoves() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.cartRepo.SetItem(ctx, testUserID, model.CartItem{ProductID: "P1", Quantity: 2}))

	require.NoError(suite.T(), suite.cartRepo.UpdateQuantity(ctx, testUserID, "P1", -2))

	cart, err := suite.cartRepo.Get(ctx, testUserID)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), cart.Items)
}

func (suite *CartRepoTestSuite) TestUpdateQuantityBelowZero() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.cartRepo.SetItem(ctx, testUserID, model.CartItem{ProductID: "P1", Quantity: 2}))

	err := suite.cartRepo.UpdateQuantity(ctx, testUserID, "P1", -3)
	require.ErrorIs(suite.T(), err, ErrInsufficientQuantity)

	// 失敗不能動到數量
	cart, err := suite.cartRepo.Get(ctx, testUserID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 2, cart.Items[0].Quantity)
}

func (suite *CartRepoTestSuite) TestUpdateQuantityNotFound() {
	err := suite.cartRepo.UpdateQuantity(context.Background(), testUserID, "MISSING", 1)
	require.ErrorIs(suite.T(), err, ErrCartItemNotFound)
}

func (suite *CartRepoTestSuite) TestRemoveItem() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.cartRepo.SetItem(ctx, testUserID, model.CartItem{ProductID: "P1", Quantity: 1}))

	require.NoError(suite.T(), suite.cartRepo.RemoveItem(ctx, testUserID, "P1"))

	err := suite.cartRepo.RemoveItem(ctx, testUserID, "P1")
	require.ErrorIs(suite.T(), err, ErrCartItemNotFound)
}

func (suite *CartRepoTestSuite) TestClear() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.cartRepo.SetItem(ctx, testUserID, model.CartItem{ProductID: "P1", Quantity: 1}))
	require.NoError(suite.T(), suite.cartRepo.SetItem(ctx, testUserID, model.CartItem{ProductID: "P2", Quantity: 2}))

	require.NoError(suite.T(), suite.cartRepo.Clear(ctx, testUserID))

	cart, err := suite.cartRepo.Get(ctx, testUserID)
	require.NoError(suite.T(), err)
	require.Empty(suite.T(), cart.Items)
}
