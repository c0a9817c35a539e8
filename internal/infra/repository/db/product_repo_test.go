package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type ProductRepoTestSuite struct {
	suite.Suite
	db          *gorm.DB
	productRepo *ProductRepo
}

// SetupSuite 在測試套件開始前執行
func (suite *ProductRepoTestSuite) SetupSuite() {
	// 連接到資料庫
	db, err := GetDbConn("storefront", "localhost", "5432", "royce", "password")
	require.NoError(suite.T(), err)

	// 初始化資料庫
	dbDao := NewDbDao(db)
	err = dbDao.InitMigrate()
	require.NoError(suite.T(), err)

	suite.db = db
	suite.productRepo = NewProductRepo(dbDao)
}

// SetupTest 在每個測試前執行
func (suite *ProductRepoTestSuite) SetupTest() {
	// 清空資料表
	suite.db.Exec("DELETE FROM order_items")
	suite.db.Exec("DELETE FROM orders")
	suite.db.Exec("DELETE FROM products")
}

func (suite *ProductRepoTestSuite) TearDownSuite() {
	db, err := suite.db.DB()
	require.NoError(suite.T(), err)
	db.Close()
}

func TestProductRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProductRepoTestSuite))
}

func (suite *ProductRepoTestSuite) newProduct(id string, stock uint) *model.Product {
	return &model.Product{
		ProductID: id,
		Name:      "Test Product " + id,
		Price:     decimal.NewFromInt(50),
		Stock:     stock,
		Category:  "Test",
	}
}

func (suite *ProductRepoTestSuite) TestCreateAndGetProduct() {
	ctx := context.Background()
	newProduct := suite.newProduct("TEST001", 100)
	err := suite.productRepo.CreateProduct(ctx, newProduct)
	require.NoError(suite.T(), err, "Failed to create product")

	retrievedProduct, err := suite.productRepo.GetProductByID(ctx, "TEST001")
	require.NoError(suite.T(), err, "Failed to get product by ID")
	require.Equal(suite.T(), newProduct.Name, retrievedProduct.Name)
	require.Equal(suite.T(), uint(100), retrievedProduct.Stock)
	require.True(suite.T(), retrievedProduct.Price.Equal(decimal.NewFromInt(50)))
}

func (suite *ProductRepoTestSuite) TestGetProductNotFound() {
	_, err := suite.productRepo.GetProductByID(context.Background(), "MISSING")
	require.ErrorIs(suite.T(), err, ErrProductNotFound)
}

func (suite *ProductRepoTestSuite) TestReserveStock() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, suite.newProduct("TEST002", 10)))

	remaining, err := suite.productRepo.ReserveStock(ctx, "TEST002", 4)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 6, remaining)

	stock, err := suite.productRepo.GetProductStock(ctx, "TEST002")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 6, stock)
}

func (suite *ProductRepoTestSuite) TestReserveStockInsufficient() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, suite.newProduct("TEST003", 3)))

	_, err := suite.productRepo.ReserveStock(ctx, "TEST003", 4)
	require.ErrorIs(suite.T(), err, ErrProductStockNotEnough)

	// 失敗不能動到庫存
	stock, err := suite.productRepo.GetProductStock(ctx, "TEST003")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 3, stock)
}

func (suite *ProductRepoTestSuite) TestReserveStockNotFound() {
	_, err := suite.productRepo.ReserveStock(context.Background(), "MISSING", 1)
	require.ErrorIs(suite.T(), err, ErrProductNotFound)
}

// 併發扣庫存 成功次數要剛好等於庫存量
func (suite *ProductRepoTestSuite) TestReserveStockConcurrent() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, suite.newProduct("TEST004", 5)))

	results := make([]error, 10)
	g := new(errgroup.Group)
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := suite.productRepo.ReserveStock(ctx, "TEST004", 1)
			results[i] = err
			return nil
		})
	}
	require.NoError(suite.T(), g.Wait())

	var succeeded int
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(suite.T(), err, ErrProductStockNotEnough)
		}
	}
	require.Equal(suite.T(), 5, succeeded)

	stock, err := suite.productRepo.GetProductStock(ctx, "TEST004")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 0, stock)
}

func (suite *ProductRepoTestSuite) TestReleaseStock() {
	ctx := context.Background()
	require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, suite.newProduct("TEST005", 2)))

	remaining, err := suite.productRepo.ReleaseStock(ctx, "TEST005", 3)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 5, remaining)
}

// UpdateProduct 不帶庫存欄位 庫存只能走 Reserve / Release
func (suite *ProductRepoTestSuite) TestUpdateProductKeepsStock() {
	ctx := context.Background()
	product := suite.newProduct("TEST006", 7)
	require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, product))

	product.Name = "Renamed"
	product.Stock = 999
	require.NoError(suite.T(), suite.productRepo.UpdateProduct(ctx, product))

	retrieved, err := suite.productRepo.GetProductByID(ctx, "TEST006")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "Renamed", retrieved.Name)
	require.Equal(suite.T(), uint(7), retrieved.Stock)
}

func (suite *ProductRepoTestSuite) TestGetProductsPaginated() {
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(suite.T(), suite.productRepo.CreateProduct(ctx, suite.newProduct(fmt.Sprintf("PAGE%03d", i), 1)))
	}

	products, total, err := suite.productRepo.GetProductsPaginated(ctx, 1, 2)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(5), total)
	require.Len(suite.T(), products, 2)
}
