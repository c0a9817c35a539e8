package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrProductStockNotEnough 商品庫存不足
	ErrProductStockNotEnough = errors.New("product stock not enough")
	// ErrProductReferenced 商品已被訂單引用 不可刪除
	ErrProductReferenced = errors.New("product referenced by existing orders")
)

// IProductRepository 商品與庫存操作介面
// 庫存欄位只能透過 ReserveStock / ReleaseStock 異動
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID string) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error)
	GetProductsInStock(ctx context.Context) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, productID string) error

	GetProductStock(ctx context.Context, productID string) (int, error)
	ReserveStock(ctx context.Context, productID string, quantity uint) (int, error)
	ReleaseStock(ctx context.Context, productID string, quantity uint) (int, error)
}

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *ProductRepo) GetProductByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, "product_id = ?", productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, err
	}
	return &product, nil
}

func (s *ProductRepo) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Find(&products).Error
	return products, err
}

// 分頁查詢商品
func (s *ProductRepo) GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	offset := (page - 1) * pageSize

	if err := s.db.WithContext(ctx).Model(&model.Product{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := s.db.WithContext(ctx).Offset(offset).Limit(pageSize).Find(&products).Error
	return products, total, err
}

// Read - 查詢有庫存的商品
func (s *ProductRepo) GetProductsInStock(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Where("stock > 0").Find(&products).Error
	return products, err
}

// Update - 更新商品資訊 不含庫存
// 庫存欄位只透過 ReserveStock / ReleaseStock 異動 避免覆寫掉併發中的扣減
func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	result := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("product_id = ?", product.ProductID).
		Omit("stock").
		Select("name", "description", "price", "image", "category", "brand", "colors", "sizes", "rating", "featured").
		Updates(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, product.ProductID)
	}
	return nil
}

// Delete - 軟刪除商品
// 已被訂單引用的商品不可刪除 歷史訂單項目需要保留商品參照
func (s *ProductRepo) DeleteProduct(ctx context.Context, productID string) error {
	var referenced int64
	if err := s.db.WithContext(ctx).Model(&model.OrderItem{}).
		Where("product_id = ?", productID).
		Count(&referenced).Error; err != nil {
		return err
	}
	if referenced > 0 {
		return fmt.Errorf("%w: %s", ErrProductReferenced, productID)
	}

	result := s.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&model.Product{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	return nil
}

// 取得商品庫存數量
// 錯誤:
//   - ErrProductNotFound: 商品不存在
//   - err: 其他錯誤
func (s *ProductRepo) GetProductStock(ctx context.Context, productID string) (int, error) {
	product, err := s.GetProductByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	return int(product.Stock), nil
}

// ReserveStock 原子性扣減庫存
// 單一條件式 UPDATE: stock = stock - quantity WHERE stock >= quantity
// 以 RowsAffected 判斷是否成功 絕不可拆成先讀後寫 否則兩個併發請求會同時通過檢查
/*
	返回值:
		- 扣減後的庫存數量
		- 錯誤:
			- ErrProductNotFound: 商品不存在
			- ErrProductStockNotEnough: 庫存不足
			- err: 其他錯誤
*/
func (s *ProductRepo) ReserveStock(ctx context.Context, productID string, quantity uint) (int, error) {
	result := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("product_id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reserve stock: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// 區分商品不存在與庫存不足
		stock, err := s.GetProductStock(ctx, productID)
		if err != nil {
			return 0, err
		}
		return stock, fmt.Errorf("%w: product %s has %d in stock, requested %d",
			ErrProductStockNotEnough, productID, stock, quantity)
	}

	return s.GetProductStock(ctx, productID)
}

// ReleaseStock 歸還庫存 與 ReserveStock 對稱
// 用於多項目訂單部分預留失敗的補償 以及訂單取消的還庫存
func (s *ProductRepo) ReleaseStock(ctx context.Context, productID string, quantity uint) (int, error) {
	result := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("product_id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to release stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	return s.GetProductStock(ctx, productID)
}

var _ IProductRepository = (*ProductRepo)(nil)
