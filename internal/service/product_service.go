package service

import (
	"context"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/google/uuid"
)

type IProductService interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
	GetAllProducts(ctx context.Context) ([]model.Product, error)
	GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, productID string) error
	CheckAvailability(ctx context.Context, productID string, quantity int) (bool, int, error)
}

type ProductService struct {
	productRepo db.IProductRepository
}

func NewProductService(productRepo db.IProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (p *ProductService) CreateProduct(ctx context.Context, product *model.Product) error {
	if product.ProductID == "" {
		product.ProductID = uuid.New().String()
	}
	return p.productRepo.CreateProduct(ctx, product)
}

func (p *ProductService) GetProduct(ctx context.Context, productID string) (*model.Product, error) {
	return p.productRepo.GetProductByID(ctx, productID)
}

func (p *ProductService) GetAllProducts(ctx context.Context) ([]model.Product, error) {
	return p.productRepo.GetAllProducts(ctx)
}

func (p *ProductService) GetProductsPaginated(ctx context.Context, page, pageSize int) ([]model.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return p.productRepo.GetProductsPaginated(ctx, page, pageSize)
}

func (p *ProductService) UpdateProduct(ctx context.Context, product *model.Product) error {
	return p.productRepo.UpdateProduct(ctx, product)
}

// DeleteProduct 已被訂單引用的商品會拿到 db.ErrProductReferenced
func (p *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	return p.productRepo.DeleteProduct(ctx, productID)
}

// CheckAvailability 查詢商品庫存是否足夠
// 僅供展示用 結帳時以 ReserveStock 的原子判斷為準
func (p *ProductService) CheckAvailability(ctx context.Context, productID string, quantity int) (bool, int, error) {
	stock, err := p.productRepo.GetProductStock(ctx, productID)
	if err != nil {
		return false, 0, err
	}
	return stock >= quantity, stock, nil
}

var _ IProductService = (*ProductService)(nil)
