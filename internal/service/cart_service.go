package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/redis_repo"
	"github.com/shopspring/decimal"
)

// ErrEmptyCart 購物車為空 無法結帳
var ErrEmptyCart = errors.New("cart is empty")

type ICartService interface {
	AddItem(ctx context.Context, userID int, item model.CartItem) error
	UpdateQuantity(ctx context.Context, userID int, productID string, delta int) error
	RemoveItem(ctx context.Context, userID int, productID string) error
	GetCart(ctx context.Context, userID int) (*model.Cart, error)
	Clear(ctx context.Context, userID int) error
	Snapshot(ctx context.Context, userID int) ([]model.OrderItem, error)
}

// 購物車階段只會寫入到redis 不會寫入到db 所有購物車資料都要去redis取
type CartService struct {
	cartRepo    redis_repo.ICartRepository
	productRepo db.IProductRepository
}

func NewCartService(cartRepo redis_repo.ICartRepository, productRepo db.IProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

// AddItem 加入購物車 先確認商品存在
func (c *CartService) AddItem(ctx context.Context, userID int, item model.CartItem) error {
	if _, err := c.productRepo.GetProductByID(ctx, item.ProductID); err != nil {
		return err
	}
	return c.cartRepo.SetItem(ctx, userID, item)
}

func (c *CartService) UpdateQuantity(ctx context.Context, userID int, productID string, delta int) error {
	return c.cartRepo.UpdateQuantity(ctx, userID, productID, delta)
}

func (c *CartService) RemoveItem(ctx context.Context, userID int, productID string) error {
	return c.cartRepo.RemoveItem(ctx, userID, productID)
}

// GetCart 取得購物車並以目前商品價格計算金額
// 購物車金額僅供顯示 結帳金額以 Snapshot 當下為準
func (c *CartService) GetCart(ctx context.Context, userID int) (*model.Cart, error) {
	cart, err := c.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	amount := decimal.NewFromInt(0)
	for _, item := range cart.Items {
		product, err := c.productRepo.GetProductByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		amount = amount.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	cart.Amount = amount

	return cart, nil
}

func (c *CartService) Clear(ctx context.Context, userID int) error {
	return c.cartRepo.Clear(ctx, userID)
}

// Snapshot 將購物車凍結成訂單項目
// 以當下商品名稱與價格產生快照 之後購物車或商品異動都不影響已取的快照
/*
	錯誤:
		- ErrEmptyCart: 購物車為空
		- db.ErrProductNotFound: 購物車內商品已不存在
*/
func (c *CartService) Snapshot(ctx context.Context, userID int) ([]model.OrderItem, error) {
	cart, err := c.cartRepo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items := make([]model.OrderItem, 0, len(cart.Items))
	for _, cartItem := range cart.Items {
		product, err := c.productRepo.GetProductByID(ctx, cartItem.ProductID)
		if err != nil {
			return nil, err
		}
		items = append(items, model.OrderItem{
			ProductID:   product.ProductID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    cartItem.Quantity,
			Size:        cartItem.Size,
			Image:       product.Image,
		})
	}
	return items, nil
}

var _ ICartService = (*CartService)(nil)
