package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

type CartItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// CartDTO 金額以目前商品價格計算 僅供顯示
type CartDTO struct {
	UserID int           `json:"user_id"`
	Items  []CartItemDTO `json:"items"`
	Amount string        `json:"amount"`
}

type AddCartItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type UpdateCartQuantityDTO struct {
	Delta int `json:"delta"`
}

func ConvertCartToDTO(cart *model.Cart) CartDTO {
	items := make([]CartItemDTO, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, CartItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		})
	}
	return CartDTO{
		UserID: cart.UserID,
		Items:  items,
		Amount: cart.Amount.String(),
	}
}
