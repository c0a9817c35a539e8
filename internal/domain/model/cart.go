package model

import (
	"github.com/shopspring/decimal"
)

// 購物車階段只會寫入到redis 不會寫入到db 所有購物車資料都要去redis取
type Cart struct {
	UserID int             `json:"user_id"`
	Items  []CartItem      `json:"items"`
	Amount decimal.Decimal `json:"amount"`
}

type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}
