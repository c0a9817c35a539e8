package dto

import (
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
)

// OrderItemDTO 訂單項目 價格與名稱為下單當下的快照
type OrderItemDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity"`
	Size        string `json:"size,omitempty"`
	Image       string `json:"image,omitempty"`
}

type OrderDTO struct {
	OrderID     string         `json:"order_id"`
	OrderNumber string         `json:"order_number"`
	UserID      int            `json:"user_id"`
	Amount      string         `json:"amount"`
	Status      string         `json:"status"`
	OrderDate   time.Time      `json:"order_date"`
	Items       []OrderItemDTO `json:"items"`
}

type UpdateOrderStatusDTO struct {
	Status string `json:"status"`
}

type CancelOrderDTO struct {
	Reason string `json:"reason"`
}

func ConvertOrderToDTO(order *model.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.OrderItems))
	for _, item := range order.OrderItems {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price.String(),
			Quantity:    item.Quantity,
			Size:        item.Size,
			Image:       item.Image,
		})
	}
	return OrderDTO{
		OrderID:     order.OrderID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Amount:      order.Amount.String(),
		Status:      string(order.Status),
		OrderDate:   order.OrderDate,
		Items:       items,
	}
}

func ConvertOrdersToDTO(orders []model.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, ConvertOrderToDTO(&orders[i]))
	}
	return dtos
}
