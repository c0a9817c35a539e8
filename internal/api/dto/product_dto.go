package dto

import (
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/shopspring/decimal"
)

type ProductDTO struct {
	ProductID   string   `json:"product_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       string   `json:"price"`
	Image       string   `json:"image,omitempty"`
	Category    string   `json:"category,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	Colors      []string `json:"colors,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	Rating      float64  `json:"rating"`
	Stock       uint     `json:"stock"`
	Featured    bool     `json:"featured"`
}

type CreateProductDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Image       string   `json:"image"`
	Category    string   `json:"category"`
	Brand       string   `json:"brand"`
	Colors      []string `json:"colors"`
	Sizes       []string `json:"sizes"`
	Stock       uint     `json:"stock"`
	Featured    bool     `json:"featured"`
}

// PagingMeta 分頁資訊 放在回應的meta
type PagingMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func (d *CreateProductDTO) ToModel() (*model.Product, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return nil, err
	}
	return &model.Product{
		Name:        d.Name,
		Description: d.Description,
		Price:       price,
		Image:       d.Image,
		Category:    d.Category,
		Brand:       d.Brand,
		Colors:      d.Colors,
		Sizes:       d.Sizes,
		Stock:       d.Stock,
		Featured:    d.Featured,
	}, nil
}

func ConvertProductToDTO(product *model.Product) ProductDTO {
	return ProductDTO{
		ProductID:   product.ProductID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price.String(),
		Image:       product.Image,
		Category:    product.Category,
		Brand:       product.Brand,
		Colors:      product.Colors,
		Sizes:       product.Sizes,
		Rating:      product.Rating,
		Stock:       product.Stock,
		Featured:    product.Featured,
	}
}

func ConvertProductsToDTO(products []model.Product) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, ConvertProductToDTO(&products[i]))
	}
	return dtos
}
