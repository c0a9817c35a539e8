package model

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	ProductID   string          `gorm:"primaryKey;type:varchar(255)" json:"product_id"`
	Name        string          `gorm:"not null;type:varchar(100)" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"not null;type:decimal(10,2)" json:"price"`
	Image       string          `gorm:"type:varchar(255)" json:"image"`
	Category    string          `gorm:"type:varchar(50)" json:"category"`
	Brand       string          `gorm:"type:varchar(50)" json:"brand"`
	Colors      []string        `gorm:"serializer:json" json:"colors"`
	Sizes       []string        `gorm:"serializer:json" json:"sizes"`
	Rating      float64         `gorm:"default:0" json:"rating"`
	Stock       uint            `gorm:"not null;type:int;default:0" json:"stock"`
	Featured    bool            `gorm:"not null;default:false" json:"featured"`
	OrderItems  []OrderItem     `gorm:"foreignKey:ProductID" json:"-"`
	BaseModel
}

// InStock 是否還有庫存
func (p *Product) InStock() bool {
	return p.Stock > 0
}
