package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

var ErrNotFound = errors.New("product_not_found")

type Product struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Price     float64      `json:"price" gorm:"not null"`
	TaxRate   float64      `json:"tax_rate" gorm:"column:tax_rate;not null;default:0"`
	Active    bool         `json:"active" gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time    `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

type Repository interface {
	FindByIDs(ctx context.Context, ids []snowflake.ID) ([]Product, error)
}
