package models

import (
	"time"

	"github.com/google/uuid"
)

// Variant is a purchasable SKU of a product with its own live price and stock.
// Amounts are whole rupees.
type Variant struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	SKU         string    `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Size        string    `gorm:"column:size;not null"`
	Flavor      *string   `gorm:"column:flavor"`
	PriceInINR  int       `gorm:"column:price_in_inr;not null"`
	Stock       int       `gorm:"column:stock;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
