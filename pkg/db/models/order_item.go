package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem snapshots a purchased line at order time. PriceInINR is
// intentionally decoupled from the live variant price so historical
// orders stay accurate when catalog prices change.
type OrderItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	VariantID  uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	Quantity   int       `gorm:"column:quantity;not null"`
	PriceInINR int       `gorm:"column:price_in_inr;not null"`
	Product    *Product  `gorm:"foreignKey:ProductID"`
	Variant    *Variant  `gorm:"foreignKey:VariantID"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
