package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/pkg/enums"
)

// Order is the immutable financial record produced by checkout. Only
// status, payment_status, and tracking_number change after creation.
// Amounts are whole rupees.
type Order struct {
	ID                uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number            string               `gorm:"column:number;type:text;not null;uniqueIndex"`
	UserID            uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Status            enums.OrderStatus    `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentStatus     enums.PaymentStatus  `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	DeliveryMethod    enums.DeliveryMethod `gorm:"column:delivery_method;type:delivery_method;not null;default:'standard'"`
	SubtotalInINR     int                  `gorm:"column:subtotal_in_inr;not null"`
	ShippingInINR     int                  `gorm:"column:shipping_in_inr;not null"`
	TotalInINR        int                  `gorm:"column:total_in_inr;not null"`
	TrackingNumber    *string              `gorm:"column:tracking_number"`
	ShippingAddressID uuid.UUID            `gorm:"column:shipping_address_id;type:uuid;not null"`
	BillingAddressID  uuid.UUID            `gorm:"column:billing_address_id;type:uuid;not null"`
	ShippingAddress   *Address             `gorm:"foreignKey:ShippingAddressID"`
	Items             []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
