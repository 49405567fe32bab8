package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/pkg/db/models"
	"github.com/springzlabs/springz-backend/pkg/enums"
)

// ItemDTO is one snapshotted order line. PriceInINR is the price at
// purchase time, not the live catalog price.
type ItemDTO struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	VariantID   uuid.UUID `json:"variantId"`
	ProductName string    `json:"productName,omitempty"`
	Size        string    `json:"size,omitempty"`
	Flavor      *string   `json:"flavor,omitempty"`
	Quantity    int       `json:"quantity"`
	PriceInINR  int       `json:"priceInINR"`
}

// AddressDTO is the shipping address snapshot exposed on an order.
type AddressDTO struct {
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
}

// DTO is the wire representation of an order. Amounts are whole rupees.
type DTO struct {
	ID              uuid.UUID            `json:"id"`
	Number          string               `json:"number"`
	UserID          uuid.UUID            `json:"userId"`
	Status          enums.OrderStatus    `json:"status"`
	PaymentStatus   enums.PaymentStatus  `json:"paymentStatus"`
	DeliveryMethod  enums.DeliveryMethod `json:"deliveryMethod"`
	SubtotalInINR   int                  `json:"subtotalInINR"`
	ShippingInINR   int                  `json:"shippingInINR"`
	TotalInINR      int                  `json:"totalInINR"`
	TrackingNumber  *string              `json:"trackingNumber,omitempty"`
	ShippingAddress *AddressDTO          `json:"shippingAddress,omitempty"`
	Items           []ItemDTO            `json:"items"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// UpdateStatusInput is the admin payload for a fulfillment transition.
// TrackingNumber is only honored when moving to shipped.
type UpdateStatusInput struct {
	Status         string  `json:"status" validate:"required"`
	TrackingNumber *string `json:"trackingNumber,omitempty" validate:"omitempty,min=3,max=60"`
}

// CancelInput optionally records why the customer cancelled.
type CancelInput struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// AdminListFilter narrows the back-office order listing.
type AdminListFilter struct {
	Status *enums.OrderStatus
	UserID *uuid.UUID
}

// ToDTO converts the model into its public shape.
func ToDTO(order *models.Order) *DTO {
	if order == nil {
		return nil
	}
	dto := &DTO{
		ID:             order.ID,
		Number:         order.Number,
		UserID:         order.UserID,
		Status:         order.Status,
		PaymentStatus:  order.PaymentStatus,
		DeliveryMethod: order.DeliveryMethod,
		SubtotalInINR:  order.SubtotalInINR,
		ShippingInINR:  order.ShippingInINR,
		TotalInINR:     order.TotalInINR,
		TrackingNumber: order.TrackingNumber,
		Items:          make([]ItemDTO, 0, len(order.Items)),
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	if order.ShippingAddress != nil {
		dto.ShippingAddress = &AddressDTO{
			Name:       order.ShippingAddress.Name,
			Phone:      order.ShippingAddress.Phone,
			Line1:      order.ShippingAddress.Line1,
			Line2:      order.ShippingAddress.Line2,
			City:       order.ShippingAddress.City,
			State:      order.ShippingAddress.State,
			PostalCode: order.ShippingAddress.PostalCode,
			Country:    order.ShippingAddress.Country,
		}
	}
	for _, item := range order.Items {
		line := ItemDTO{
			ID:         item.ID,
			ProductID:  item.ProductID,
			VariantID:  item.VariantID,
			Quantity:   item.Quantity,
			PriceInINR: item.PriceInINR,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
		}
		if item.Variant != nil {
			line.Size = item.Variant.Size
			line.Flavor = item.Variant.Flavor
		}
		dto.Items = append(dto.Items, line)
	}
	return dto
}
