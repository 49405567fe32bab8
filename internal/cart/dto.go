package cart

import (
	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/pkg/db/models"
)

// AddItemInput stages a variant in the cart. Quantity is clamped to the
// per-line maximum after merging with any existing line.
type AddItemInput struct {
	VariantID uuid.UUID `json:"variantId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1,lte=10"`
}

// UpdateItemInput changes a line quantity. Zero removes the line.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"gte=0,lte=10"`
}

// ItemDTO is one cart line with its live catalog data.
// Amounts are whole rupees.
type ItemDTO struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"productId"`
	VariantID    uuid.UUID `json:"variantId"`
	ProductName  string    `json:"productName"`
	ProductSlug  string    `json:"productSlug"`
	Size         string    `json:"size"`
	Flavor       *string   `json:"flavor,omitempty"`
	PriceInINR   int       `json:"priceInINR"`
	Quantity     int       `json:"quantity"`
	LineTotalINR int       `json:"lineTotalINR"`
	Stock        int       `json:"stock"`
	IsAvailable  bool      `json:"isAvailable"`
}

// CartDTO is the full cart with computed totals.
type CartDTO struct {
	Items         []ItemDTO `json:"items"`
	ItemCount     int       `json:"itemCount"`
	SubtotalInINR int       `json:"subtotalInINR"`
}

func itemToDTO(item models.CartItem) ItemDTO {
	dto := ItemDTO{
		ID:        item.ID,
		ProductID: item.ProductID,
		VariantID: item.VariantID,
		Quantity:  item.Quantity,
	}
	if item.Product != nil {
		dto.ProductName = item.Product.Name
		dto.ProductSlug = item.Product.Slug
	}
	if item.Variant != nil {
		dto.Size = item.Variant.Size
		dto.Flavor = item.Variant.Flavor
		dto.PriceInINR = item.Variant.PriceInINR
		dto.Stock = item.Variant.Stock
		dto.LineTotalINR = item.Variant.PriceInINR * item.Quantity
		dto.IsAvailable = item.Variant.IsActive && item.Variant.Stock >= item.Quantity
		if item.Product != nil {
			dto.IsAvailable = dto.IsAvailable && item.Product.IsActive
		}
	}
	return dto
}

func toCartDTO(items []models.CartItem) *CartDTO {
	cart := &CartDTO{Items: make([]ItemDTO, 0, len(items))}
	for _, item := range items {
		dto := itemToDTO(item)
		cart.Items = append(cart.Items, dto)
		cart.ItemCount += dto.Quantity
		cart.SubtotalInINR += dto.LineTotalINR
	}
	return cart
}
