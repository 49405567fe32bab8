package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/pkg/db/models"
)

// CategoryDTO is the wire representation of a category.
type CategoryDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"isActive"`
}

// VariantDTO is the wire representation of a purchasable SKU.
// Amounts are whole rupees.
type VariantDTO struct {
	ID         uuid.UUID `json:"id"`
	SKU        string    `json:"sku"`
	Size       string    `json:"size"`
	Flavor     *string   `json:"flavor,omitempty"`
	PriceInINR int       `json:"priceInINR"`
	Stock      int       `json:"stock"`
	IsActive   bool      `json:"isActive"`
}

// ProductDTO is the wire representation of a product with its variants.
type ProductDTO struct {
	ID          uuid.UUID    `json:"id"`
	CategoryID  uuid.UUID    `json:"categoryId"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description *string      `json:"description,omitempty"`
	IsActive    bool         `json:"isActive"`
	Category    *CategoryDTO `json:"category,omitempty"`
	Variants    []VariantDTO `json:"variants"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// CreateCategoryInput is the admin payload for a new category.
type CreateCategoryInput struct {
	Name        string  `json:"name" validate:"required,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// UpdateCategoryInput is the admin payload for mutating a category. Renaming
// regenerates the slug.
type UpdateCategoryInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// CreateVariantInput describes one SKU inside a product create/update.
type CreateVariantInput struct {
	Size       string  `json:"size" validate:"required,min=1,max=40"`
	Flavor     *string `json:"flavor,omitempty" validate:"omitempty,max=60"`
	PriceInINR int     `json:"priceInINR" validate:"required,gt=0"`
	Stock      int     `json:"stock" validate:"gte=0"`
}

// CreateProductInput is the admin payload for a new product and its variants.
type CreateProductInput struct {
	CategoryID  uuid.UUID            `json:"categoryId" validate:"required"`
	Name        string               `json:"name" validate:"required,min=1,max=200"`
	Description *string              `json:"description,omitempty" validate:"omitempty,max=5000"`
	Variants    []CreateVariantInput `json:"variants" validate:"required,min=1,max=20,dive"`
}

// UpdateProductInput is the admin payload for mutating a product shell.
// Variants are managed through UpdateVariantInput.
type UpdateProductInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// UpdateVariantInput mutates price, stock, or availability of one SKU.
type UpdateVariantInput struct {
	PriceInINR *int  `json:"priceInINR,omitempty" validate:"omitempty,gt=0"`
	Stock      *int  `json:"stock,omitempty" validate:"omitempty,gte=0"`
	IsActive   *bool `json:"isActive,omitempty"`
}

// ListFilter narrows public product listings.
type ListFilter struct {
	CategorySlug string
	Search       string
}

func categoryToDTO(category *models.Category) *CategoryDTO {
	if category == nil {
		return nil
	}
	return &CategoryDTO{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
		IsActive:    category.IsActive,
	}
}

func variantToDTO(variant models.Variant) VariantDTO {
	return VariantDTO{
		ID:         variant.ID,
		SKU:        variant.SKU,
		Size:       variant.Size,
		Flavor:     variant.Flavor,
		PriceInINR: variant.PriceInINR,
		Stock:      variant.Stock,
		IsActive:   variant.IsActive,
	}
}

func productToDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	variants := make([]VariantDTO, 0, len(product.Variants))
	for _, variant := range product.Variants {
		variants = append(variants, variantToDTO(variant))
	}
	return &ProductDTO{
		ID:          product.ID,
		CategoryID:  product.CategoryID,
		Name:        product.Name,
		Slug:        product.Slug,
		Description: product.Description,
		IsActive:    product.IsActive,
		Category:    categoryToDTO(product.Category),
		Variants:    variants,
		CreatedAt:   product.CreatedAt,
	}
}
