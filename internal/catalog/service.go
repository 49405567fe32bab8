package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/springzlabs/springz-backend/pkg/db"
	"github.com/springzlabs/springz-backend/pkg/db/models"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
	"github.com/springzlabs/springz-backend/pkg/logger"
	"github.com/springzlabs/springz-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the catalog surface used by public and admin controllers.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	AdminListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error)
	ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[ProductDTO], error)
	GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	AdminListProducts(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[ProductDTO], error)
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	UpdateVariant(ctx context.Context, productID, variantID uuid.UUID, input UpdateVariantInput) (*ProductDTO, error)
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	return s.listCategories(ctx, true)
}

func (s *service) AdminListCategories(ctx context.Context) ([]CategoryDTO, error) {
	return s.listCategories(ctx, false)
}

func (s *service) listCategories(ctx context.Context, activeOnly bool) ([]CategoryDTO, error) {
	rows, err := s.repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *categoryToDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*CategoryDTO, error) {
	category := &models.Category{
		Name:        strings.TrimSpace(input.Name),
		Slug:        Slugify(input.Name),
		Description: input.Description,
		IsActive:    true,
	}
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, err
	}
	return categoryToDTO(created), nil
}

// UpdateCategory mutates a category. A rename regenerates the slug so the
// storefront URL always tracks the display name.
func (s *service) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*CategoryDTO, error) {
	updates := categoryUpdates(input)
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	if err := s.repo.UpdateCategory(ctx, id, updates); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, err
	}
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return categoryToDTO(category), nil
}

func categoryUpdates(input UpdateCategoryInput) map[string]any {
	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
		updates["slug"] = Slugify(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = input.Description
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	return updates
}

func (s *service) ListProducts(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[ProductDTO], error) {
	return s.listProducts(ctx, filter, true, params)
}

func (s *service) AdminListProducts(ctx context.Context, filter ListFilter, params pagination.Params) (*pagination.Page[ProductDTO], error) {
	return s.listProducts(ctx, filter, false, params)
}

func (s *service) listProducts(ctx context.Context, filter ListFilter, activeOnly bool, params pagination.Params) (*pagination.Page[ProductDTO], error) {
	rows, next, err := s.repo.ListProducts(ctx, filter, activeOnly, params)
	if err != nil {
		return nil, err
	}
	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *productToDTO(&rows[i]))
	}
	return pagination.NewPage(items, next), nil
}

func (s *service) GetProductBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.repo.FindProductBySlug(ctx, strings.TrimSpace(slug), true)
	if err != nil {
		return nil, err
	}
	return productToDTO(product), nil
}

// CreateProduct inserts the product shell and all variants in one
// transaction so a partially created product never becomes visible.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	exists, err := s.repo.CategoryExists(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
	}

	slug := Slugify(input.Name)
	product := &models.Product{
		CategoryID:  input.CategoryID,
		Name:        strings.TrimSpace(input.Name),
		Slug:        slug,
		Description: input.Description,
		IsActive:    true,
	}
	for i, v := range input.Variants {
		product.Variants = append(product.Variants, models.Variant{
			SKU:        GenerateSKU(slug, v.Size, v.Flavor, i),
			Size:       strings.TrimSpace(v.Size),
			Flavor:     v.Flavor,
			PriceInINR: v.PriceInINR,
			Stock:      v.Stock,
			IsActive:   true,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, txErr := s.repo.WithTx(tx).CreateProduct(ctx, product)
		return txErr
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product slug or sku already exists")
		}
		return nil, err
	}
	return productToDTO(product), nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		updates["description"] = input.Description
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	if err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
		return nil, err
	}
	product, err := s.repo.FindProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productToDTO(product), nil
}

func (s *service) UpdateVariant(ctx context.Context, productID, variantID uuid.UUID, input UpdateVariantInput) (*ProductDTO, error) {
	variant, err := s.repo.FindVariantByID(ctx, variantID)
	if err != nil {
		return nil, err
	}
	if variant.ProductID != productID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}

	updates := map[string]any{}
	if input.PriceInINR != nil {
		updates["price_in_inr"] = *input.PriceInINR
	}
	if input.Stock != nil {
		updates["stock"] = *input.Stock
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	if err := s.repo.UpdateVariant(ctx, variantID, updates); err != nil {
		return nil, err
	}
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return productToDTO(product), nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the name and collapses runs of non-alphanumerics to
// single hyphens.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	return strings.Trim(slug, "-")
}

// GenerateSKU derives a deterministic SKU from the product slug and variant
// attributes. The ordinal keeps SKUs unique when size and flavor collide.
func GenerateSKU(slug, size string, flavor *string, ordinal int) string {
	parts := []string{strings.ToUpper(Slugify(slug))}
	if s := Slugify(size); s != "" {
		parts = append(parts, strings.ToUpper(s))
	}
	if flavor != nil {
		if f := Slugify(*flavor); f != "" {
			parts = append(parts, strings.ToUpper(f))
		}
	}
	parts = append(parts, fmt.Sprintf("%02d", ordinal+1))
	return strings.Join(parts, "-")
}
