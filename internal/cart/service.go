package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/springzlabs/springz-backend/pkg/db"
	"github.com/springzlabs/springz-backend/pkg/db/models"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
	"github.com/springzlabs/springz-backend/pkg/logger"
)

// MaxLineQuantity caps how many units of one variant a cart may hold.
const MaxLineQuantity = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type variantLoader interface {
	FindVariantByID(ctx context.Context, id uuid.UUID) (*models.Variant, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service is the cart surface used by the cart controllers.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
}

type service struct {
	repo     *Repository
	variants variantLoader
	tx       txRunner
	logg     *logger.Logger
}

func NewService(repo *Repository, variants variantLoader, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant loader is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, variants: variants, tx: tx, logg: logg}, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	items, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toCartDTO(items), nil
}

// AddItem merges with an existing line for the same variant instead of
// inserting a duplicate. The merged quantity is capped at MaxLineQuantity and
// validated against live stock.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	variant, err := s.variants.FindVariantByID(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}
	if !variant.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant is not available")
	}
	product, err := s.variants.FindProductByID(ctx, variant.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, findErr := repo.FindLine(ctx, userID, input.VariantID)
		if findErr != nil {
			if typed := pkgerrors.As(findErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
				return findErr
			}
		}

		quantity := input.Quantity
		if existing != nil {
			quantity += existing.Quantity
		}
		if quantity > MaxLineQuantity {
			quantity = MaxLineQuantity
		}
		if variant.Stock < quantity {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
				WithDetails(map[string]any{"variantId": input.VariantID, "available": variant.Stock})
		}

		if existing != nil {
			return repo.UpdateQuantity(ctx, existing.ID, quantity)
		}
		insertErr := repo.Insert(ctx, &models.CartItem{
			UserID:    userID,
			ProductID: variant.ProductID,
			VariantID: input.VariantID,
			Quantity:  quantity,
		})
		if insertErr != nil && dbpkg.IsUniqueViolation(insertErr, "ux_cart_items_user_variant") {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart item already exists, retry")
		}
		return insertErr
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*CartDTO, error) {
	item, err := s.repo.FindLineByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	if input.Quantity == 0 {
		if err := s.repo.Delete(ctx, item.ID); err != nil {
			return nil, err
		}
		return s.Get(ctx, userID)
	}

	variant, err := s.variants.FindVariantByID(ctx, item.VariantID)
	if err != nil {
		return nil, err
	}
	if variant.Stock < input.Quantity {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
			WithDetails(map[string]any{"variantId": item.VariantID, "available": variant.Stock})
	}

	if err := s.repo.UpdateQuantity(ctx, item.ID, input.Quantity); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	item, err := s.repo.FindLineByID(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}
