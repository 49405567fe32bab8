package address

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/springzlabs/springz-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the address book surface used by the address controllers.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]DTO, error)
	Create(ctx context.Context, userID uuid.UUID, input Input) (*DTO, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, input Input) (*DTO, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]DTO, error) {
	rows, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]DTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

// Create inserts the address. Setting isDefault unsets any prior default in
// the same transaction so at most one default survives.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input Input) (*DTO, error) {
	address := input.ToModel(userID)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if address.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return repo.Insert(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(address), nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, input Input) (*DTO, error) {
	existing, err := s.repo.FindForUser(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	updated := input.ToModel(userID)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if updated.IsDefault && !existing.IsDefault {
			if err := repo.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return repo.Update(ctx, updated)
	})
	if err != nil {
		return nil, err
	}
	return toDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.repo.Delete(ctx, userID, addressID)
}
