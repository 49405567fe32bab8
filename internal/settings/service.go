package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/springzlabs/springz-backend/pkg/db/models"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
	"github.com/springzlabs/springz-backend/pkg/logger"
)

// DTO is the wire representation of one setting.
type DTO struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	IsPublic bool   `json:"isPublic"`
}

// UpsertInput creates or replaces a setting.
type UpsertInput struct {
	Value    string `json:"value" validate:"required,max=4000"`
	IsPublic bool   `json:"isPublic"`
}

// Repository provides persistence for settings.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, publicOnly bool) ([]models.Setting, error) {
	query := r.db.WithContext(ctx).Model(&models.Setting{})
	if publicOnly {
		query = query.Where("is_public = TRUE")
	}
	var rows []models.Setting
	if err := query.Order("key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Find(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, err
	}
	return &setting, nil
}

func (r *Repository) Upsert(ctx context.Context, setting *models.Setting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "is_public", "updated_at"}),
		}).
		Create(setting).Error
}

// Service is the settings surface for storefront and back office.
type Service interface {
	ListPublic(ctx context.Context) ([]DTO, error)
	ListAll(ctx context.Context) ([]DTO, error)
	GetPublic(ctx context.Context, key string) (*DTO, error)
	Upsert(ctx context.Context, key string, input UpsertInput) (*DTO, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) ListPublic(ctx context.Context) ([]DTO, error) {
	return s.list(ctx, true)
}

func (s *service) ListAll(ctx context.Context) ([]DTO, error) {
	return s.list(ctx, false)
}

func (s *service) list(ctx context.Context, publicOnly bool) ([]DTO, error) {
	rows, err := s.repo.List(ctx, publicOnly)
	if err != nil {
		return nil, err
	}
	out := make([]DTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, DTO{Key: row.Key, Value: row.Value, IsPublic: row.IsPublic})
	}
	return out, nil
}

// GetPublic hides private settings behind the same not-found error as a
// missing key.
func (s *service) GetPublic(ctx context.Context, key string) (*DTO, error) {
	setting, err := s.repo.Find(ctx, strings.TrimSpace(key))
	if err != nil {
		return nil, err
	}
	if !setting.IsPublic {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
	}
	return &DTO{Key: setting.Key, Value: setting.Value, IsPublic: setting.IsPublic}, nil
}

func (s *service) Upsert(ctx context.Context, key string, input UpsertInput) (*DTO, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	setting := &models.Setting{Key: key, Value: input.Value, IsPublic: input.IsPublic}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return &DTO{Key: setting.Key, Value: setting.Value, IsPublic: setting.IsPublic}, nil
}
