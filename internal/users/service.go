package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/pkg/enums"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
	"github.com/springzlabs/springz-backend/pkg/logger"
	"github.com/springzlabs/springz-backend/pkg/pagination"
)

// UpdateProfileInput mutates the caller's own profile.
type UpdateProfileInput struct {
	Name  string  `json:"name" validate:"required,min=1,max=120"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
}

// SetActiveInput enables or disables an account.
type SetActiveInput struct {
	IsActive bool `json:"isActive"`
}

// Service is the profile and admin user-management surface.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	AdminList(ctx context.Context, role *enums.UserRole, params pagination.Params) (*pagination.Page[UserDTO], error)
	AdminGet(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	AdminSetActive(ctx context.Context, userID uuid.UUID, input SetActiveInput) (*UserDTO, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToDTO(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	user, err := s.repo.UpdateProfile(ctx, userID, name, input.Phone)
	if err != nil {
		return nil, err
	}
	return ToDTO(user), nil
}

func (s *service) AdminList(ctx context.Context, role *enums.UserRole, params pagination.Params) (*pagination.Page[UserDTO], error) {
	rows, next, err := s.repo.List(ctx, role, params)
	if err != nil {
		return nil, err
	}
	items := make([]UserDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *ToDTO(&rows[i]))
	}
	return pagination.NewPage(items, next), nil
}

func (s *service) AdminGet(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToDTO(user), nil
}

func (s *service) AdminSetActive(ctx context.Context, userID uuid.UUID, input SetActiveInput) (*UserDTO, error) {
	if err := s.repo.SetActive(ctx, userID, input.IsActive); err != nil {
		return nil, err
	}
	return s.AdminGet(ctx, userID)
}
