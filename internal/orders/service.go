package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/springzlabs/springz-backend/pkg/db/models"
	"github.com/springzlabs/springz-backend/pkg/enums"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
	"github.com/springzlabs/springz-backend/pkg/logger"
	"github.com/springzlabs/springz-backend/pkg/outbox"
	"github.com/springzlabs/springz-backend/pkg/outbox/payloads"
	"github.com/springzlabs/springz-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type orderRepository interface {
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, *pagination.Cursor, error)
	ListAll(ctx context.Context, filter AdminListFilter, params pagination.Params) ([]models.Order, *pagination.Cursor, error)
	FindForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByIDForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, trackingNumber *string) error
	WithTx(tx *gorm.DB) orderRepository
}

// gormOrderRepo rebinds the concrete WithTx return type to orderRepository.
type gormOrderRepo struct{ *Repository }

func (r gormOrderRepo) WithTx(tx *gorm.DB) orderRepository {
	return gormOrderRepo{r.Repository.WithTx(tx)}
}

// Service is the order read and fulfillment surface.
type Service interface {
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[DTO], error)
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*DTO, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID, input CancelInput) (*DTO, error)
	AdminList(ctx context.Context, filter AdminListFilter, params pagination.Params) (*pagination.Page[DTO], error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*DTO, error)
	AdminUpdateStatus(ctx context.Context, actorID, orderID uuid.UUID, input UpdateStatusInput) (*DTO, error)
}

type service struct {
	repo   orderRepository
	tx     txRunner
	events outboxEmitter
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(repo *Repository, tx txRunner, events outboxEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	return &service{repo: gormOrderRepo{repo}, tx: tx, events: events, logg: logg, now: time.Now}, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[DTO], error) {
	rows, next, err := s.repo.ListForUser(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	items := make([]DTO, 0, len(rows))
	for i := range rows {
		items = append(items, *ToDTO(&rows[i]))
	}
	return pagination.NewPage(items, next), nil
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*DTO, error) {
	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return ToDTO(order), nil
}

// Cancel moves a customer's own order to cancelled. Allowed from any
// non-terminal status; a second cancel of an already cancelled order is a
// no-op so retried requests stay safe.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID, input CancelInput) (*DTO, error) {
	if _, err := s.repo.FindForUser(ctx, userID, orderID); err != nil {
		return nil, err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, txErr := repo.FindByIDForUpdate(ctx, orderID)
		if txErr != nil {
			return txErr
		}

		if order.Status == enums.OrderStatusCancelled {
			return nil
		}
		if !order.Status.CanTransition(enums.OrderStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]any{"from": order.Status, "to": enums.OrderStatusCancelled})
		}

		if txErr := repo.UpdateStatus(ctx, orderID, enums.OrderStatusCancelled, nil); txErr != nil {
			return txErr
		}

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.UserRoleCustomer)},
			Version:       1,
			Data: payloads.OrderCancelledEvent{
				OrderID:     order.ID,
				OrderNumber: order.Number,
				UserID:      order.UserID,
				FromStatus:  order.Status,
				CancelledAt: s.now(),
				Reason:      input.Reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return s.GetForUser(ctx, userID, orderID)
}

func (s *service) AdminList(ctx context.Context, filter AdminListFilter, params pagination.Params) (*pagination.Page[DTO], error) {
	rows, next, err := s.repo.ListAll(ctx, filter, params)
	if err != nil {
		return nil, err
	}
	items := make([]DTO, 0, len(rows))
	for i := range rows {
		items = append(items, *ToDTO(&rows[i]))
	}
	return pagination.NewPage(items, next), nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*DTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return ToDTO(order), nil
}

// AdminUpdateStatus applies one fulfillment transition under a row lock.
// Re-asserting the current status is an idempotent no-op; any other
// non-adjacent move is rejected without mutating the order.
func (s *service) AdminUpdateStatus(ctx context.Context, actorID, orderID uuid.UUID, input UpdateStatusInput) (*DTO, error) {
	target, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": input.Status})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, txErr := repo.FindByIDForUpdate(ctx, orderID)
		if txErr != nil {
			return txErr
		}

		if order.Status == target {
			return nil
		}
		if !order.Status.CanTransition(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "illegal status transition").
				WithDetails(map[string]any{"from": order.Status, "to": target})
		}

		var tracking *string
		if target == enums.OrderStatusShipped {
			tracking = input.TrackingNumber
		}
		if txErr := repo.UpdateStatus(ctx, orderID, target, tracking); txErr != nil {
			return txErr
		}

		actor := &outbox.ActorRef{UserID: actorID, Role: string(enums.UserRoleAdmin)}
		if target == enums.OrderStatusCancelled {
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderCancelled,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Actor:         actor,
				Version:       1,
				Data: payloads.OrderCancelledEvent{
					OrderID:     order.ID,
					OrderNumber: order.Number,
					UserID:      order.UserID,
					FromStatus:  order.Status,
					CancelledAt: s.now(),
				},
			})
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Version:       1,
			Data: payloads.OrderStatusChangedEvent{
				OrderID:     order.ID,
				OrderNumber: order.Number,
				UserID:      order.UserID,
				FromStatus:  order.Status,
				ToStatus:    target,
				ChangedAt:   s.now(),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return s.AdminGet(ctx, orderID)
}
