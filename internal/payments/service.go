package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/springzlabs/springz-backend/internal/orders"
	"github.com/springzlabs/springz-backend/pkg/db/models"
	"github.com/springzlabs/springz-backend/pkg/enums"
	"github.com/springzlabs/springz-backend/pkg/logger"
	"github.com/springzlabs/springz-backend/pkg/outbox"
	"github.com/springzlabs/springz-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type orderRepository interface {
	FindByIDForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, trackingNumber *string) error
	UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status enums.PaymentStatus) error
	WithTx(tx *gorm.DB) orderRepository
}

// gormOrderRepo rebinds the concrete WithTx return type to orderRepository.
type gormOrderRepo struct{ *orders.Repository }

func (r gormOrderRepo) WithTx(tx *gorm.DB) orderRepository {
	return gormOrderRepo{r.Repository.WithTx(tx)}
}

// Service confirms payment capture for orders. It is driven by the payment
// worker, not by customer-facing controllers.
type Service interface {
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) error
	FailPayment(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	orders orderRepository
	tx     txRunner
	events outboxEmitter
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(ordersRepo *orders.Repository, tx txRunner, events outboxEmitter, logg *logger.Logger) (Service, error) {
	if ordersRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	return &service{orders: gormOrderRepo{ordersRepo}, tx: tx, events: events, logg: logg, now: time.Now}, nil
}

// ConfirmPayment marks a pending order as paid and confirms it. The guard on
// both statuses makes redelivered confirmations harmless: an order that is
// already paid, cancelled, or further along is left untouched.
func (s *service) ConfirmPayment(ctx context.Context, orderID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if order.PaymentStatus != enums.PaymentStatusPending || order.Status != enums.OrderStatusPending {
			if s.logg != nil {
				fields := map[string]any{
					"order_id":       order.ID.String(),
					"status":         order.Status,
					"payment_status": order.PaymentStatus,
				}
				s.logg.Info(s.logg.WithFields(ctx, fields), "payment confirmation skipped")
			}
			return nil
		}

		if err := repo.UpdatePaymentStatus(ctx, orderID, enums.PaymentStatusPaid); err != nil {
			return err
		}
		if err := repo.UpdateStatus(ctx, orderID, enums.OrderStatusConfirmed, nil); err != nil {
			return err
		}

		// The partial unique index on (event_type, aggregate_id) covers
		// payment_confirmed, so a redelivered confirmation never queues twice.
		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentConfirmed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.PaymentConfirmedEvent{
				OrderID:     order.ID,
				OrderNumber: order.Number,
				UserID:      order.UserID,
				AmountInINR: order.TotalInINR,
				PaidAt:      s.now(),
			},
		})
	})
}

// FailPayment records a failed capture. The order itself stays pending so
// the customer can retry; only terminal or already-paid orders are skipped.
func (s *service) FailPayment(ctx context.Context, orderID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		order, err := repo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.PaymentStatus != enums.PaymentStatusPending {
			return nil
		}
		return repo.UpdatePaymentStatus(ctx, orderID, enums.PaymentStatusFailed)
	})
}
