package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/springzlabs/springz-backend/pkg/db/models"
	"github.com/springzlabs/springz-backend/pkg/enums"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
	"github.com/springzlabs/springz-backend/pkg/outbox"
	"github.com/springzlabs/springz-backend/pkg/pagination"
)

type noopTx struct{}

func (noopTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type captureEmitter struct {
	events []outbox.DomainEvent
}

func (e *captureEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	e.events = append(e.events, event)
	return nil
}

type stubOrderRepo struct {
	order         *models.Order
	statusWrites  []enums.OrderStatus
	trackingWrite *string
}

func (s *stubOrderRepo) find(orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.order, nil
}

func (s *stubOrderRepo) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, *pagination.Cursor, error) {
	if s.order != nil && s.order.UserID == userID {
		return []models.Order{*s.order}, nil, nil
	}
	return nil, nil, nil
}

func (s *stubOrderRepo) ListAll(ctx context.Context, filter AdminListFilter, params pagination.Params) ([]models.Order, *pagination.Cursor, error) {
	if s.order != nil {
		return []models.Order{*s.order}, nil, nil
	}
	return nil, nil, nil
}

func (s *stubOrderRepo) FindForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.find(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.find(orderID)
}

func (s *stubOrderRepo) FindByIDForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.find(orderID)
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus, trackingNumber *string) error {
	s.statusWrites = append(s.statusWrites, status)
	s.trackingWrite = trackingNumber
	s.order.Status = status
	if trackingNumber != nil {
		s.order.TrackingNumber = trackingNumber
	}
	return nil
}

func (s *stubOrderRepo) WithTx(tx *gorm.DB) orderRepository { return s }

func seedOrder(status enums.OrderStatus) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		Number:        "ORD-001",
		UserID:        uuid.New(),
		Status:        status,
		PaymentStatus: enums.PaymentStatusPending,
		TotalInINR:    2998,
	}
}

func newOrderFixture(order *models.Order) (*service, *stubOrderRepo, *captureEmitter) {
	repo := &stubOrderRepo{order: order}
	emitter := &captureEmitter{}
	svc := &service{
		repo:   repo,
		tx:     noopTx{},
		events: emitter,
		now:    func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) },
	}
	return svc, repo, emitter
}

func TestAdminUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newOrderFixture(seedOrder(enums.OrderStatusPending))

	_, err := svc.AdminUpdateStatus(context.Background(), uuid.New(), uuid.New(), UpdateStatusInput{
		Status: "teleported",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestAdminUpdateStatusSameStatusIsNoOp(t *testing.T) {
	order := seedOrder(enums.OrderStatusProcessing)
	svc, repo, emitter := newOrderFixture(order)

	dto, err := svc.AdminUpdateStatus(context.Background(), uuid.New(), order.ID, UpdateStatusInput{
		Status: "processing",
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusProcessing, dto.Status)
	require.Empty(t, repo.statusWrites, "re-asserting the current status must not write")
	require.Empty(t, emitter.events)
}

func TestAdminUpdateStatusRejectsSkippedTransition(t *testing.T) {
	order := seedOrder(enums.OrderStatusPending)
	svc, repo, _ := newOrderFixture(order)

	_, err := svc.AdminUpdateStatus(context.Background(), uuid.New(), order.ID, UpdateStatusInput{
		Status: "delivered",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	require.Empty(t, repo.statusWrites)
	require.Equal(t, enums.OrderStatusPending, order.Status)
}

func TestAdminUpdateStatusShipsWithTracking(t *testing.T) {
	order := seedOrder(enums.OrderStatusProcessing)
	svc, repo, emitter := newOrderFixture(order)

	tracking := "AWB123456"
	dto, err := svc.AdminUpdateStatus(context.Background(), uuid.New(), order.ID, UpdateStatusInput{
		Status:         "shipped",
		TrackingNumber: &tracking,
	})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusShipped, dto.Status)
	require.Equal(t, []enums.OrderStatus{enums.OrderStatusShipped}, repo.statusWrites)
	require.NotNil(t, repo.trackingWrite)
	require.Equal(t, tracking, *repo.trackingWrite)

	require.Len(t, emitter.events, 1)
	require.Equal(t, enums.EventOrderStatusChanged, emitter.events[0].EventType)
	require.Equal(t, order.ID, emitter.events[0].AggregateID)
}

func TestAdminUpdateStatusIgnoresTrackingOutsideShipped(t *testing.T) {
	order := seedOrder(enums.OrderStatusPending)
	svc, repo, _ := newOrderFixture(order)

	tracking := "AWB123456"
	_, err := svc.AdminUpdateStatus(context.Background(), uuid.New(), order.ID, UpdateStatusInput{
		Status:         "confirmed",
		TrackingNumber: &tracking,
	})
	require.NoError(t, err)
	require.Nil(t, repo.trackingWrite)
}

func TestCancelEmitsOrderCancelled(t *testing.T) {
	order := seedOrder(enums.OrderStatusConfirmed)
	svc, repo, emitter := newOrderFixture(order)

	dto, err := svc.Cancel(context.Background(), order.UserID, order.ID, CancelInput{Reason: "changed my mind"})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, dto.Status)
	require.Equal(t, []enums.OrderStatus{enums.OrderStatusCancelled}, repo.statusWrites)
	require.Len(t, emitter.events, 1)
	require.Equal(t, enums.EventOrderCancelled, emitter.events[0].EventType)
}

func TestCancelOfCancelledOrderIsNoOp(t *testing.T) {
	order := seedOrder(enums.OrderStatusCancelled)
	svc, repo, emitter := newOrderFixture(order)

	dto, err := svc.Cancel(context.Background(), order.UserID, order.ID, CancelInput{})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, dto.Status)
	require.Empty(t, repo.statusWrites)
	require.Empty(t, emitter.events)
}

func TestCancelRejectsDeliveredOrder(t *testing.T) {
	order := seedOrder(enums.OrderStatusDelivered)
	svc, _, _ := newOrderFixture(order)

	_, err := svc.Cancel(context.Background(), order.UserID, order.ID, CancelInput{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}
