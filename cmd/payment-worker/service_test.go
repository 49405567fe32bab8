package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/pkg/config"
	"github.com/springzlabs/springz-backend/pkg/enums"
	"github.com/springzlabs/springz-backend/pkg/logger"
	"github.com/springzlabs/springz-backend/pkg/outbox"
	"github.com/springzlabs/springz-backend/pkg/outbox/payloads"
)

type stubConfirmer struct {
	calls []uuid.UUID
	err   error
}

func (s *stubConfirmer) ConfirmPayment(ctx context.Context, orderID uuid.UUID) error {
	s.calls = append(s.calls, orderID)
	return s.err
}

type stubGuard struct {
	processed bool
	checkErr  error
	deleted   []uuid.UUID
}

func (s *stubGuard) CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error) {
	return s.processed, s.checkErr
}

func (s *stubGuard) Delete(ctx context.Context, consumer string, eventID uuid.UUID) error {
	s.deleted = append(s.deleted, eventID)
	return nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

type noopSubscriber struct{}

func (noopSubscriber) Receive(ctx context.Context, fn func(context.Context, *gcppubsub.Message)) error {
	return nil
}

func newWorker(t *testing.T, confirmer *stubConfirmer, guard *stubGuard) *Service {
	t.Helper()
	logg := logger.New(logger.Options{
		ServiceName: "payment-worker-test",
		Output:      io.Discard,
	})
	service, err := NewService(ServiceParams{
		Config:       &config.Config{},
		Logger:       logg,
		DB:           okPinger{},
		Redis:        okPinger{},
		PubSub:       okPinger{},
		Subscription: noopSubscriber{},
		Payments:     confirmer,
		Idempotency:  guard,
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func buildOrderCreatedMessage(tb testing.TB, eventID uuid.UUID, orderID uuid.UUID) *gcppubsub.Message {
	tb.Helper()
	data, err := json.Marshal(payloads.OrderCreatedEvent{
		OrderID:     orderID,
		OrderNumber: "ORD-001",
		UserID:      uuid.New(),
		TotalInINR:  2499,
		ItemCount:   2,
	})
	if err != nil {
		tb.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    eventID.String(),
		OccurredAt: time.Now(),
		Data:       data,
	})
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return &gcppubsub.Message{
		Data: envelope,
		Attributes: map[string]string{
			"event_id":   eventID.String(),
			"event_type": string(enums.EventOrderCreated),
		},
	}
}

func TestProcessConfirmsPaymentForOrderCreated(t *testing.T) {
	t.Parallel()

	confirmer := &stubConfirmer{}
	guard := &stubGuard{}
	service := newWorker(t, confirmer, guard)
	orderID := uuid.New()

	result := service.process(context.Background(), buildOrderCreatedMessage(t, uuid.New(), orderID))
	if !result.ack || result.nack {
		t.Fatalf("expected ack result")
	}
	if len(confirmer.calls) != 1 || confirmer.calls[0] != orderID {
		t.Fatalf("expected confirm called with order id, got %v", confirmer.calls)
	}
}

func TestProcessSkipsOtherEventTypes(t *testing.T) {
	t.Parallel()

	confirmer := &stubConfirmer{}
	service := newWorker(t, confirmer, &stubGuard{})

	msg := buildOrderCreatedMessage(t, uuid.New(), uuid.New())
	msg.Attributes["event_type"] = string(enums.EventOrderCancelled)

	result := service.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected ack for skipped event")
	}
	if len(confirmer.calls) != 0 {
		t.Fatalf("expected no confirm calls, got %d", len(confirmer.calls))
	}
}

func TestProcessSkipsAlreadyProcessedEvent(t *testing.T) {
	t.Parallel()

	confirmer := &stubConfirmer{}
	guard := &stubGuard{processed: true}
	service := newWorker(t, confirmer, guard)

	result := service.process(context.Background(), buildOrderCreatedMessage(t, uuid.New(), uuid.New()))
	if !result.ack {
		t.Fatalf("expected ack for duplicate event")
	}
	if len(confirmer.calls) != 0 {
		t.Fatalf("expected no confirm calls, got %d", len(confirmer.calls))
	}
}

func TestProcessNacksAndReleasesMarkOnConfirmError(t *testing.T) {
	t.Parallel()

	confirmer := &stubConfirmer{err: errors.New("deadlock")}
	guard := &stubGuard{}
	service := newWorker(t, confirmer, guard)
	eventID := uuid.New()

	result := service.process(context.Background(), buildOrderCreatedMessage(t, eventID, uuid.New()))
	if !result.nack {
		t.Fatalf("expected nack on confirm failure")
	}
	if len(guard.deleted) != 1 || guard.deleted[0] != eventID {
		t.Fatalf("expected idempotency mark released for %s, got %v", eventID, guard.deleted)
	}
}

func TestProcessAcksMalformedEnvelope(t *testing.T) {
	t.Parallel()

	confirmer := &stubConfirmer{}
	service := newWorker(t, confirmer, &stubGuard{})

	msg := &gcppubsub.Message{
		Data:       []byte("{not json"),
		Attributes: map[string]string{"event_type": string(enums.EventOrderCreated)},
	}
	result := service.process(context.Background(), msg)
	if !result.ack || result.nack {
		t.Fatalf("expected malformed envelope to be acked")
	}
	if len(confirmer.calls) != 0 {
		t.Fatalf("expected no confirm calls, got %d", len(confirmer.calls))
	}
}
