package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/pkg/config"
	"github.com/springzlabs/springz-backend/pkg/db/models"
	"github.com/springzlabs/springz-backend/pkg/enums"
	"github.com/springzlabs/springz-backend/pkg/outbox"
	"github.com/springzlabs/springz-backend/pkg/outbox/payloads"
)

func testRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders"})
	if err != nil {
		t.Fatalf("NewEventRegistry: %v", err)
	}
	return reg
}

func envelopeJSON(t *testing.T, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	env := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}
	out, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return out
}

func TestResolveOrderCreated(t *testing.T) {
	reg := testRegistry(t)
	orderID := uuid.New()

	event := models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload: envelopeJSON(t, payloads.OrderCreatedEvent{
			OrderID:     orderID,
			OrderNumber: "ORD-042",
			UserID:      uuid.New(),
			TotalInINR:  32980,
			ItemCount:   2,
		}),
	}

	resolved, err := reg.Resolve(event)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Descriptor.Topic != "orders" {
		t.Fatalf("unexpected topic %q", resolved.Descriptor.Topic)
	}
	payload, ok := resolved.Payload.(*payloads.OrderCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", resolved.Payload)
	}
	if payload.OrderNumber != "ORD-042" || payload.TotalInINR != 32980 {
		t.Fatalf("payload fields not preserved: %+v", payload)
	}
}

func TestResolveUnsupportedEventType(t *testing.T) {
	reg := testRegistry(t)
	event := models.OutboxEvent{
		EventType:     enums.OutboxEventType("unknown_event"),
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
	}

	_, err := reg.Resolve(event)
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}

func TestResolveAggregateMismatch(t *testing.T) {
	reg := testRegistry(t)
	event := models.OutboxEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.OutboxAggregateType("user"),
		AggregateID:   uuid.New(),
		Payload:       envelopeJSON(t, payloads.OrderCreatedEvent{}),
	}

	_, err := reg.Resolve(event)
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}

func TestResolveMissingPayload(t *testing.T) {
	reg := testRegistry(t)
	env, err := json.Marshal(outbox.PayloadEnvelope{Version: 1, EventID: uuid.NewString(), Data: json.RawMessage("null")})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	event := models.OutboxEvent{
		EventType:     enums.EventPaymentConfirmed,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       env,
	}

	_, err = reg.Resolve(event)
	var nonRetry NonRetryableError
	if !errors.As(err, &nonRetry) {
		t.Fatalf("expected NonRetryableError, got %v", err)
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	if _, err := NewEventRegistry(config.PubSubConfig{}); err == nil {
		t.Fatal("expected error for missing orders topic")
	}
}
