package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/pkg/config"
	"github.com/springzlabs/springz-backend/pkg/enums"
	"github.com/springzlabs/springz-backend/pkg/logger"
	"github.com/springzlabs/springz-backend/pkg/metrics"
	"github.com/springzlabs/springz-backend/pkg/outbox"
	"github.com/springzlabs/springz-backend/pkg/outbox/payloads"
)

const consumerName = "payment-worker"

type subscriber interface {
	Receive(ctx context.Context, fn func(ctx context.Context, msg *gcppubsub.Message)) error
}

type idempotencyGuard interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type paymentConfirmer interface {
	ConfirmPayment(ctx context.Context, orderID uuid.UUID) error
}

type pinger interface {
	Ping(context.Context) error
}

type ServiceParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           pinger
	Redis        pinger
	PubSub       pinger
	Subscription subscriber
	Payments     paymentConfirmer
	Idempotency  idempotencyGuard
	Metrics      *metrics.WorkerMetrics
}

// Service consumes order events and simulates payment capture: every
// order_created event confirms the order's payment. Redeliveries are
// deduplicated in Redis and the order-status guard makes the confirm
// itself idempotent.
type Service struct {
	cfg           *config.Config
	logg          *logger.Logger
	db            pinger
	redis         pinger
	pubsub        pinger
	subscription  subscriber
	payments      paymentConfirmer
	idempotency   idempotencyGuard
	workerMetrics *metrics.WorkerMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	if params.PubSub == nil {
		return nil, errors.New("pubsub client is required")
	}
	if params.Subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if params.Payments == nil {
		return nil, errors.New("payment service is required")
	}
	if params.Idempotency == nil {
		return nil, errors.New("idempotency manager is required")
	}

	return &Service{
		cfg:           params.Config,
		logg:          params.Logger,
		db:            params.DB,
		redis:         params.Redis,
		pubsub:        params.PubSub,
		subscription:  params.Subscription,
		payments:      params.Payments,
		idempotency:   params.Idempotency,
		workerMetrics: params.Metrics,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := pingDependency(ctx, s.logg, "database", s.db.Ping); err != nil {
		return err
	}
	if err := pingDependency(ctx, s.logg, "redis", s.redis.Ping); err != nil {
		return err
	}
	return pingDependency(ctx, s.logg, "pubsub", s.pubsub.Ping)
}

func pingDependency(ctx context.Context, logg *logger.Logger, name string, fn func(context.Context) error) error {
	if err := fn(ctx); err != nil {
		logg.Error(ctx, fmt.Sprintf("%s ping failed", name), err)
		return fmt.Errorf("%s ping failed: %w", name, err)
	}
	return nil
}

// Run processes messages until the context is canceled or the subscription errors.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}
	s.logg.Info(ctx, "payment worker consuming order events")
	return s.subscription.Receive(ctx, func(ctx context.Context, msg *gcppubsub.Message) {
		result := s.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (s *Service) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	started := time.Now()
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": msg.Attributes["event_type"],
	}
	logCtx := s.logg.WithFields(ctx, fields)

	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	if eventType != enums.EventOrderCreated {
		s.logg.Info(logCtx, "skipping event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		s.logg.Error(logCtx, "failed to decode event envelope", err)
		s.observeFailure()
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		s.logg.Error(logCtx, "event id is not a uuid", err)
		s.observeFailure()
		return processResult{ack: true}
	}

	var event payloads.OrderCreatedEvent
	if err := json.Unmarshal(envelope.Data, &event); err != nil {
		s.logg.Error(logCtx, "failed to decode order_created payload", err)
		s.observeFailure()
		return processResult{ack: true}
	}

	fields["event_id"] = eventID.String()
	fields["order_id"] = event.OrderID.String()
	fields["order_number"] = event.OrderNumber
	logCtx = s.logg.WithFields(ctx, fields)

	processed, err := s.idempotency.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if processed {
		s.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := s.payments.ConfirmPayment(ctx, event.OrderID); err != nil {
		// Release the dedupe mark so a redelivery can retry.
		if delErr := s.idempotency.Delete(ctx, consumerName, eventID); delErr != nil {
			s.logg.Error(logCtx, "failed to release idempotency mark", delErr)
		}
		s.logg.Error(logCtx, "payment confirmation failed", err)
		s.observeFailure()
		return processResult{nack: true}
	}

	s.observeSuccess(time.Since(started))
	s.logg.Info(logCtx, "payment confirmed")
	return processResult{ack: true}
}

func (s *Service) observeSuccess(duration time.Duration) {
	if s.workerMetrics == nil {
		return
	}
	s.workerMetrics.ObserveDuration("payment_worker", duration)
	s.workerMetrics.IncSuccess("payment_worker")
}

func (s *Service) observeFailure() {
	if s.workerMetrics != nil {
		s.workerMetrics.IncFailure("payment_worker")
	}
}
