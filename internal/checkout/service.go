package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	addresspkg "github.com/springzlabs/springz-backend/internal/address"
	"github.com/springzlabs/springz-backend/internal/cart"
	"github.com/springzlabs/springz-backend/internal/catalog"
	"github.com/springzlabs/springz-backend/internal/orders"
	"github.com/springzlabs/springz-backend/pkg/config"
	"github.com/springzlabs/springz-backend/pkg/db/models"
	"github.com/springzlabs/springz-backend/pkg/enums"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
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

type cartRepository interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
	WithTx(tx *gorm.DB) cartRepository
}

type addressRepository interface {
	FindForUser(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
	Insert(ctx context.Context, address *models.Address) error
	WithTx(tx *gorm.DB) addressRepository
}

type stockReserver interface {
	DecrementStock(ctx context.Context, variantID uuid.UUID, quantity int) (bool, error)
	WithTx(tx *gorm.DB) stockReserver
}

type orderRepository interface {
	NextNumber(ctx context.Context) (string, error)
	Insert(ctx context.Context, order *models.Order) error
	FindForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	WithTx(tx *gorm.DB) orderRepository
}

// Service turns a cart into an order.
type Service interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input Input) (*orders.DTO, error)
}

type service struct {
	carts     cartRepository
	addresses addressRepository
	catalog   stockReserver
	orders    orderRepository
	tx        txRunner
	events    outboxEmitter
	shipping  config.ShippingConfig
	logg      *logger.Logger
}

func NewService(
	carts *cart.Repository,
	addresses *addresspkg.Repository,
	catalogRepo *catalog.Repository,
	ordersRepo *orders.Repository,
	tx txRunner,
	events outboxEmitter,
	shipping config.ShippingConfig,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address repository is required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter is required")
	}
	return &service{
		carts:     gormCartRepo{carts},
		addresses: gormAddressRepo{addresses},
		catalog:   gormStockReserver{catalogRepo},
		orders:    gormOrderRepo{ordersRepo},
		tx:        tx,
		events:    events,
		shipping:  shipping,
		logg:      logg,
	}, nil
}

// The gorm repositories return their own concrete type from WithTx; these
// adapters rebind that to the consumer-side interfaces above.
type gormCartRepo struct{ *cart.Repository }

func (r gormCartRepo) WithTx(tx *gorm.DB) cartRepository {
	return gormCartRepo{r.Repository.WithTx(tx)}
}

type gormAddressRepo struct{ *addresspkg.Repository }

func (r gormAddressRepo) WithTx(tx *gorm.DB) addressRepository {
	return gormAddressRepo{r.Repository.WithTx(tx)}
}

type gormStockReserver struct{ *catalog.Repository }

func (r gormStockReserver) WithTx(tx *gorm.DB) stockReserver {
	return gormStockReserver{r.Repository.WithTx(tx)}
}

type gormOrderRepo struct{ *orders.Repository }

func (r gormOrderRepo) WithTx(tx *gorm.DB) orderRepository {
	return gormOrderRepo{r.Repository.WithTx(tx)}
}

// PlaceOrder runs the whole checkout inside one transaction: cart load,
// address resolution, live price recompute, stock reservation, order
// insert with snapshot lines, cart clear, and the order_created outbox
// emit all commit or roll back together.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input Input) (*orders.DTO, error) {
	method, err := enums.ParseDeliveryMethod(input.DeliveryMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown delivery method").
			WithDetails(map[string]any{"deliveryMethod": input.DeliveryMethod})
	}

	var orderID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		addressRepo := s.addresses.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)
		orderRepo := s.orders.WithTx(tx)

		items, txErr := cartRepo.ListForUser(ctx, userID)
		if txErr != nil {
			return txErr
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		shippingAddress, txErr := s.resolveAddress(ctx, addressRepo, userID, input)
		if txErr != nil {
			return txErr
		}

		// Totals come from live variant prices, never from the client.
		subtotal := 0
		lines := make([]models.OrderItem, 0, len(items))
		for _, item := range items {
			if item.Variant == nil || item.Product == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "cart references a removed product")
			}
			if !item.Variant.IsActive || !item.Product.IsActive {
				return pkgerrors.New(pkgerrors.CodeConflict, "product is no longer available").
					WithDetails(map[string]any{"variantId": item.VariantID})
			}

			reserved, decErr := catalogRepo.DecrementStock(ctx, item.VariantID, item.Quantity)
			if decErr != nil {
				return decErr
			}
			if !reserved {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
					WithDetails(map[string]any{"variantId": item.VariantID, "requested": item.Quantity})
			}

			subtotal += item.Variant.PriceInINR * item.Quantity
			lines = append(lines, models.OrderItem{
				ProductID:  item.ProductID,
				VariantID:  item.VariantID,
				Quantity:   item.Quantity,
				PriceInINR: item.Variant.PriceInINR,
			})
		}

		shippingFee := s.shippingFee(subtotal, method)
		total := subtotal + shippingFee

		if input.ExpectedTotalInINR != nil && *input.ExpectedTotalInINR != total {
			return pkgerrors.New(pkgerrors.CodeValidation, "order total has changed").
				WithDetails(map[string]any{"expected": *input.ExpectedTotalInINR, "actual": total})
		}

		number, txErr := orderRepo.NextNumber(ctx)
		if txErr != nil {
			return txErr
		}

		order := &models.Order{
			Number:            number,
			UserID:            userID,
			Status:            enums.OrderStatusPending,
			PaymentStatus:     enums.PaymentStatusPending,
			DeliveryMethod:    method,
			SubtotalInINR:     subtotal,
			ShippingInINR:     shippingFee,
			TotalInINR:        total,
			ShippingAddressID: shippingAddress.ID,
			BillingAddressID:  shippingAddress.ID,
			Items:             lines,
		}
		if txErr := orderRepo.Insert(ctx, order); txErr != nil {
			return txErr
		}
		orderID = order.ID

		if txErr := cartRepo.DeleteAllForUser(ctx, userID); txErr != nil {
			return txErr
		}

		itemCount := 0
		for _, line := range lines {
			itemCount += line.Quantity
		}
		// The partial unique index on (event_type, aggregate_id) backs the
		// not-exists guard, so a retried checkout never queues a duplicate.
		return s.events.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: userID, Role: string(enums.UserRoleCustomer)},
			Version:       1,
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.Number,
				UserID:        userID,
				TotalInINR:    total,
				ItemCount:     itemCount,
				PaymentMethod: input.PaymentMethod,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	placed, err := s.orders.FindForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return orders.ToDTO(placed), nil
}

// resolveAddress returns the saved address referenced by AddressID, or
// inserts NewAddress on the fly. Inline addresses never become the default.
func (s *service) resolveAddress(ctx context.Context, repo addressRepository, userID uuid.UUID, input Input) (*models.Address, error) {
	switch {
	case input.AddressID != nil:
		return repo.FindForUser(ctx, userID, *input.AddressID)
	case input.NewAddress != nil:
		newAddress := *input.NewAddress
		newAddress.IsDefault = false
		model := newAddress.ToModel(userID)
		if err := repo.Insert(ctx, model); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}
}

func (s *service) shippingFee(subtotal int, method enums.DeliveryMethod) int {
	fee := s.shipping.FlatFeeInINR
	if s.shipping.FreeShippingThreshold > 0 && subtotal >= s.shipping.FreeShippingThreshold {
		fee = 0
	}
	if method == enums.DeliveryMethodExpress {
		fee += s.shipping.ExpressSurchargeInINR
	}
	return fee
}
