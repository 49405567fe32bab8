package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	addresspkg "github.com/springzlabs/springz-backend/internal/address"
	"github.com/springzlabs/springz-backend/pkg/config"
	"github.com/springzlabs/springz-backend/pkg/db/models"
	"github.com/springzlabs/springz-backend/pkg/enums"
	pkgerrors "github.com/springzlabs/springz-backend/pkg/errors"
	"github.com/springzlabs/springz-backend/pkg/outbox"
)

type noopTx struct{}

func (noopTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type captureEmitter struct {
	events []outbox.DomainEvent
}

func (e *captureEmitter) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	e.events = append(e.events, event)
	return nil
}

type stubCarts struct {
	items   []models.CartItem
	cleared bool
}

func (s *stubCarts) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return s.items, nil
}

func (s *stubCarts) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	s.cleared = true
	return nil
}

func (s *stubCarts) WithTx(tx *gorm.DB) cartRepository { return s }

type stubAddresses struct {
	saved map[uuid.UUID]*models.Address
}

func (s *stubAddresses) FindForUser(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	if address, ok := s.saved[addressID]; ok && address.UserID == userID {
		return address, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
}

func (s *stubAddresses) Insert(ctx context.Context, address *models.Address) error {
	address.ID = uuid.New()
	return nil
}

func (s *stubAddresses) WithTx(tx *gorm.DB) addressRepository { return s }

type stubStock struct {
	stock map[uuid.UUID]int
}

func (s *stubStock) DecrementStock(ctx context.Context, variantID uuid.UUID, quantity int) (bool, error) {
	if s.stock[variantID] < quantity {
		return false, nil
	}
	s.stock[variantID] -= quantity
	return true, nil
}

func (s *stubStock) WithTx(tx *gorm.DB) stockReserver { return s }

type stubOrders struct {
	inserted *models.Order
}

func (s *stubOrders) NextNumber(ctx context.Context) (string, error) {
	return "ORD-001", nil
}

func (s *stubOrders) Insert(ctx context.Context, order *models.Order) error {
	order.ID = uuid.New()
	s.inserted = order
	return nil
}

func (s *stubOrders) FindForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if s.inserted == nil || s.inserted.ID != orderID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return s.inserted, nil
}

func (s *stubOrders) WithTx(tx *gorm.DB) orderRepository { return s }

func cartLine(price, qty, stock int) (models.CartItem, uuid.UUID) {
	productID := uuid.New()
	variantID := uuid.New()
	item := models.CartItem{
		ID:        uuid.New(),
		ProductID: productID,
		VariantID: variantID,
		Quantity:  qty,
		Product:   &models.Product{ID: productID, Name: "Whey Protein", IsActive: true},
		Variant: &models.Variant{
			ID:         variantID,
			ProductID:  productID,
			Size:       "1kg",
			PriceInINR: price,
			Stock:      stock,
			IsActive:   true,
		},
	}
	return item, variantID
}

func testShipping() config.ShippingConfig {
	return config.ShippingConfig{
		FlatFeeInINR:          49,
		FreeShippingThreshold: 999,
		ExpressSurchargeInINR: 99,
	}
}

type checkoutFixture struct {
	svc     *service
	carts   *stubCarts
	stock   *stubStock
	orders  *stubOrders
	emitter *captureEmitter
}

func newCheckoutFixture(shipping config.ShippingConfig, items []models.CartItem, stock map[uuid.UUID]int) *checkoutFixture {
	carts := &stubCarts{items: items}
	reserver := &stubStock{stock: stock}
	ordersRepo := &stubOrders{}
	emitter := &captureEmitter{}
	return &checkoutFixture{
		svc: &service{
			carts:     carts,
			addresses: &stubAddresses{},
			catalog:   reserver,
			orders:    ordersRepo,
			tx:        noopTx{},
			events:    emitter,
			shipping:  shipping,
		},
		carts:   carts,
		stock:   reserver,
		orders:  ordersRepo,
		emitter: emitter,
	}
}

func newAddressInput() *addresspkg.Input {
	return &addresspkg.Input{
		Name:       "Asha Rao",
		Phone:      "+919900112233",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
	}
}

func TestPlaceOrderComputesTotalsAndClearsCart(t *testing.T) {
	item, variantID := cartLine(1499, 2, 10)
	fix := newCheckoutFixture(testShipping(), []models.CartItem{item}, map[uuid.UUID]int{variantID: 10})
	userID := uuid.New()

	dto, err := fix.svc.PlaceOrder(context.Background(), userID, Input{
		DeliveryMethod: "standard",
		NewAddress:     newAddressInput(),
	})
	require.NoError(t, err)

	// 2×1499 clears the free-shipping threshold.
	require.Equal(t, 2998, dto.SubtotalInINR)
	require.Equal(t, 0, dto.ShippingInINR)
	require.Equal(t, dto.SubtotalInINR+dto.ShippingInINR, dto.TotalInINR)
	require.Equal(t, enums.OrderStatusPending, dto.Status)
	require.Equal(t, enums.PaymentStatusPending, dto.PaymentStatus)

	// One line, snapshotting the live price at purchase time.
	require.Len(t, fix.orders.inserted.Items, 1)
	require.Equal(t, 1499, fix.orders.inserted.Items[0].PriceInINR)
	require.Equal(t, 2, fix.orders.inserted.Items[0].Quantity)

	require.True(t, fix.carts.cleared, "cart must be emptied inside the checkout transaction")
	require.Equal(t, 8, fix.stock.stock[variantID])

	require.Len(t, fix.emitter.events, 1)
	require.Equal(t, enums.EventOrderCreated, fix.emitter.events[0].EventType)
	require.Equal(t, fix.orders.inserted.ID, fix.emitter.events[0].AggregateID)
}

func TestPlaceOrderAddsFlatFeeBelowThreshold(t *testing.T) {
	item, variantID := cartLine(400, 1, 5)
	fix := newCheckoutFixture(testShipping(), []models.CartItem{item}, map[uuid.UUID]int{variantID: 5})

	dto, err := fix.svc.PlaceOrder(context.Background(), uuid.New(), Input{
		DeliveryMethod: "standard",
		NewAddress:     newAddressInput(),
	})
	require.NoError(t, err)
	require.Equal(t, 400, dto.SubtotalInINR)
	require.Equal(t, 49, dto.ShippingInINR)
	require.Equal(t, 449, dto.TotalInINR)
}

func TestPlaceOrderRejectsInsufficientStock(t *testing.T) {
	item, variantID := cartLine(1499, 3, 1)
	fix := newCheckoutFixture(testShipping(), []models.CartItem{item}, map[uuid.UUID]int{variantID: 1})

	_, err := fix.svc.PlaceOrder(context.Background(), uuid.New(), Input{
		DeliveryMethod: "standard",
		NewAddress:     newAddressInput(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeConflict, typed.Code())
	require.Equal(t, "insufficient stock", typed.Message())
	require.Empty(t, fix.emitter.events)
}

func TestPlaceOrderRejectsDriftedExpectedTotal(t *testing.T) {
	item, variantID := cartLine(400, 1, 5)
	fix := newCheckoutFixture(testShipping(), []models.CartItem{item}, map[uuid.UUID]int{variantID: 5})

	stale := 999
	_, err := fix.svc.PlaceOrder(context.Background(), uuid.New(), Input{
		DeliveryMethod:     "standard",
		NewAddress:         newAddressInput(),
		ExpectedTotalInINR: &stale,
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "order total has changed", typed.Message())
}

func TestPlaceOrderRejectsEmptyCart(t *testing.T) {
	fix := newCheckoutFixture(testShipping(), nil, map[uuid.UUID]int{})

	_, err := fix.svc.PlaceOrder(context.Background(), uuid.New(), Input{
		DeliveryMethod: "standard",
		NewAddress:     newAddressInput(),
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestShippingFee(t *testing.T) {
	fix := newCheckoutFixture(testShipping(), nil, nil)

	require.Equal(t, 49, fix.svc.shippingFee(500, enums.DeliveryMethodStandard))
	require.Equal(t, 0, fix.svc.shippingFee(999, enums.DeliveryMethodStandard))
	require.Equal(t, 0, fix.svc.shippingFee(1500, enums.DeliveryMethodStandard))
	// Express surcharge applies even above the free threshold.
	require.Equal(t, 99, fix.svc.shippingFee(1500, enums.DeliveryMethodExpress))
	require.Equal(t, 148, fix.svc.shippingFee(500, enums.DeliveryMethodExpress))
}

func TestShippingFeeWithoutFreeThreshold(t *testing.T) {
	fix := newCheckoutFixture(config.ShippingConfig{FlatFeeInINR: 49}, nil, nil)

	require.Equal(t, 49, fix.svc.shippingFee(100000, enums.DeliveryMethodStandard))
}

func TestPlaceOrderRejectsUnknownDeliveryMethod(t *testing.T) {
	fix := newCheckoutFixture(testShipping(), nil, nil)

	_, err := fix.svc.PlaceOrder(context.Background(), uuid.New(), Input{DeliveryMethod: "drone"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestResolveAddressRequiresAddress(t *testing.T) {
	fix := newCheckoutFixture(testShipping(), nil, nil)

	_, err := fix.svc.resolveAddress(context.Background(), &stubAddresses{}, uuid.New(), Input{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, "address is required", typed.Message())
}
