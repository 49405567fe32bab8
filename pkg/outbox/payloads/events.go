package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/pkg/enums"
)

// OrderCreatedEvent signals a checkout that produced a new order.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID `json:"orderId"`
	OrderNumber   string    `json:"orderNumber"`
	UserID        uuid.UUID `json:"userId"`
	TotalInINR    int       `json:"totalInINR"`
	ItemCount     int       `json:"itemCount"`
	PaymentMethod string    `json:"paymentMethod,omitempty"`
}

// OrderStatusChangedEvent is emitted whenever an admin moves an order along
// the fulfillment workflow.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	UserID      uuid.UUID         `json:"userId"`
	FromStatus  enums.OrderStatus `json:"fromStatus"`
	ToStatus    enums.OrderStatus `json:"toStatus"`
	ChangedAt   time.Time         `json:"changedAt"`
}

// OrderCancelledEvent carries the payload when an order is cancelled from any
// non-terminal status.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	UserID      uuid.UUID         `json:"userId"`
	FromStatus  enums.OrderStatus `json:"fromStatus"`
	CancelledAt time.Time         `json:"cancelledAt"`
	Reason      string            `json:"reason,omitempty"`
}

// PaymentConfirmedEvent reports a successful payment capture for an order.
type PaymentConfirmedEvent struct {
	OrderID     uuid.UUID `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	UserID      uuid.UUID `json:"userId"`
	AmountInINR int       `json:"amountInINR"`
	PaidAt      time.Time `json:"paidAt"`
}
