package checkout

import (
	"github.com/google/uuid"

	"github.com/springzlabs/springz-backend/internal/address"
)

// Input is the checkout payload. Exactly one of AddressID or NewAddress must
// be provided; ExpectedTotalInINR lets the client assert the total it showed
// the customer so silent price changes fail loudly.
type Input struct {
	AddressID          *uuid.UUID     `json:"addressId,omitempty"`
	NewAddress         *address.Input `json:"newAddress,omitempty"`
	DeliveryMethod     string         `json:"deliveryMethod" validate:"required"`
	PaymentMethod      string         `json:"paymentMethod,omitempty" validate:"omitempty,max=40"`
	ExpectedTotalInINR *int           `json:"expectedTotalInINR,omitempty" validate:"omitempty,gt=0"`
}
