package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"pending", "confirmed", "processing", "shipped", "delivered", "cancelled"} {
		status, err := ParseOrderStatus(value)
		if err != nil {
			t.Fatalf("ParseOrderStatus(%q) returned error: %v", value, err)
		}
		if status.String() != value {
			t.Fatalf("ParseOrderStatus(%q) = %q", value, status)
		}
	}

	if _, err := ParseOrderStatus("PENDING"); err == nil {
		t.Fatal("expected error for upper-cased status")
	}
	if _, err := ParseOrderStatus("returned"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestOrderStatusCanTransition(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusConfirmed},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusConfirmed, OrderStatusProcessing},
		{OrderStatusConfirmed, OrderStatusCancelled},
		{OrderStatusProcessing, OrderStatusShipped},
		{OrderStatusProcessing, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
		{OrderStatusShipped, OrderStatusCancelled},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct {
		from, to OrderStatus
	}{
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusConfirmed, OrderStatusPending},
		{OrderStatusShipped, OrderStatusProcessing},
		{OrderStatusDelivered, OrderStatusCancelled},
		{OrderStatusCancelled, OrderStatusPending},
		{OrderStatusPending, OrderStatusPending},
	}
	for _, tc := range denied {
		if tc.from.CanTransition(tc.to) {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	t.Parallel()

	if !OrderStatusDelivered.IsTerminal() {
		t.Fatal("delivered should be terminal")
	}
	if !OrderStatusCancelled.IsTerminal() {
		t.Fatal("cancelled should be terminal")
	}
	for _, status := range []OrderStatus{OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusShipped} {
		if status.IsTerminal() {
			t.Fatalf("%s should not be terminal", status)
		}
	}
}

func TestParsePaymentStatus(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"pending", "paid", "failed"} {
		if _, err := ParsePaymentStatus(value); err != nil {
			t.Fatalf("ParsePaymentStatus(%q) returned error: %v", value, err)
		}
	}
	if _, err := ParsePaymentStatus("refunded"); err == nil {
		t.Fatal("expected error for unknown payment status")
	}
}
