package fsm

import "testing"

func TestCanTransition(t *testing.T) {
	if !CanTransition(StatusPendingPayment, StatusPaid) {
		t.Fatal("expected pending_payment -> paid to be allowed")
	}
	if !CanTransition(StatusPendingPayment, StatusPaymentExpired) {
		t.Fatal("expected pending_payment -> payment_expired to be allowed")
	}
	if !CanTransition(StatusPaid, StatusProcessing) {
		t.Fatal("expected paid -> processing to be allowed")
	}
	if !CanTransition(StatusProcessing, StatusReadyForPickup) {
		t.Fatal("expected processing -> ready_for_pickup to be allowed")
	}
	if !CanTransition(StatusReadyForPickup, StatusReleased) {
		t.Fatal("expected ready_for_pickup -> released to be allowed")
	}
	if CanTransition(StatusProcessing, StatusReleased) {
		t.Fatal("unexpected processing -> released allowed, must pass through ready_for_pickup")
	}
	if CanTransition(StatusReleased, StatusPaid) {
		t.Fatal("unexpected released -> paid allowed")
	}
	if CanTransition(StatusPaymentExpired, StatusProcessing) {
		t.Fatal("unexpected payment_expired -> processing allowed")
	}
}

func TestCancellationBranches(t *testing.T) {
	for _, from := range []string{StatusPendingPayment, StatusPaid, StatusProcessing, StatusReadyForPickup, StatusPaymentExpired} {
		if !CanTransition(from, StatusCancelled) {
			t.Fatalf("expected %s -> cancelled to be allowed", from)
		}
	}
	if CanTransition(StatusReleased, StatusCancelled) {
		t.Fatal("unexpected released -> cancelled allowed")
	}
	if CanTransition(StatusCancelled, StatusPendingPayment) {
		t.Fatal("cancelled must be terminal")
	}
}

func TestIsTerminal(t *testing.T) {
	if !IsTerminal(StatusReleased) || !IsTerminal(StatusCancelled) {
		t.Fatal("released and cancelled must be terminal")
	}
	if IsTerminal(StatusPendingPayment) || IsTerminal(StatusPaid) {
		t.Fatal("active statuses must not be terminal")
	}
}
