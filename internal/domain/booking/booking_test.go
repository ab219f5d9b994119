package booking

import (
	"errors"
	"testing"
	"time"

	"wayfarer/internal/domain/catalog"
)

func validTrip() TripDetails {
	return TripDetails{
		TripID:    "trip-1",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC),
		Travelers: 2,
	}
}

func TestNewBookingValidation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	_, err := NewBooking(CreateParams{ID: "b1", UserID: "u1", TotalPriceCents: 100, CreatedAt: now})
	if !errors.Is(err, ErrDetailsRequired) {
		t.Fatalf("expected ErrDetailsRequired, got %v", err)
	}

	_, err = NewBooking(CreateParams{ID: "b1", UserID: "u1", Details: TripDetails{}, TotalPriceCents: 100, CreatedAt: now})
	if !errors.Is(err, ErrItemRefRequired) {
		t.Fatalf("expected ErrItemRefRequired for empty trip id, got %v", err)
	}

	_, err = NewBooking(CreateParams{ID: "b1", Details: validTrip(), TotalPriceCents: 100, CreatedAt: now})
	if !errors.Is(err, ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired, got %v", err)
	}

	_, err = NewBooking(CreateParams{ID: "b1", UserID: "u1", Details: validTrip(), TotalPriceCents: -5, CreatedAt: now})
	if !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}

	_, err = NewBooking(CreateParams{ID: "b1", UserID: "u1", Details: validTrip(), TotalPriceCents: 100, Status: "Teleported", CreatedAt: now})
	if !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestNewBookingDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b, err := NewBooking(CreateParams{ID: "b1", UserID: "u1", Details: validTrip(), TotalPriceCents: 250000, CreatedAt: now})
	if err != nil {
		t.Fatalf("NewBooking returned error: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("expected Pending status, got %s", b.Status)
	}
	if b.Payment.Status != PaymentPending {
		t.Fatalf("expected pending payment, got %s", b.Payment.Status)
	}
	if b.Kind() != catalog.KindTrip {
		t.Fatalf("expected trip kind, got %s", b.Kind())
	}
	if got := b.ItemRef(); got.ItemID != "trip-1" {
		t.Fatalf("expected item ref trip-1, got %s", got.ItemID)
	}
	if len(b.PendingEvents()) != 1 {
		t.Fatalf("expected one recorded event, got %d", len(b.PendingEvents()))
	}
}

func TestDetailsKindAgreement(t *testing.T) {
	cases := []struct {
		details Details
		kind    catalog.Kind
		itemID  catalog.ItemID
	}{
		{validTrip(), catalog.KindTrip, "trip-1"},
		{ReservationDetails{RestaurantID: "r-1", People: 4}, catalog.KindRestaurant, "r-1"},
		{RentalDetails{RentalID: "car-1"}, catalog.KindRental, "car-1"},
		{ActivityDetails{ActivityID: "act-1", Participants: 3}, catalog.KindActivity, "act-1"},
		{StayDetails{StayID: "stay-1", Guests: 2}, catalog.KindStay, "stay-1"},
	}
	for _, tc := range cases {
		if tc.details.Kind() != tc.kind {
			t.Fatalf("expected kind %s, got %s", tc.kind, tc.details.Kind())
		}
		if tc.details.ItemID() != tc.itemID {
			t.Fatalf("expected item id %s, got %s", tc.itemID, tc.details.ItemID())
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	newPending := func(t *testing.T) *Booking {
		t.Helper()
		b, err := NewBooking(CreateParams{ID: "b1", UserID: "u1", Details: validTrip(), TotalPriceCents: 100, CreatedAt: now})
		if err != nil {
			t.Fatalf("NewBooking returned error: %v", err)
		}
		b.ClearEvents()
		return b
	}

	t.Run("confirm from pending", func(t *testing.T) {
		b := newPending(t)
		if err := b.Confirm("card", "TXN-1", now); err != nil {
			t.Fatalf("Confirm returned error: %v", err)
		}
		if b.Status != StatusConfirmed || b.Payment.Status != PaymentPaid {
			t.Fatalf("expected confirmed/paid, got %s/%s", b.Status, b.Payment.Status)
		}
		if b.Payment.TransactionID != "TXN-1" {
			t.Fatalf("expected transaction id, got %q", b.Payment.TransactionID)
		}
		if err := b.Confirm("card", "TXN-2", now); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition on double confirm, got %v", err)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		b := newPending(t)
		if err := b.Cancel("changed plans", now); err != nil {
			t.Fatalf("Cancel returned error: %v", err)
		}
		if err := b.Cancel("again", now); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition on cancel of cancelled, got %v", err)
		}
	})

	t.Run("complete requires confirmed", func(t *testing.T) {
		b := newPending(t)
		if err := b.Complete(now); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition completing pending, got %v", err)
		}
		if err := b.Confirm("card", "TXN-1", now); err != nil {
			t.Fatalf("Confirm returned error: %v", err)
		}
		if err := b.Complete(now); err != nil {
			t.Fatalf("Complete returned error: %v", err)
		}
	})

	t.Run("refund from completed", func(t *testing.T) {
		b := newPending(t)
		if err := b.Refund(now); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("expected ErrInvalidTransition refunding pending, got %v", err)
		}
		if err := b.Confirm("card", "TXN-1", now); err != nil {
			t.Fatalf("Confirm returned error: %v", err)
		}
		if err := b.Complete(now); err != nil {
			t.Fatalf("Complete returned error: %v", err)
		}
		if err := b.Refund(now); err != nil {
			t.Fatalf("Refund returned error: %v", err)
		}
		if b.Payment.Status != PaymentRefunded {
			t.Fatalf("expected refunded payment, got %s", b.Payment.Status)
		}
	})

	t.Run("force status", func(t *testing.T) {
		b := newPending(t)
		if err := b.ForceStatus("completed", now); err != nil {
			t.Fatalf("ForceStatus returned error: %v", err)
		}
		if b.Status != StatusCompleted {
			t.Fatalf("expected Completed, got %s", b.Status)
		}
		if err := b.ForceStatus("bogus", now); !errors.Is(err, ErrUnknownStatus) {
			t.Fatalf("expected ErrUnknownStatus, got %v", err)
		}
	})
}

func TestParseStatus(t *testing.T) {
	for raw, want := range map[string]Status{
		"pending":   StatusPending,
		"Confirmed": StatusConfirmed,
		"CANCELLED": StatusCancelled,
		"completed": StatusCompleted,
		"refunded":  StatusRefunded,
	} {
		got, err := ParseStatus(raw)
		if err != nil {
			t.Fatalf("ParseStatus(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseStatus(%q) = %s, want %s", raw, got, want)
		}
	}
	if _, err := ParseStatus("held"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}
