package dto

import (
	"errors"
	"testing"

	domainbooking "wayfarer/internal/domain/booking"
	domaincatalog "wayfarer/internal/domain/catalog"
)

func TestBuildDetailsPerKind(t *testing.T) {
	cases := []struct {
		request BookingDetailsRequest
		want    domaincatalog.Kind
	}{
		{BookingDetailsRequest{BookingType: "Trip", Trip: &TripDetails{TripID: "t-1"}}, domaincatalog.KindTrip},
		{BookingDetailsRequest{BookingType: "restaurant", Reservation: &ReservationDetails{RestaurantID: "r-1"}}, domaincatalog.KindRestaurant},
		{BookingDetailsRequest{BookingType: "rental", Rental: &RentalDetails{RentalID: "c-1"}}, domaincatalog.KindRental},
		{BookingDetailsRequest{BookingType: "activity", Activity: &ActivityDetails{ActivityID: "a-1"}}, domaincatalog.KindActivity},
		{BookingDetailsRequest{BookingType: "STAY", Stay: &StayDetails{StayID: "s-1"}}, domaincatalog.KindStay},
	}
	for _, tc := range cases {
		details, err := tc.request.BuildDetails()
		if err != nil {
			t.Fatalf("BuildDetails(%s) returned error: %v", tc.request.BookingType, err)
		}
		if details.Kind() != tc.want {
			t.Fatalf("BuildDetails(%s) built kind %s", tc.request.BookingType, details.Kind())
		}
	}
}

func TestBuildDetailsMismatch(t *testing.T) {
	// Tag without its block.
	missing := BookingDetailsRequest{BookingType: "trip", Stay: &StayDetails{StayID: "s-1"}}
	if _, err := missing.BuildDetails(); !errors.Is(err, ErrDetailsMismatch) {
		t.Fatalf("expected ErrDetailsMismatch for missing block, got %v", err)
	}

	// Two blocks is ambiguous even when one matches the tag.
	ambiguous := BookingDetailsRequest{
		BookingType: "trip",
		Trip:        &TripDetails{TripID: "t-1"},
		Stay:        &StayDetails{StayID: "s-1"},
	}
	if _, err := ambiguous.BuildDetails(); !errors.Is(err, ErrDetailsMismatch) {
		t.Fatalf("expected ErrDetailsMismatch for ambiguous request, got %v", err)
	}

	unknown := BookingDetailsRequest{BookingType: "museum"}
	if _, err := unknown.BuildDetails(); !errors.Is(err, domaincatalog.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestMapBookingSetsOneBlock(t *testing.T) {
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:              "b-1",
		UserID:          "u1",
		Details:         domainbooking.StayDetails{StayID: "s-1", Guests: 2},
		TotalPriceCents: 50000,
	})
	if err != nil {
		t.Fatalf("NewBooking returned error: %v", err)
	}

	out := MapBooking(b)
	if out.BookingType != "Stay" {
		t.Fatalf("expected booking_type Stay, got %q", out.BookingType)
	}
	if out.Stay == nil || out.Stay.Guests != 2 {
		t.Fatalf("stay block not mapped: %+v", out.Stay)
	}
	if out.Trip != nil || out.Reservation != nil || out.Rental != nil || out.Activity != nil {
		t.Fatal("expected only the stay block to be set")
	}
}
