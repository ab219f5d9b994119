package dto

import (
	"errors"
	"time"

	domainbooking "wayfarer/internal/domain/booking"
	domaincatalog "wayfarer/internal/domain/catalog"
)

// ErrDetailsMismatch is returned when the request's bookingType has no
// matching detail block, or when more than one block is supplied.
var ErrDetailsMismatch = errors.New("dto: booking details do not match booking type")

type PaymentDetails struct {
	Method        string `json:"method,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status"`
}

type Accommodation struct {
	Type     string `json:"type,omitempty"`
	RoomType string `json:"room_type,omitempty"`
}

type OptionalService struct {
	Included bool   `json:"included"`
	Kind     string `json:"kind,omitempty"`
}

type AddOnActivity struct {
	Name       string `json:"name"`
	Included   bool   `json:"included"`
	PriceCents int64  `json:"price_cents,omitempty"`
}

type TripDetails struct {
	TripID             string          `json:"trip_id"`
	StartDate          time.Time       `json:"start_date,omitempty"`
	EndDate            time.Time       `json:"end_date,omitempty"`
	Travelers          int             `json:"travelers,omitempty"`
	Category           string          `json:"category,omitempty"`
	Accommodation      Accommodation   `json:"accommodation,omitempty"`
	Transportation     string          `json:"transportation,omitempty"`
	MealPlan           string          `json:"meal_plan,omitempty"`
	Insurance          OptionalService `json:"insurance,omitempty"`
	Guide              OptionalService `json:"guide,omitempty"`
	AddOns             []AddOnActivity `json:"add_ons,omitempty"`
	CancellationPolicy string          `json:"cancellation_policy,omitempty"`
}

type ReservationDetails struct {
	RestaurantID string    `json:"restaurant_id"`
	Date         time.Time `json:"date,omitempty"`
	Time         string    `json:"time,omitempty"`
	People       int       `json:"people,omitempty"`
	Table        string    `json:"table,omitempty"`
}

type RentalDetails struct {
	RentalID string    `json:"rental_id"`
	From     time.Time `json:"from,omitempty"`
	To       time.Time `json:"to,omitempty"`
	Extras   []string  `json:"extras,omitempty"`
}

type ActivityDetails struct {
	ActivityID   string    `json:"activity_id"`
	Date         time.Time `json:"date,omitempty"`
	Participants int       `json:"participants,omitempty"`
}

type StayDetails struct {
	StayID   string    `json:"stay_id"`
	CheckIn  time.Time `json:"check_in,omitempty"`
	CheckOut time.Time `json:"check_out,omitempty"`
	RoomType string    `json:"room_type,omitempty"`
	Guests   int       `json:"guests,omitempty"`
}

// Booking is the public booking payload. Exactly one detail block is set,
// matching BookingType.
type Booking struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	BookingType     string              `json:"booking_type"`
	Status          string              `json:"status"`
	TotalPriceCents int64               `json:"total_price_cents"`
	Payment         PaymentDetails      `json:"payment_details"`
	SpecialRequests string              `json:"special_requests,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Trip            *TripDetails        `json:"trip,omitempty"`
	Reservation     *ReservationDetails `json:"reservation,omitempty"`
	Rental          *RentalDetails      `json:"rental,omitempty"`
	Activity        *ActivityDetails    `json:"activity,omitempty"`
	Stay            *StayDetails        `json:"stay,omitempty"`
	BookedAt        time.Time           `json:"booked_at"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
	Total int       `json:"total"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	out := Booking{
		ID:              string(b.ID),
		UserID:          b.UserID,
		BookingType:     b.Kind().Display(),
		Status:          string(b.Status),
		TotalPriceCents: b.TotalPriceCents,
		Payment: PaymentDetails{
			Method:        b.Payment.Method,
			TransactionID: b.Payment.TransactionID,
			Status:        string(b.Payment.Status),
		},
		SpecialRequests: b.SpecialRequests,
		Notes:           b.Notes,
		BookedAt:        b.BookedAt,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	switch details := b.Details.(type) {
	case domainbooking.TripDetails:
		out.Trip = &TripDetails{
			TripID:             string(details.TripID),
			StartDate:          details.StartDate,
			EndDate:            details.EndDate,
			Travelers:          details.Travelers,
			Category:           details.Category,
			Accommodation:      Accommodation(details.Accommodation),
			Transportation:     details.Transportation,
			MealPlan:           details.MealPlan,
			Insurance:          OptionalService(details.Insurance),
			Guide:              OptionalService(details.Guide),
			AddOns:             mapAddOns(details.AddOns),
			CancellationPolicy: details.CancellationPolicy,
		}
	case domainbooking.ReservationDetails:
		out.Reservation = &ReservationDetails{
			RestaurantID: string(details.RestaurantID),
			Date:         details.Date,
			Time:         details.Time,
			People:       details.People,
			Table:        details.Table,
		}
	case domainbooking.RentalDetails:
		out.Rental = &RentalDetails{
			RentalID: string(details.RentalID),
			From:     details.From,
			To:       details.To,
			Extras:   details.Extras,
		}
	case domainbooking.ActivityDetails:
		out.Activity = &ActivityDetails{
			ActivityID:   string(details.ActivityID),
			Date:         details.Date,
			Participants: details.Participants,
		}
	case domainbooking.StayDetails:
		out.Stay = &StayDetails{
			StayID:   string(details.StayID),
			CheckIn:  details.CheckIn,
			CheckOut: details.CheckOut,
			RoomType: details.RoomType,
			Guests:   details.Guests,
		}
	}
	return out
}

func MapBookings(bookings []*domainbooking.Booking) BookingCollection {
	out := BookingCollection{Items: make([]Booking, 0, len(bookings))}
	for _, b := range bookings {
		out.Items = append(out.Items, MapBooking(b))
	}
	out.Total = len(out.Items)
	return out
}

func mapAddOns(in []domainbooking.AddOnActivity) []AddOnActivity {
	if len(in) == 0 {
		return nil
	}
	out := make([]AddOnActivity, 0, len(in))
	for _, a := range in {
		out = append(out, AddOnActivity(a))
	}
	return out
}

// BookingDetailsRequest is the wire shape for creating a booking: a type tag
// plus exactly one detail block. BuildDetails folds it into the tagged union,
// rejecting a tag without its block and requests carrying extra blocks.
type BookingDetailsRequest struct {
	BookingType string              `json:"booking_type"`
	Trip        *TripDetails        `json:"trip,omitempty"`
	Reservation *ReservationDetails `json:"reservation,omitempty"`
	Rental      *RentalDetails      `json:"rental,omitempty"`
	Activity    *ActivityDetails    `json:"activity,omitempty"`
	Stay        *StayDetails        `json:"stay,omitempty"`
}

func (r BookingDetailsRequest) BuildDetails() (domainbooking.Details, error) {
	kind, err := domaincatalog.ParseKind(r.BookingType)
	if err != nil {
		return nil, err
	}
	if r.detailBlocks() > 1 {
		return nil, ErrDetailsMismatch
	}
	switch kind {
	case domaincatalog.KindTrip:
		if r.Trip == nil {
			return nil, ErrDetailsMismatch
		}
		return domainbooking.TripDetails{
			TripID:             domaincatalog.ItemID(r.Trip.TripID),
			StartDate:          r.Trip.StartDate,
			EndDate:            r.Trip.EndDate,
			Travelers:          r.Trip.Travelers,
			Category:           r.Trip.Category,
			Accommodation:      domainbooking.Accommodation(r.Trip.Accommodation),
			Transportation:     r.Trip.Transportation,
			MealPlan:           r.Trip.MealPlan,
			Insurance:          domainbooking.OptionalService(r.Trip.Insurance),
			Guide:              domainbooking.OptionalService(r.Trip.Guide),
			AddOns:             buildAddOns(r.Trip.AddOns),
			CancellationPolicy: r.Trip.CancellationPolicy,
		}, nil
	case domaincatalog.KindRestaurant:
		if r.Reservation == nil {
			return nil, ErrDetailsMismatch
		}
		return domainbooking.ReservationDetails{
			RestaurantID: domaincatalog.ItemID(r.Reservation.RestaurantID),
			Date:         r.Reservation.Date,
			Time:         r.Reservation.Time,
			People:       r.Reservation.People,
			Table:        r.Reservation.Table,
		}, nil
	case domaincatalog.KindRental:
		if r.Rental == nil {
			return nil, ErrDetailsMismatch
		}
		return domainbooking.RentalDetails{
			RentalID: domaincatalog.ItemID(r.Rental.RentalID),
			From:     r.Rental.From,
			To:       r.Rental.To,
			Extras:   r.Rental.Extras,
		}, nil
	case domaincatalog.KindActivity:
		if r.Activity == nil {
			return nil, ErrDetailsMismatch
		}
		return domainbooking.ActivityDetails{
			ActivityID:   domaincatalog.ItemID(r.Activity.ActivityID),
			Date:         r.Activity.Date,
			Participants: r.Activity.Participants,
		}, nil
	case domaincatalog.KindStay:
		if r.Stay == nil {
			return nil, ErrDetailsMismatch
		}
		return domainbooking.StayDetails{
			StayID:   domaincatalog.ItemID(r.Stay.StayID),
			CheckIn:  r.Stay.CheckIn,
			CheckOut: r.Stay.CheckOut,
			RoomType: r.Stay.RoomType,
			Guests:   r.Stay.Guests,
		}, nil
	}
	return nil, domaincatalog.ErrUnknownKind
}

func (r BookingDetailsRequest) detailBlocks() int {
	n := 0
	for _, set := range []bool{
		r.Trip != nil,
		r.Reservation != nil,
		r.Rental != nil,
		r.Activity != nil,
		r.Stay != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

func buildAddOns(in []AddOnActivity) []domainbooking.AddOnActivity {
	if len(in) == 0 {
		return nil
	}
	out := make([]domainbooking.AddOnActivity, 0, len(in))
	for _, a := range in {
		out = append(out, domainbooking.AddOnActivity(a))
	}
	return out
}
