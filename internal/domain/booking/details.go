package booking

import (
	"time"

	"wayfarer/internal/domain/catalog"
)

// Details is the kind-specific half of a booking. Each variant carries the
// typed reference to the booked item plus the payload that only makes sense
// for that kind.
type Details interface {
	Kind() catalog.Kind
	ItemID() catalog.ItemID
	validate() error
}

type Accommodation struct {
	Type     string
	RoomType string
}

type OptionalService struct {
	Included bool
	Kind     string
}

type AddOnActivity struct {
	Name       string
	Included   bool
	PriceCents int64
}

type TripDetails struct {
	TripID             catalog.ItemID
	StartDate          time.Time
	EndDate            time.Time
	Travelers          int
	Category           string
	Accommodation      Accommodation
	Transportation     string
	MealPlan           string
	Insurance          OptionalService
	Guide              OptionalService
	AddOns             []AddOnActivity
	CancellationPolicy string
}

func (d TripDetails) Kind() catalog.Kind     { return catalog.KindTrip }
func (d TripDetails) ItemID() catalog.ItemID { return d.TripID }
func (d TripDetails) validate() error {
	if d.TripID == "" {
		return ErrItemRefRequired
	}
	return nil
}

type ReservationDetails struct {
	RestaurantID catalog.ItemID
	Date         time.Time
	Time         string
	People       int
	Table        string
}

func (d ReservationDetails) Kind() catalog.Kind     { return catalog.KindRestaurant }
func (d ReservationDetails) ItemID() catalog.ItemID { return d.RestaurantID }
func (d ReservationDetails) validate() error {
	if d.RestaurantID == "" {
		return ErrItemRefRequired
	}
	return nil
}

type RentalDetails struct {
	RentalID catalog.ItemID
	From     time.Time
	To       time.Time
	Extras   []string
}

func (d RentalDetails) Kind() catalog.Kind     { return catalog.KindRental }
func (d RentalDetails) ItemID() catalog.ItemID { return d.RentalID }
func (d RentalDetails) validate() error {
	if d.RentalID == "" {
		return ErrItemRefRequired
	}
	return nil
}

type ActivityDetails struct {
	ActivityID   catalog.ItemID
	Date         time.Time
	Participants int
}

func (d ActivityDetails) Kind() catalog.Kind     { return catalog.KindActivity }
func (d ActivityDetails) ItemID() catalog.ItemID { return d.ActivityID }
func (d ActivityDetails) validate() error {
	if d.ActivityID == "" {
		return ErrItemRefRequired
	}
	return nil
}

type StayDetails struct {
	StayID   catalog.ItemID
	CheckIn  time.Time
	CheckOut time.Time
	RoomType string
	Guests   int
}

func (d StayDetails) Kind() catalog.Kind     { return catalog.KindStay }
func (d StayDetails) ItemID() catalog.ItemID { return d.StayID }
func (d StayDetails) validate() error {
	if d.StayID == "" {
		return ErrItemRefRequired
	}
	return nil
}
