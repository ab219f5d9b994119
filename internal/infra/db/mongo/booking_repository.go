package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "wayfarer/internal/domain/booking"
	domaincatalog "wayfarer/internal/domain/catalog"
)

var ErrConcurrentUpdate = errors.New("mongo: concurrent update detected")

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection("bookings")}
}

func (r *BookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "booking_type", Value: 1}, {Key: "status", Value: 1}}},
	})
	return err
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	var doc bookingDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainbooking.ErrNotFound
		}
		return nil, err
	}
	return doc.toBooking()
}

func (r *BookingRepository) ListAll(ctx context.Context, limit, offset int) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	return r.list(ctx, bson.M{}, opts)
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.list(ctx, bson.M{"user_id": userID}, opts)
}

func (r *BookingRepository) list(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainbooking.Booking, error) {
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var bookings []*domainbooking.Booking
	for cursor.Next(ctx) {
		var doc bookingDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		b, err := doc.toBooking()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, cursor.Err()
}

// Save upserts with an optimistic version check; a lost race surfaces as
// ErrConcurrentUpdate instead of silently overwriting.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	doc := newBookingDocument(b)
	filter := bson.M{"_id": doc.ID, "version": b.Version}
	doc.Version = b.Version + 1
	opts := options.Update().SetUpsert(true)
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": doc}, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 && res.UpsertedCount == 0 {
		return ErrConcurrentUpdate
	}
	b.Version = doc.Version
	return nil
}

func (r *BookingRepository) Delete(ctx context.Context, id domainbooking.BookingID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainbooking.ErrNotFound
	}
	return nil
}

type accommodationDocument struct {
	Type     string `bson:"type,omitempty"`
	RoomType string `bson:"room_type,omitempty"`
}

type optionalServiceDocument struct {
	Included bool   `bson:"included"`
	Kind     string `bson:"kind,omitempty"`
}

type addOnDocument struct {
	Name       string `bson:"name"`
	Included   bool   `bson:"included"`
	PriceCents int64  `bson:"price_cents,omitempty"`
}

type tripDetailsDocument struct {
	TripID             string                  `bson:"trip_id"`
	StartDate          int64                   `bson:"start_date,omitempty"`
	EndDate            int64                   `bson:"end_date,omitempty"`
	Travelers          int                     `bson:"travelers,omitempty"`
	Category           string                  `bson:"category,omitempty"`
	Accommodation      accommodationDocument   `bson:"accommodation,omitempty"`
	Transportation     string                  `bson:"transportation,omitempty"`
	MealPlan           string                  `bson:"meal_plan,omitempty"`
	Insurance          optionalServiceDocument `bson:"insurance,omitempty"`
	Guide              optionalServiceDocument `bson:"guide,omitempty"`
	AddOns             []addOnDocument         `bson:"add_ons,omitempty"`
	CancellationPolicy string                  `bson:"cancellation_policy,omitempty"`
}

type reservationDetailsDocument struct {
	RestaurantID string `bson:"restaurant_id"`
	Date         int64  `bson:"date,omitempty"`
	Time         string `bson:"time,omitempty"`
	People       int    `bson:"people,omitempty"`
	Table        string `bson:"table,omitempty"`
}

type rentalDetailsDocument struct {
	RentalID string   `bson:"rental_id"`
	From     int64    `bson:"from,omitempty"`
	To       int64    `bson:"to,omitempty"`
	Extras   []string `bson:"extras,omitempty"`
}

type activityDetailsDocument struct {
	ActivityID   string `bson:"activity_id"`
	Date         int64  `bson:"date,omitempty"`
	Participants int    `bson:"participants,omitempty"`
}

type stayDetailsDocument struct {
	StayID   string `bson:"stay_id"`
	CheckIn  int64  `bson:"check_in,omitempty"`
	CheckOut int64  `bson:"check_out,omitempty"`
	RoomType string `bson:"room_type,omitempty"`
	Guests   int    `bson:"guests,omitempty"`
}

type paymentDocument struct {
	Method        string `bson:"method,omitempty"`
	TransactionID string `bson:"transaction_id,omitempty"`
	Status        string `bson:"status"`
}

type bookingDocument struct {
	ID              string                      `bson:"_id"`
	UserID          string                      `bson:"user_id"`
	BookingType     string                      `bson:"booking_type"`
	Status          string                      `bson:"status"`
	TotalPriceCents int64                       `bson:"total_price_cents"`
	Payment         paymentDocument             `bson:"payment"`
	SpecialRequests string                      `bson:"special_requests,omitempty"`
	Notes           string                      `bson:"notes,omitempty"`
	Trip            *tripDetailsDocument        `bson:"trip,omitempty"`
	Reservation     *reservationDetailsDocument `bson:"reservation,omitempty"`
	Rental          *rentalDetailsDocument      `bson:"rental,omitempty"`
	Activity        *activityDetailsDocument    `bson:"activity,omitempty"`
	Stay            *stayDetailsDocument        `bson:"stay,omitempty"`
	BookedAt        int64                       `bson:"booked_at"`
	CreatedAt       int64                       `bson:"created_at"`
	UpdatedAt       int64                       `bson:"updated_at"`
	Version         int64                       `bson:"version"`
}

func newBookingDocument(b *domainbooking.Booking) bookingDocument {
	doc := bookingDocument{
		ID:              string(b.ID),
		UserID:          b.UserID,
		BookingType:     string(b.Kind()),
		Status:          string(b.Status),
		TotalPriceCents: b.TotalPriceCents,
		Payment: paymentDocument{
			Method:        b.Payment.Method,
			TransactionID: b.Payment.TransactionID,
			Status:        string(b.Payment.Status),
		},
		SpecialRequests: b.SpecialRequests,
		Notes:           b.Notes,
		BookedAt:        b.BookedAt.UnixMilli(),
		CreatedAt:       b.CreatedAt.UnixMilli(),
		UpdatedAt:       b.UpdatedAt.UnixMilli(),
		Version:         b.Version,
	}
	switch details := b.Details.(type) {
	case domainbooking.TripDetails:
		trip := &tripDetailsDocument{
			TripID:             string(details.TripID),
			Travelers:          details.Travelers,
			Category:           details.Category,
			Accommodation:      accommodationDocument(details.Accommodation),
			Transportation:     details.Transportation,
			MealPlan:           details.MealPlan,
			Insurance:          optionalServiceDocument(details.Insurance),
			Guide:              optionalServiceDocument(details.Guide),
			CancellationPolicy: details.CancellationPolicy,
		}
		if !details.StartDate.IsZero() {
			trip.StartDate = details.StartDate.UnixMilli()
		}
		if !details.EndDate.IsZero() {
			trip.EndDate = details.EndDate.UnixMilli()
		}
		for _, a := range details.AddOns {
			trip.AddOns = append(trip.AddOns, addOnDocument(a))
		}
		doc.Trip = trip
	case domainbooking.ReservationDetails:
		reservation := &reservationDetailsDocument{
			RestaurantID: string(details.RestaurantID),
			Time:         details.Time,
			People:       details.People,
			Table:        details.Table,
		}
		if !details.Date.IsZero() {
			reservation.Date = details.Date.UnixMilli()
		}
		doc.Reservation = reservation
	case domainbooking.RentalDetails:
		rental := &rentalDetailsDocument{
			RentalID: string(details.RentalID),
			Extras:   details.Extras,
		}
		if !details.From.IsZero() {
			rental.From = details.From.UnixMilli()
		}
		if !details.To.IsZero() {
			rental.To = details.To.UnixMilli()
		}
		doc.Rental = rental
	case domainbooking.ActivityDetails:
		activity := &activityDetailsDocument{
			ActivityID:   string(details.ActivityID),
			Participants: details.Participants,
		}
		if !details.Date.IsZero() {
			activity.Date = details.Date.UnixMilli()
		}
		doc.Activity = activity
	case domainbooking.StayDetails:
		stay := &stayDetailsDocument{
			StayID:   string(details.StayID),
			RoomType: details.RoomType,
			Guests:   details.Guests,
		}
		if !details.CheckIn.IsZero() {
			stay.CheckIn = details.CheckIn.UnixMilli()
		}
		if !details.CheckOut.IsZero() {
			stay.CheckOut = details.CheckOut.UnixMilli()
		}
		doc.Stay = stay
	}
	return doc
}

func (d bookingDocument) toBooking() (*domainbooking.Booking, error) {
	details, err := d.details()
	if err != nil {
		return nil, err
	}
	return &domainbooking.Booking{
		ID:              domainbooking.BookingID(d.ID),
		UserID:          d.UserID,
		Details:         details,
		Status:          domainbooking.Status(d.Status),
		TotalPriceCents: d.TotalPriceCents,
		Payment: domainbooking.PaymentDetails{
			Method:        d.Payment.Method,
			TransactionID: d.Payment.TransactionID,
			Status:        domainbooking.PaymentStatus(d.Payment.Status),
		},
		SpecialRequests: d.SpecialRequests,
		Notes:           d.Notes,
		BookedAt:        timestampToTime(d.BookedAt),
		CreatedAt:       timestampToTime(d.CreatedAt),
		UpdatedAt:       timestampToTime(d.UpdatedAt),
		Version:         d.Version,
	}, nil
}

func (d bookingDocument) details() (domainbooking.Details, error) {
	switch domaincatalog.Kind(d.BookingType) {
	case domaincatalog.KindTrip:
		if d.Trip == nil {
			return nil, fmt.Errorf("mongo: booking %s: trip details missing", d.ID)
		}
		details := domainbooking.TripDetails{
			TripID:             domaincatalog.ItemID(d.Trip.TripID),
			Travelers:          d.Trip.Travelers,
			Category:           d.Trip.Category,
			Accommodation:      domainbooking.Accommodation(d.Trip.Accommodation),
			Transportation:     d.Trip.Transportation,
			MealPlan:           d.Trip.MealPlan,
			Insurance:          domainbooking.OptionalService(d.Trip.Insurance),
			Guide:              domainbooking.OptionalService(d.Trip.Guide),
			CancellationPolicy: d.Trip.CancellationPolicy,
		}
		if d.Trip.StartDate != 0 {
			details.StartDate = timestampToTime(d.Trip.StartDate)
		}
		if d.Trip.EndDate != 0 {
			details.EndDate = timestampToTime(d.Trip.EndDate)
		}
		for _, a := range d.Trip.AddOns {
			details.AddOns = append(details.AddOns, domainbooking.AddOnActivity(a))
		}
		return details, nil
	case domaincatalog.KindRestaurant:
		if d.Reservation == nil {
			return nil, fmt.Errorf("mongo: booking %s: reservation details missing", d.ID)
		}
		details := domainbooking.ReservationDetails{
			RestaurantID: domaincatalog.ItemID(d.Reservation.RestaurantID),
			Time:         d.Reservation.Time,
			People:       d.Reservation.People,
			Table:        d.Reservation.Table,
		}
		if d.Reservation.Date != 0 {
			details.Date = timestampToTime(d.Reservation.Date)
		}
		return details, nil
	case domaincatalog.KindRental:
		if d.Rental == nil {
			return nil, fmt.Errorf("mongo: booking %s: rental details missing", d.ID)
		}
		details := domainbooking.RentalDetails{
			RentalID: domaincatalog.ItemID(d.Rental.RentalID),
			Extras:   d.Rental.Extras,
		}
		if d.Rental.From != 0 {
			details.From = timestampToTime(d.Rental.From)
		}
		if d.Rental.To != 0 {
			details.To = timestampToTime(d.Rental.To)
		}
		return details, nil
	case domaincatalog.KindActivity:
		if d.Activity == nil {
			return nil, fmt.Errorf("mongo: booking %s: activity details missing", d.ID)
		}
		details := domainbooking.ActivityDetails{
			ActivityID:   domaincatalog.ItemID(d.Activity.ActivityID),
			Participants: d.Activity.Participants,
		}
		if d.Activity.Date != 0 {
			details.Date = timestampToTime(d.Activity.Date)
		}
		return details, nil
	case domaincatalog.KindStay:
		if d.Stay == nil {
			return nil, fmt.Errorf("mongo: booking %s: stay details missing", d.ID)
		}
		details := domainbooking.StayDetails{
			StayID:   domaincatalog.ItemID(d.Stay.StayID),
			RoomType: d.Stay.RoomType,
			Guests:   d.Stay.Guests,
		}
		if d.Stay.CheckIn != 0 {
			details.CheckIn = timestampToTime(d.Stay.CheckIn)
		}
		if d.Stay.CheckOut != 0 {
			details.CheckOut = timestampToTime(d.Stay.CheckOut)
		}
		return details, nil
	}
	return nil, fmt.Errorf("mongo: booking %s: unknown booking type %q", d.ID, d.BookingType)
}
