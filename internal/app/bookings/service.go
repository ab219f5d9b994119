package bookings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"wayfarer/internal/app/policies"
	domainbooking "wayfarer/internal/domain/booking"
	domaincatalog "wayfarer/internal/domain/catalog"
	domainevents "wayfarer/internal/domain/shared/events"
)

var (
	ErrNotOwner  = errors.New("bookings: booking belongs to another user")
	ErrAdminOnly = errors.New("bookings: admin access required")
)

type Service struct {
	Bookings domainbooking.Repository
	Items    domaincatalog.Stores
	Events   policies.EventPublisher
	Logger   *slog.Logger
}

type CreateParams struct {
	UserID          string
	Details         domainbooking.Details
	TotalPriceCents int64
	Status          domainbooking.Status
	PaymentMethod   string
	SpecialRequests string
	Notes           string
	Now             time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*domainbooking.Booking, error) {
	b, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:              domainbooking.BookingID(uuid.NewString()),
		UserID:          params.UserID,
		Details:         params.Details,
		TotalPriceCents: params.TotalPriceCents,
		Payment:         domainbooking.PaymentDetails{Method: params.PaymentMethod},
		Status:          params.Status,
		SpecialRequests: params.SpecialRequests,
		Notes:           params.Notes,
		CreatedAt:       params.Now,
	})
	if err != nil {
		return nil, err
	}

	// The union guarantees tag/reference agreement; the item still has to exist.
	store, err := s.Items.Lookup(b.Kind())
	if err != nil {
		return nil, err
	}
	if _, err := store.ByID(ctx, b.Details.ItemID()); err != nil {
		return nil, err
	}

	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, b.PendingEvents())
	b.ClearEvents()

	if s.Logger != nil {
		s.Logger.Info("booking created", "booking_id", b.ID, "user_id", b.UserID, "item", b.ItemRef().String(), "status", b.Status)
	}
	return b, nil
}

// PaymentResult is the mock payment gateway response.
type PaymentResult struct {
	Booking       *domainbooking.Booking
	TransactionID string
}

// ProcessPayment simulates the gateway: stamps a transaction id, marks the
// payment Paid and confirms the booking.
func (s *Service) ProcessPayment(ctx context.Context, id domainbooking.BookingID, method string, now time.Time) (PaymentResult, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return PaymentResult{}, err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	transactionID := newTransactionID()
	if err := b.Confirm(method, transactionID, now); err != nil {
		return PaymentResult{}, err
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return PaymentResult{}, err
	}
	s.publish(ctx, b.PendingEvents())
	b.ClearEvents()

	if s.Logger != nil {
		s.Logger.Info("payment processed", "booking_id", b.ID, "transaction_id", transactionID, "method", method)
	}
	return PaymentResult{Booking: b, TransactionID: transactionID}, nil
}

// UpdateStatus applies a status change. Owners may only cancel their own
// booking; admins may force any status.
func (s *Service) UpdateStatus(ctx context.Context, id domainbooking.BookingID, actor policies.Actor, status domainbooking.Status, now time.Time) (*domainbooking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	switch {
	case actor.Admin:
		if err := b.ForceStatus(status, now); err != nil {
			return nil, err
		}
	case b.UserID == actor.ID:
		if status != domainbooking.StatusCancelled {
			return nil, ErrAdminOnly
		}
		if err := b.Cancel("cancelled by user", now); err != nil {
			return nil, err
		}
	default:
		return nil, ErrNotOwner
	}
	if err := s.Bookings.Save(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, b.PendingEvents())
	b.ClearEvents()
	return b, nil
}

// Delete removes a booking outright. Normal flows cancel instead; only
// admins may hard-delete.
func (s *Service) Delete(ctx context.Context, id domainbooking.BookingID, actor policies.Actor) error {
	if !actor.Admin {
		return ErrAdminOnly
	}
	if _, err := s.Bookings.ByID(ctx, id); err != nil {
		return err
	}
	return s.Bookings.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id domainbooking.BookingID, actor policies.Actor) (*domainbooking.Booking, error) {
	b, err := s.Bookings.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanActOn(b.UserID) {
		return nil, ErrNotOwner
	}
	return b, nil
}

func (s *Service) ListAll(ctx context.Context, actor policies.Actor, limit, offset int) ([]*domainbooking.Booking, error) {
	if !actor.Admin {
		return nil, ErrAdminOnly
	}
	return s.Bookings.ListAll(ctx, limit, offset)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return s.Bookings.ListByUser(ctx, userID)
}

func newTransactionID() string {
	return "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func (s *Service) publish(ctx context.Context, pending []domainevents.DomainEvent) {
	if s.Events == nil {
		return
	}
	for _, event := range pending {
		if err := s.Events.Publish(ctx, event); err != nil && s.Logger != nil {
			s.Logger.Warn("event publish failed", "event", event.EventName(), "aggregate_id", event.AggregateID(), "error", err)
		}
	}
}
