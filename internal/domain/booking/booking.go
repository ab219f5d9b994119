package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"wayfarer/internal/domain/catalog"
	"wayfarer/internal/domain/shared/events"
)

var (
	ErrDetailsRequired   = errors.New("booking: kind details are required")
	ErrItemRefRequired   = errors.New("booking: item reference is required")
	ErrUserRequired      = errors.New("booking: user id is required")
	ErrInvalidPrice      = errors.New("booking: total price must not be negative")
	ErrUnknownStatus     = errors.New("booking: unknown status")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrNotFound          = errors.New("booking: not found")
)

type BookingID string

type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
	StatusRefunded  Status = "Refunded"
)

func ParseStatus(raw string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending":
		return StatusPending, nil
	case "confirmed":
		return StatusConfirmed, nil
	case "cancelled":
		return StatusCancelled, nil
	case "completed":
		return StatusCompleted, nil
	case "refunded":
		return StatusRefunded, nil
	default:
		return "", ErrUnknownStatus
	}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "Pending"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentFailed   PaymentStatus = "Failed"
	PaymentRefunded PaymentStatus = "Refunded"
)

type PaymentDetails struct {
	Method        string
	TransactionID string
	Status        PaymentStatus
}

// Booking reserves exactly one catalog item. The kind-specific payload is a
// tagged union: the Details variant both names the kind and holds the typed
// item reference, so the tag can never disagree with the reference.
type Booking struct {
	ID              BookingID
	UserID          string
	Details         Details
	Status          Status
	TotalPriceCents int64
	Payment         PaymentDetails
	SpecialRequests string
	Notes           string
	BookedAt        time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	ListAll(ctx context.Context, limit, offset int) ([]*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id BookingID) error
}

type CreateParams struct {
	ID              BookingID
	UserID          string
	Details         Details
	TotalPriceCents int64
	Payment         PaymentDetails
	// Status overrides the Pending default when non-empty.
	Status          Status
	SpecialRequests string
	Notes           string
	CreatedAt       time.Time
}

func NewBooking(params CreateParams) (*Booking, error) {
	if params.Details == nil {
		return nil, ErrDetailsRequired
	}
	if err := params.Details.validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if params.TotalPriceCents < 0 {
		return nil, ErrInvalidPrice
	}
	status := params.Status
	if status == "" {
		status = StatusPending
	} else if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	payment := params.Payment
	if payment.Status == "" {
		payment.Status = PaymentPending
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	b := &Booking{
		ID:              params.ID,
		UserID:          params.UserID,
		Details:         params.Details,
		Status:          status,
		TotalPriceCents: params.TotalPriceCents,
		Payment:         payment,
		SpecialRequests: strings.TrimSpace(params.SpecialRequests),
		Notes:           strings.TrimSpace(params.Notes),
		BookedAt:        now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	b.Record(BookingCreated{BookingID: b.ID, UserID: b.UserID, Item: b.ItemRef(), TotalCents: b.TotalPriceCents, At: now})
	return b, nil
}

func (b *Booking) Kind() catalog.Kind {
	if b.Details == nil {
		return ""
	}
	return b.Details.Kind()
}

func (b *Booking) ItemRef() catalog.Ref {
	if b.Details == nil {
		return catalog.Ref{}
	}
	return catalog.Ref{Kind: b.Details.Kind(), ItemID: b.Details.ItemID()}
}

// Confirm records a successful payment and moves the booking out of Pending.
func (b *Booking) Confirm(method, transactionID string, now time.Time) error {
	if b.Status != StatusPending {
		return ErrInvalidTransition
	}
	b.Status = StatusConfirmed
	b.Payment = PaymentDetails{Method: method, TransactionID: transactionID, Status: PaymentPaid}
	b.UpdatedAt = now.UTC()
	b.Record(BookingConfirmed{BookingID: b.ID, Item: b.ItemRef(), TransactionID: transactionID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(reason string, now time.Time) error {
	if b.Status != StatusPending && b.Status != StatusConfirmed {
		return ErrInvalidTransition
	}
	b.Status = StatusCancelled
	b.UpdatedAt = now.UTC()
	b.Record(BookingCancelled{BookingID: b.ID, Reason: reason, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Complete(now time.Time) error {
	if b.Status != StatusConfirmed {
		return ErrInvalidTransition
	}
	b.Status = StatusCompleted
	b.UpdatedAt = now.UTC()
	b.Record(BookingCompleted{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Refund(now time.Time) error {
	if b.Status != StatusCancelled && b.Status != StatusCompleted {
		return ErrInvalidTransition
	}
	b.Status = StatusRefunded
	b.Payment.Status = PaymentRefunded
	b.UpdatedAt = now.UTC()
	b.Record(BookingRefunded{BookingID: b.ID, At: b.UpdatedAt})
	return nil
}

// ForceStatus writes any valid status without transition checks. Admin
// tooling relies on it; regular flows go through the guarded transitions.
func (b *Booking) ForceStatus(status Status, now time.Time) error {
	parsed, err := ParseStatus(string(status))
	if err != nil {
		return err
	}
	b.Status = parsed
	b.UpdatedAt = now.UTC()
	return nil
}
