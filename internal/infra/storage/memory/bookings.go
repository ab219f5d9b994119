package memory

import (
	"context"
	"sort"
	"sync"

	"wayfarer/internal/domain/booking"
)

type BookingRepository struct {
	mu      sync.RWMutex
	records map[booking.BookingID]booking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{records: make(map[booking.BookingID]booking.Booking)}
}

func (r *BookingRepository) ByID(_ context.Context, id booking.BookingID) (*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.records[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepository) ListAll(_ context.Context, limit, offset int) ([]*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.records {
		out = append(out, cloneBooking(b))
	}
	sortBookings(out)
	return page(out, limit, offset), nil
}

func (r *BookingRepository) ListByUser(_ context.Context, userID string) ([]*booking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*booking.Booking
	for _, b := range r.records {
		if b.UserID == userID {
			out = append(out, cloneBooking(b))
		}
	}
	sortBookings(out)
	return out, nil
}

func (r *BookingRepository) Save(_ context.Context, b *booking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Version++
	r.records[b.ID] = *cloneBooking(*b)
	return nil
}

func (r *BookingRepository) Delete(_ context.Context, id booking.BookingID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id]; !ok {
		return booking.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func cloneBooking(b booking.Booking) *booking.Booking {
	b.ClearEvents()
	return &b
}

func sortBookings(out []*booking.Booking) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
}
