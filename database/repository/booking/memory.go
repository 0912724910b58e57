// File: database/repository/booking/memory.go
package bookingRepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"courtside/models"
)

type memoryBookingRepo struct {
	mu   sync.RWMutex
	rows map[string]models.Booking
}

// NewMemoryBookingRepo returns an in-process ledger with the same constraints
// as the Mongo implementation. It is used by tests and local runs.
func NewMemoryBookingRepo() BookingRepository {
	return &memoryBookingRepo{rows: make(map[string]models.Booking)}
}

func (r *memoryBookingRepo) Append(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[b.ID]; ok {
		return ErrDuplicateBooking
	}
	if b.Status == models.BookingConfirmed {
		for _, other := range r.rows {
			if other.Status == models.BookingConfirmed && other.CourtID == b.CourtID &&
				other.Date == b.Date && other.Start == b.Start && other.End == b.End {
				return ErrDuplicateBooking
			}
		}
	}
	r.rows[b.ID] = *b
	return nil
}

func (r *memoryBookingRepo) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memoryBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *memoryBookingRepo) UpdateStatus(_ context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	if b.Status != from {
		return nil, ErrStatusMismatch
	}
	b.Status = to
	b.UpdatedAt = time.Now().UTC()
	r.rows[id] = b
	return &b, nil
}

func (r *memoryBookingRepo) UpdatePaymentStatus(_ context.Context, id string, status models.PaymentStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.PaymentStatus = status
	b.UpdatedAt = time.Now().UTC()
	r.rows[id] = b
	return &b, nil
}

func (r *memoryBookingRepo) ListByUser(_ context.Context, userID string) ([]models.Booking, error) {
	out := r.filter(func(b models.Booking) bool { return b.UserID == userID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryBookingRepo) ListByFacility(_ context.Context, facilityID string) ([]models.Booking, error) {
	out := r.filter(func(b models.Booking) bool { return b.FacilityID == facilityID })
	sortByDateStart(out)
	return out, nil
}

func (r *memoryBookingRepo) ListByCourtAndDate(_ context.Context, courtID, date string) ([]models.Booking, error) {
	out := r.filter(func(b models.Booking) bool { return b.CourtID == courtID && b.Date == date })
	sortByDateStart(out)
	return out, nil
}

func (r *memoryBookingRepo) ListConfirmedFrom(_ context.Context, date string) ([]models.Booking, error) {
	out := r.filter(func(b models.Booking) bool { return b.Status == models.BookingConfirmed && b.Date >= date })
	sortByDateStart(out)
	return out, nil
}

func (r *memoryBookingRepo) ListConfirmedThrough(_ context.Context, date string) ([]models.Booking, error) {
	out := r.filter(func(b models.Booking) bool { return b.Status == models.BookingConfirmed && b.Date <= date })
	sortByDateStart(out)
	return out, nil
}

func (r *memoryBookingRepo) HasFutureConfirmed(_ context.Context, courtID, fromDate string) (bool, error) {
	out := r.filter(func(b models.Booking) bool {
		return b.CourtID == courtID && b.Status == models.BookingConfirmed && b.Date >= fromDate
	})
	return len(out) > 0, nil
}

func (r *memoryBookingRepo) EnsureIndexes(context.Context) error { return nil }

func (r *memoryBookingRepo) filter(keep func(models.Booking) bool) []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Booking{}
	for _, b := range r.rows {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

func sortByDateStart(bookings []models.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		if bookings[i].Date != bookings[j].Date {
			return bookings[i].Date < bookings[j].Date
		}
		if bookings[i].Start != bookings[j].Start {
			return bookings[i].Start < bookings[j].Start
		}
		return bookings[i].ID < bookings[j].ID
	})
}
