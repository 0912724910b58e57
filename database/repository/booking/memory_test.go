package bookingRepo

import (
	"context"
	"testing"
	"time"

	"courtside/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(id, user, date string, start, end models.Minute, created time.Time) *models.Booking {
	return &models.Booking{
		ID:            id,
		UserID:        user,
		FacilityID:    "fac-1",
		CourtID:       "court-1",
		Date:          date,
		Start:         start,
		End:           end,
		Status:        models.BookingConfirmed,
		PaymentStatus: models.PaymentPending,
		TotalPrice:    models.MoneyFromCents(2500),
		CreatedAt:     created,
	}
}

func TestMemoryBookingRepo_DuplicateConfirmedInterval(t *testing.T) {
	repo := NewMemoryBookingRepo()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Append(ctx, booking("b1", "u1", "2024-12-20", 600, 660, now)))
	err := repo.Append(ctx, booking("b2", "u2", "2024-12-20", 600, 660, now))
	assert.ErrorIs(t, err, ErrDuplicateBooking)

	// Once the first is cancelled the interval may be confirmed again.
	_, err = repo.UpdateStatus(ctx, "b1", models.BookingConfirmed, models.BookingCancelled)
	require.NoError(t, err)
	assert.NoError(t, repo.Append(ctx, booking("b2", "u2", "2024-12-20", 600, 660, now)))
}

func TestMemoryBookingRepo_ConditionalStatusUpdate(t *testing.T) {
	repo := NewMemoryBookingRepo()
	ctx := context.Background()
	require.NoError(t, repo.Append(ctx, booking("b1", "u1", "2024-12-20", 600, 660, time.Now())))

	updated, err := repo.UpdateStatus(ctx, "b1", models.BookingConfirmed, models.BookingCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, updated.Status)

	_, err = repo.UpdateStatus(ctx, "b1", models.BookingConfirmed, models.BookingCancelled)
	assert.ErrorIs(t, err, ErrStatusMismatch)

	_, err = repo.UpdateStatus(ctx, "missing", models.BookingConfirmed, models.BookingCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryBookingRepo_Ordering(t *testing.T) {
	repo := NewMemoryBookingRepo()
	ctx := context.Background()
	base := time.Date(2024, 12, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, booking("late", "u1", "2024-12-22", 600, 660, base)))
	require.NoError(t, repo.Append(ctx, booking("early", "u1", "2024-12-20", 720, 780, base.Add(time.Hour))))
	require.NoError(t, repo.Append(ctx, booking("earliest", "u1", "2024-12-20", 600, 660, base.Add(2*time.Hour))))

	byUser, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"earliest", "early", "late"}, ids(byUser))

	byFacility, err := repo.ListByFacility(ctx, "fac-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"earliest", "early", "late"}, ids(byFacility))

	through, err := repo.ListConfirmedThrough(ctx, "2024-12-20")
	require.NoError(t, err)
	assert.Len(t, through, 2)

	future, err := repo.HasFutureConfirmed(ctx, "court-1", "2024-12-21")
	require.NoError(t, err)
	assert.True(t, future)
}

func ids(bookings []models.Booking) []string {
	out := make([]string, len(bookings))
	for i, b := range bookings {
		out[i] = b.ID
	}
	return out
}
