// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"

	"courtside/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("booking not found")
	// ErrDuplicateBooking is raised by the unique index on confirmed intervals.
	ErrDuplicateBooking = errors.New("a confirmed booking already exists for this interval")
	// ErrStatusMismatch means a conditional status update found a different current status.
	ErrStatusMismatch = errors.New("booking status changed concurrently")
)

// BookingRepository is the durable booking ledger.
type BookingRepository interface {
	Append(ctx context.Context, b *models.Booking) error
	// Remove deletes a row that was appended but never committed to the index.
	Remove(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListByFacility(ctx context.Context, facilityID string) ([]models.Booking, error)
	ListByCourtAndDate(ctx context.Context, courtID, date string) ([]models.Booking, error)
	ListConfirmedFrom(ctx context.Context, date string) ([]models.Booking, error)
	ListConfirmedThrough(ctx context.Context, date string) ([]models.Booking, error)
	HasFutureConfirmed(ctx context.Context, courtID, fromDate string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo constructs a MongoDB-backed BookingRepository.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &mongoBookingRepo{
		coll: db.Collection("bookings"),
	}
}
