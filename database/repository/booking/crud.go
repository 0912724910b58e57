// File: database/repository/booking/crud.go
package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courtside/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoBookingRepo) Append(ctx context.Context, b *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateBooking
		}
		return fmt.Errorf("insert booking %s: %w", b.ID, err)
	}
	return nil
}

func (r *mongoBookingRepo) Remove(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}
	return &b, nil
}

// UpdateStatus moves a booking from one status to another only if it is
// still in the expected status.
func (r *mongoBookingRepo) UpdateStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}}
	return r.findOneAndUpdate(ctx, id, filter, update)
}

func (r *mongoBookingRepo) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	update := bson.M{"$set": bson.M{"payment_status": status, "updated_at": time.Now().UTC()}}
	return r.findOneAndUpdate(ctx, id, filter, update)
}

func (r *mongoBookingRepo) findOneAndUpdate(ctx context.Context, id string, filter, update bson.M) (*models.Booking, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update booking %s: %w", id, err)
	}

	// Distinguish a missing row from a failed precondition.
	n, countErr := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if countErr != nil {
		return nil, fmt.Errorf("update booking %s: %w", id, countErr)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrStatusMismatch
}
