// File: database/repository/booking/queries.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"courtside/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ListByUser returns a user's bookings, newest first.
func (r *mongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

// ListByFacility returns all bookings of a facility ordered by date and start.
func (r *mongoBookingRepo) ListByFacility(ctx context.Context, facilityID string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}})
	return r.find(ctx, bson.M{"facility_id": facilityID}, opts)
}

func (r *mongoBookingRepo) ListByCourtAndDate(ctx context.Context, courtID, date string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	return r.find(ctx, bson.M{"court_id": courtID, "date": date}, opts)
}

// ListConfirmedFrom returns confirmed bookings on or after date; used to replay the index.
func (r *mongoBookingRepo) ListConfirmedFrom(ctx context.Context, date string) ([]models.Booking, error) {
	filter := bson.M{"status": models.BookingConfirmed, "date": bson.M{"$gte": date}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}})
	return r.find(ctx, filter, opts)
}

// ListConfirmedThrough returns confirmed bookings on or before date; used by the completion sweep.
func (r *mongoBookingRepo) ListConfirmedThrough(ctx context.Context, date string) ([]models.Booking, error) {
	filter := bson.M{"status": models.BookingConfirmed, "date": bson.M{"$lte": date}}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}})
	return r.find(ctx, filter, opts)
}

func (r *mongoBookingRepo) HasFutureConfirmed(ctx context.Context, courtID, fromDate string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"court_id": courtID,
		"status":   models.BookingConfirmed,
		"date":     bson.M{"$gte": fromDate},
	}
	n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count future bookings for court %s: %w", courtID, err)
	}
	return n > 0, nil
}

func (r *mongoBookingRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}
