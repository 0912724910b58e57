// File: database/repository/court/mongo.go
package courtRepo

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

func (r *mongoCourtRepo) Create(ctx context.Context, c *models.Court) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert court: %w", err)
	}
	return nil
}

func (r *mongoCourtRepo) GetByID(ctx context.Context, id string) (*models.Court, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Court
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("find court %s: %w", id, err)
	}
	return &c, nil
}

func (r *mongoCourtRepo) Update(ctx context.Context, id string, upd models.CourtUpdate) (*models.Court, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.PricePerHour != nil {
		set["price_per_hour_cents"] = upd.PricePerHour.Cents()
	}
	if upd.OperatingHours != nil {
		set["operating_hours"] = upd.OperatingHours
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Court
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$set": set}, opts).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("update court %s: %w", id, err)
	}
	return &c, nil
}

func (r *mongoCourtRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete court %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrCourtNotFound
	}
	return nil
}

func (r *mongoCourtRepo) ListByFacility(ctx context.Context, facilityID string) ([]models.Court, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"facility_id": facilityID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find courts: %w", err)
	}
	defer cursor.Close(ctx)

	courts := []models.Court{}
	if err := cursor.All(ctx, &courts); err != nil {
		return nil, fmt.Errorf("decode courts: %w", err)
	}
	return courts, nil
}

// EnsureIndexes creates the necessary indexes on the courts collection.
func (r *mongoCourtRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "facility_id", Value: 1}},
			Options: options.Index().SetName("facility_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create court indexes: %w", err)
	}
	return nil
}

func (r *mongoFacilityRepo) Create(ctx context.Context, f *models.Facility) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("insert facility: %w", err)
	}
	return nil
}

func (r *mongoFacilityRepo) GetByID(ctx context.Context, id string) (*models.Facility, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var f models.Facility
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&f); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFacilityNotFound
		}
		return nil, fmt.Errorf("find facility %s: %w", id, err)
	}
	return &f, nil
}
