// File: database/repository/blocked/mongo.go
package blockedRepo

import (
	"context"
	"fmt"
	"time"

	"courtside/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *mongoBlockedRepo) Create(ctx context.Context, b *models.Blocked) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert blocked interval: %w", err)
	}
	return nil
}

func (r *mongoBlockedRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete blocked interval %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBlockedRepo) ListByCourtAndDate(ctx context.Context, courtID, date string) ([]models.Blocked, error) {
	return r.find(ctx, bson.M{"court_id": courtID, "date": date})
}

func (r *mongoBlockedRepo) ListFrom(ctx context.Context, date string) ([]models.Blocked, error) {
	return r.find(ctx, bson.M{"date": bson.M{"$gte": date}})
}

func (r *mongoBlockedRepo) find(ctx context.Context, filter bson.M) ([]models.Blocked, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find blocked intervals: %w", err)
	}
	defer cursor.Close(ctx)

	blocks := []models.Blocked{}
	if err := cursor.All(ctx, &blocks); err != nil {
		return nil, fmt.Errorf("decode blocked intervals: %w", err)
	}
	return blocks, nil
}

// EnsureIndexes creates the necessary indexes on the blocked collection.
func (r *mongoBlockedRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "court_id", Value: 1}, {Key: "date", Value: 1}, {Key: "start", Value: 1}},
			Options: options.Index().SetName("court_date_start_idx"),
		},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create blocked indexes: %w", err)
	}
	return nil
}
