// File: database/repository/blocked/interface.go
package blockedRepo

import (
	"context"
	"errors"

	"courtside/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("blocked interval not found")

// BlockedRepository persists owner/admin blocks so the index can be rebuilt.
type BlockedRepository interface {
	Create(ctx context.Context, b *models.Blocked) error
	Delete(ctx context.Context, id string) error
	ListByCourtAndDate(ctx context.Context, courtID, date string) ([]models.Blocked, error)
	ListFrom(ctx context.Context, date string) ([]models.Blocked, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoBlockedRepo struct {
	coll *mongo.Collection
}

func NewMongoBlockedRepo(db *mongo.Database) BlockedRepository {
	return &mongoBlockedRepo{coll: db.Collection("blocked")}
}
