// File: database/repository/court/interface.go
package courtRepo

import (
	"context"
	"errors"

	"courtside/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrCourtNotFound    = errors.New("court not found")
	ErrFacilityNotFound = errors.New("facility not found")
)

type CourtRepository interface {
	Create(ctx context.Context, c *models.Court) error
	GetByID(ctx context.Context, id string) (*models.Court, error)
	Update(ctx context.Context, id string, upd models.CourtUpdate) (*models.Court, error)
	Delete(ctx context.Context, id string) error
	ListByFacility(ctx context.Context, facilityID string) ([]models.Court, error)
	EnsureIndexes(ctx context.Context) error
}

// FacilityRepository is read mostly; facilities are managed elsewhere.
type FacilityRepository interface {
	Create(ctx context.Context, f *models.Facility) error
	GetByID(ctx context.Context, id string) (*models.Facility, error)
}

type mongoCourtRepo struct {
	coll *mongo.Collection
}

type mongoFacilityRepo struct {
	coll *mongo.Collection
}

func NewMongoCourtRepo(db *mongo.Database) CourtRepository {
	return &mongoCourtRepo{coll: db.Collection("courts")}
}

func NewMongoFacilityRepo(db *mongo.Database) FacilityRepository {
	return &mongoFacilityRepo{coll: db.Collection("facilities")}
}
