// internal/app/store/donors/donorstore.go
package donorstore

import (
	"context"

	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store reads the donors collection. This service never writes donors;
// it only resolves recipients for camp announcements.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("donors")}
}

// FindNearbyCampSubscribers returns active donors within radiusMeters of
// the point who have opted in to camp announcements. Requires the
// 2dsphere index on location (see system/indexes); $nearSphere returns
// results ordered nearest-first.
func (s *Store) FindNearbyCampSubscribers(ctx context.Context, lng, lat, radiusMeters float64) ([]models.Donor, error) {
	filter := bson.M{
		"status":       models.DonorStatusActive,
		"notify_camps": true,
		"location": bson.M{
			"$nearSphere": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": radiusMeters,
			},
		},
	}

	cur, err := s.c.Find(ctx, filter, options.Find().SetProjection(bson.M{
		"name":         1,
		"email":        1,
		"status":       1,
		"notify_camps": 1,
		"location":     1,
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var donors []models.Donor
	if err := cur.All(ctx, &donors); err != nil {
		return nil, err
	}
	return donors, nil
}
