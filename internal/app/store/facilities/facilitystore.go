// internal/app/store/facilities/facilitystore.go
package facilitystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound covers both a missing facility and one owned by a different
// NGO. Every query here filters on ngo_id, so a foreign facility is
// indistinguishable from a nonexistent one — no existence leak.
var ErrNotFound = errors.New("facility not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("facilities")}
}

func (s *Store) Create(ctx context.Context, f models.Facility) (models.Facility, error) {
	now := time.Now().UTC()
	f.ID = primitive.NewObjectID()
	f.NameCI = text.Fold(f.Name)
	f.CreatedAt = now
	f.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, f); err != nil {
		return models.Facility{}, err
	}
	return f, nil
}

// ListByNGO returns all facilities owned by one NGO, newest first.
func (s *Store) ListByNGO(ctx context.Context, ngoID primitive.ObjectID) ([]models.Facility, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"ngo_id": ngoID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Facility
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOwned loads a facility only if it belongs to the NGO.
func (s *Store) GetOwned(ctx context.Context, id, ngoID primitive.ObjectID) (models.Facility, error) {
	var f models.Facility
	err := s.c.FindOne(ctx, bson.M{"_id": id, "ngo_id": ngoID}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return models.Facility{}, ErrNotFound
	}
	if err != nil {
		return models.Facility{}, err
	}
	return f, nil
}

// Update carries the mutable facility fields. Zero values mean "leave
// unchanged"; Location is applied only when HasLocation is set.
type Update struct {
	Name        string
	Address     string
	Schedule    *models.FacilitySchedule
	HasLocation bool
	Longitude   float64
	Latitude    float64
}

// UpdateOwned merges fields into a facility the NGO owns.
func (s *Store) UpdateOwned(ctx context.Context, id, ngoID primitive.ObjectID, upd Update) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != "" {
		set["name"] = upd.Name
		set["name_ci"] = text.Fold(upd.Name)
	}
	if upd.Address != "" {
		set["address"] = upd.Address
	}
	if upd.Schedule != nil {
		set["schedule"] = *upd.Schedule
	}
	if upd.HasLocation {
		set["location"] = models.NewGeoPoint(upd.Longitude, upd.Latitude)
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "ngo_id": ngoID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOwned removes a facility the NGO owns.
func (s *Store) DeleteOwned(ctx context.Context, id, ngoID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "ngo_id": ngoID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatusOwned moves a facility the NGO owns to a new status.
func (s *Store) SetStatusOwned(ctx context.Context, id, ngoID primitive.ObjectID, status string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "ngo_id": ngoID},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
