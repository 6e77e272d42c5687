// internal/app/store/bloodrequests/requeststore.go
package requeststore

import (
	"context"
	"errors"
	"time"

	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound = errors.New("blood request not found")
	// ErrStale means the request's status changed between read and write.
	// The caller re-reads and re-evaluates the transition.
	ErrStale = errors.New("blood request status changed concurrently")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("blood_requests")}
}

// hospitalJoin is the $lookup stage attaching hospital identity fields.
func hospitalJoin() []bson.M {
	return []bson.M{
		{"$lookup": bson.M{
			"from":         "hospitals",
			"localField":   "hospital_id",
			"foreignField": "_id",
			"as":           "hospital",
		}},
		{"$unwind": bson.M{
			"path":                       "$hospital",
			"preserveNullAndEmptyArrays": true,
		}},
		{"$project": bson.M{
			"hospital.email":      0,
			"hospital.created_at": 0,
			"hospital.updated_at": 0,
		}},
	}
}

// GetWithHospital loads one request joined with the owning hospital.
func (s *Store) GetWithHospital(ctx context.Context, id primitive.ObjectID) (models.BloodRequestWithHospital, error) {
	pipeline := append([]bson.M{{"$match": bson.M{"_id": id}}}, hospitalJoin()...)
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return models.BloodRequestWithHospital{}, err
	}
	defer cur.Close(ctx)
	var out []models.BloodRequestWithHospital
	if err := cur.All(ctx, &out); err != nil {
		return models.BloodRequestWithHospital{}, err
	}
	if len(out) == 0 {
		return models.BloodRequestWithHospital{}, ErrNotFound
	}
	return out[0], nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Status        string
	AssignedNGOID *primitive.ObjectID
	Limit         int64
}

// List returns requests joined with hospital identity, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.BloodRequestWithHospital, error) {
	match := bson.M{}
	if filter.Status != "" {
		match["status"] = filter.Status
	}
	if filter.AssignedNGOID != nil {
		match["assigned_ngo_id"] = *filter.AssignedNGOID
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	pipeline := append([]bson.M{{"$match": match}}, hospitalJoin()...)
	pipeline = append(pipeline,
		bson.M{"$sort": bson.M{"created_at": -1}},
		bson.M{"$limit": limit})

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.BloodRequestWithHospital
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyTransition moves a request from one status to another, appending
// the history entry and, on accept, the assignment fields. The filter
// includes the expected current status so a concurrent transition makes
// this a no-op and is reported as ErrStale.
func (s *Store) ApplyTransition(ctx context.Context, id primitive.ObjectID, fromStatus, toStatus string, entry models.RequestHistoryEntry, assignNGO *primitive.ObjectID, assignDonors []primitive.ObjectID) error {
	now := time.Now().UTC()
	set := bson.M{
		"status":     toStatus,
		"updated_at": now,
	}
	if assignNGO != nil {
		set["assigned_ngo_id"] = *assignNGO
	}
	if len(assignDonors) > 0 {
		set["assigned_donors"] = assignDonors
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"history": entry},
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "status": fromStatus}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the request vanished or its status moved under us.
		err := s.c.FindOne(ctx, bson.M{"_id": id}).Err()
		if err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrStale
	}
	return nil
}

// EnsureIndexes creates the query indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_requests_status_created"),
		},
		{
			Keys:    bson.D{{Key: "assigned_ngo_id", Value: 1}},
			Options: options.Index().SetName("idx_requests_assigned_ngo"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}
