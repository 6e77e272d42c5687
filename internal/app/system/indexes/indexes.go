// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"github.com/lifeflowhq/lifeflow/internal/app/store/audit"
	requeststore "github.com/lifeflowhq/lifeflow/internal/app/store/bloodrequests"
	"github.com/lifeflowhq/lifeflow/internal/app/store/verification"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure step is idempotent. Errors
are aggregated so every problem is visible and startup can fail fast.

The unique indexes on ngos.email and ngos.registration_number are the
authority for global uniqueness: handler-level existence checks are a
courtesy, the index resolves concurrent registrations.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureNGOs(ctx, db); err != nil {
		problems = append(problems, "ngos: "+err.Error())
	}
	if err := ensureFacilities(ctx, db); err != nil {
		problems = append(problems, "facilities: "+err.Error())
	}
	if err := ensureDonors(ctx, db); err != nil {
		problems = append(problems, "donors: "+err.Error())
	}
	if err := requeststore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "blood_requests: "+err.Error())
	}
	if err := verification.New(db, 0).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "verifications: "+err.Error())
	}
	if err := audit.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "audit_events: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureNGOs(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("ngos"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_ngos_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "registration_number", Value: 1}},
			Options: options.Index().SetName("uniq_ngos_registration_number").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_ngos_status"),
		},
	})
}

func ensureFacilities(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("facilities"), []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "ngo_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_facilities_ngo_created"),
		},
		{
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("idx_facilities_location_2dsphere"),
		},
	})
}

func ensureDonors(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("donors"), []mongo.IndexModel{
		{
			// Required by the $nearSphere camp fan-out query.
			Keys:    bson.D{{Key: "location", Value: "2dsphere"}},
			Options: options.Index().SetName("idx_donors_location_2dsphere"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "notify_camps", Value: 1},
			},
			Options: options.Index().SetName("idx_donors_status_notify"),
		},
	})
}

// ensureIndexSet creates each desired index, tolerating indexes that
// already exist. If the same keys exist under a different name or with
// different options (IndexOptionsConflict), the old index is dropped and
// recreated so the desired definition wins.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}

		zap.L().Info("ensuring index",
			zap.String("collection", coll.Name()),
			zap.String("name", name))

		_, err := coll.Indexes().CreateOne(ctx, m)
		if err == nil {
			continue
		}
		if !isOptionsConflictErr(err) {
			errs = append(errs, coll.Name()+"("+name+"): "+err.Error())
			continue
		}

		// Same keys, different name/options: drop whichever index holds
		// these keys and recreate.
		if dropErr := dropConflicting(ctx, coll, m); dropErr != nil {
			errs = append(errs, coll.Name()+"("+name+"): drop conflicting: "+dropErr.Error())
			continue
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			errs = append(errs, coll.Name()+"("+name+"): recreate: "+err.Error())
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type existingIndex struct {
	Name string `bson:"name"`
	Key  bson.D `bson:"key"`
}

func dropConflicting(ctx context.Context, coll *mongo.Collection, desired mongo.IndexModel) error {
	want := keySig(desired.Keys.(bson.D))

	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if keySig(idx.Key) == want && idx.Name != "_id_" {
			_, err := coll.Indexes().DropOne(ctx, idx.Name)
			return err
		}
	}
	return cur.Err()
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, kv.Key+":"+sigValue(kv.Value))
	}
	return strings.Join(parts, ",")
}

func sigValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		if t < 0 {
			return "-1"
		}
		return "1"
	case int32:
		if t < 0 {
			return "-1"
		}
		return "1"
	case int64:
		if t < 0 {
			return "-1"
		}
		return "1"
	default:
		return "?"
	}
}

func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict") ||
		strings.Contains(err.Error(), "IndexKeySpecsConflict")
}
