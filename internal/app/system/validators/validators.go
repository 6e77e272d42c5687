// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	// helper: ensure collection exists (with truthful logging) and then validator (if provided)
	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			// DocumentDB or other deployments may not support collMod/validators.
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	// Core collections this app uses
	ensure("ngos", ngosSchema())
	ensure("facilities", facilitiesSchema())
	ensure("donors", donorsSchema())
	ensure("hospitals", hospitalsSchema())
	ensure("blood_requests", bloodRequestsSchema())

	// These don't strictly need validators; we still ensure the collections exist.
	ensure("verifications", nil)
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func ngosSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "name_ci", "email", "password_hash", "registration_number", "status"},
			"properties": bson.M{
				"name":                bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci":             bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"email":               bson.M{"bsonType": "string", "minLength": 3},
				"password_hash":       bson.M{"bsonType": "string", "minLength": 1},
				"registration_number": bson.M{"bsonType": "string", "minLength": 1},
				"status":              bson.M{"enum": bson.A{"PENDING", "ACTIVE", "SUSPENDED", "BLACKLISTED"}},
				"refresh_token":       bson.M{"bsonType": "string"},
				"last_login_at":       bson.M{"bsonType": bson.A{"date", "null"}},
			},
		},
	}
}

func facilitiesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"ngo_id", "name", "name_ci", "type", "status", "location"},
			"properties": bson.M{
				"ngo_id":  bson.M{"bsonType": "objectId"},
				"name":    bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"name_ci": bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"type":    bson.M{"enum": bson.A{"CAMP", "CENTER"}},
				"status":  bson.M{"enum": bson.A{"PLANNED", "INACTIVE", "ACTIVE", "SUSPENDED"}},
				"location": bson.M{
					"bsonType": "object",
					"required": bson.A{"type", "coordinates"},
					"properties": bson.M{
						"type":        bson.M{"enum": bson.A{"Point"}},
						"coordinates": bson.M{"bsonType": "array", "minItems": 2, "maxItems": 2},
					},
				},
			},
		},
	}
}

func donorsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "status", "location", "notify_camps"},
			"properties": bson.M{
				"name":         bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"email":        bson.M{"bsonType": "string", "minLength": 3},
				"blood_group":  bson.M{"enum": bson.A{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}},
				"status":       bson.M{"enum": bson.A{"ACTIVE", "INACTIVE"}},
				"notify_camps": bson.M{"bsonType": "bool"},
			},
		},
	}
}

func hospitalsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email"},
			"properties": bson.M{
				"name":  bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"email": bson.M{"bsonType": "string", "minLength": 3},
			},
		},
	}
}

func bloodRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"hospital_id", "blood_group", "units", "status"},
			"properties": bson.M{
				"hospital_id":     bson.M{"bsonType": "objectId"},
				"blood_group":     bson.M{"enum": bson.A{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"}},
				"units":           bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"status":          bson.M{"enum": bson.A{"PENDING", "ACCEPTED", "REJECTED", "FULFILLED", "CANCELLED"}},
				"assigned_ngo_id": bson.M{"bsonType": bson.A{"objectId", "null"}},
				"assigned_donors": bson.M{"bsonType": "array"},
				"history": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"action", "ngo_id", "from_status", "to_status", "at"},
					},
				},
			},
		},
	}
}
