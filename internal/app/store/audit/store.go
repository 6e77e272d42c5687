// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth     = "auth"
	CategoryAccount  = "account"
	CategoryFacility = "facility"
	CategoryRequest  = "request"
)

// Auth event types
const (
	EventNGORegistered            = "ngo_registered"
	EventLoginSuccess             = "login_success"
	EventLoginFailedNotFound      = "login_failed_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLogout                   = "logout"
	EventTokenRefreshed           = "token_refreshed"
	EventPasswordChanged          = "password_changed"
	EventOTPSent                  = "otp_sent"
	EventOTPVerified              = "otp_verified"
	EventOTPFailed                = "otp_failed"
)

// Account event types
const (
	EventProfileUpdated   = "profile_updated"
	EventDocumentUploaded = "document_uploaded"
)

// Facility event types
const (
	EventFacilityCreated   = "facility_created"
	EventFacilityUpdated   = "facility_updated"
	EventFacilityDeleted   = "facility_deleted"
	EventFacilitySuspended = "facility_suspended"
	EventFacilityActivated = "facility_activated"
)

// Blood-request event types
const (
	EventRequestTransition = "request_transition"
)

// Event is one append-only audit record.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp time.Time          `bson:"timestamp"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Acting NGO, when authenticated.
	NGOID *primitive.ObjectID `bson:"ngo_id,omitempty"`

	IP        string `bson:"ip,omitempty"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// Store manages audit event records. Append-only: there is deliberately
// no update or delete.
type Store struct {
	c *mongo.Collection
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// EnsureIndexes creates the query indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "timestamp", Value: -1}},
		},
		{
			Keys: bson.D{
				{Key: "ngo_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "event_type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// GetByNGO returns the most recent events for one NGO.
func (s *Store) GetByNGO(ctx context.Context, ngoID primitive.ObjectID, limit int64) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"ngo_id": ngoID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetRecent returns the most recent events across all accounts.
func (s *Store) GetRecent(ctx context.Context, limit int64) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// DeleteOlderThan removes events recorded before cutoff. Used by the
// retention job to keep the audit collection bounded.
func (s *Store) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
