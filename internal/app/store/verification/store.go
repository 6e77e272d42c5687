// internal/app/store/verification/store.go
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeLength is the number of digits in an OTP.
	CodeLength = 6
	// DefaultExpiry is how long a code is valid.
	DefaultExpiry = 10 * time.Minute
	// BcryptCost for hashing codes at rest.
	BcryptCost = 10
	// MaxVerifyAttempts caps failed code checks per verification.
	MaxVerifyAttempts = 5
	// MaxResends caps resends within ResendWindow.
	MaxResends = 3
	// ResendWindow is the resend rate-limit window.
	ResendWindow = 10 * time.Minute
)

var (
	// ErrNotFound is returned when no live verification exists.
	ErrNotFound = errors.New("verification not found or expired")
	// ErrInvalidCode is returned when the code doesn't match.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrTooManyAttempts is returned after too many failed checks.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrTooManyResends is returned when the resend limit is hit.
	ErrTooManyResends = errors.New("too many resend requests")
)

// Verification is one pending OTP for an NGO account.
type Verification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	NGOID       primitive.ObjectID `bson:"ngo_id"`
	Email       string             `bson:"email"`
	CodeHash    string             `bson:"code_hash"`  // bcrypt hash of the 6-digit code
	ExpiresAt   time.Time          `bson:"expires_at"` // TTL index field
	CreatedAt   time.Time          `bson:"created_at"`
	Attempts    int                `bson:"attempts"`
	ResendCount int                `bson:"resend_count"`
	WindowStart time.Time          `bson:"window_start"`
}

// Store manages OTP verification records.
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store. A non-positive expiry falls back to DefaultExpiry.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{c: db.Collection("verifications"), expiry: expiry}
}

// Expiry returns the configured code lifetime.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// EnsureIndexes creates the TTL and lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_verifications_expires_ttl").SetExpireAfterSeconds(0),
		},
		{
			Keys:    bson.D{{Key: "ngo_id", Value: 1}},
			Options: options.Index().SetName("idx_verifications_ngo"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create issues a fresh code for the NGO, replacing any existing record.
// Returns the plain code for dispatch; only the bcrypt hash is stored.
// When isResend is true the call counts against the resend rate limit.
func (s *Store) Create(ctx context.Context, ngoID primitive.ObjectID, email string, isResend bool) (string, error) {
	now := time.Now().UTC()

	var existing Verification
	err := s.c.FindOne(ctx, bson.M{"ngo_id": ngoID}).Decode(&existing)
	existingFound := err == nil
	if err != nil && err != mongo.ErrNoDocuments {
		return "", err
	}

	resendCount := 0
	windowStart := now
	if isResend && existingFound {
		if now.Before(existing.WindowStart.Add(ResendWindow)) {
			if existing.ResendCount >= MaxResends {
				return "", ErrTooManyResends
			}
			resendCount = existing.ResendCount + 1
			windowStart = existing.WindowStart
		} else {
			resendCount = 1
		}
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	if err != nil {
		return "", err
	}

	rec := Verification{
		NGOID:       ngoID,
		Email:       email,
		CodeHash:    string(hash),
		ExpiresAt:   now.Add(s.expiry),
		CreatedAt:   now,
		Attempts:    0,
		ResendCount: resendCount,
		WindowStart: windowStart,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.c.ReplaceOne(ctx, bson.M{"ngo_id": ngoID}, rec, opts); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks a submitted code. On success the record is deleted so a
// code is single-use. Failed checks are counted; past the cap the record
// is deleted and the caller must request a new code.
func (s *Store) Verify(ctx context.Context, ngoID primitive.ObjectID, code string) error {
	now := time.Now().UTC()

	var rec Verification
	err := s.c.FindOne(ctx, bson.M{
		"ngo_id":     ngoID,
		"expires_at": bson.M{"$gt": now},
	}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if rec.Attempts >= MaxVerifyAttempts {
		_, _ = s.c.DeleteOne(ctx, bson.M{"_id": rec.ID})
		return ErrTooManyAttempts
	}

	if bcrypt.CompareHashAndPassword([]byte(rec.CodeHash), []byte(code)) != nil {
		_, _ = s.c.UpdateByID(ctx, rec.ID, bson.M{"$inc": bson.M{"attempts": 1}})
		return ErrInvalidCode
	}

	_, err = s.c.DeleteOne(ctx, bson.M{"_id": rec.ID})
	return err
}

// CleanupExpired removes verification records past their expiry. This is
// a backup for when MongoDB's TTL index cleanup is delayed.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// generateCode returns a random CodeLength-digit numeric code.
func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < CodeLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n), nil
}
