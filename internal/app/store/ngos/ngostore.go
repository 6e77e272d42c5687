// internal/app/store/ngos/ngostore.go
package ngostore

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound                    = errors.New("ngo not found")
	ErrDuplicateEmail              = errors.New("an account with this email already exists")
	ErrDuplicateRegistrationNumber = errors.New("an account with this registration number already exists")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("ngos")}
}

// Create inserts a new NGO account. Duplicate email or registration number
// is resolved by the unique indexes: the second concurrent write loses and
// gets the matching sentinel error.
func (s *Store) Create(ctx context.Context, ngo models.NGO) (models.NGO, error) {
	now := time.Now().UTC()
	ngo.ID = primitive.NewObjectID()
	ngo.NameCI = text.Fold(ngo.Name)
	if ngo.Status == "" {
		ngo.Status = models.NGOStatusPending
	}
	ngo.CreatedAt = now
	ngo.UpdatedAt = now
	_, err := s.c.InsertOne(ctx, ngo)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.NGO{}, dupError(err)
		}
		return models.NGO{}, err
	}
	return ngo, nil
}

// dupError picks the sentinel matching the violated index. Mongo's
// duplicate-key message names the index, so look for the field name.
func dupError(err error) error {
	if strings.Contains(err.Error(), "registration_number") {
		return ErrDuplicateRegistrationNumber
	}
	return ErrDuplicateEmail
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.NGO, error) {
	var ngo models.NGO
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ngo)
	if err == mongo.ErrNoDocuments {
		return models.NGO{}, ErrNotFound
	}
	if err != nil {
		return models.NGO{}, err
	}
	return ngo, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (models.NGO, error) {
	var ngo models.NGO
	err := s.c.FindOne(ctx, bson.M{"email": email}).Decode(&ngo)
	if err == mongo.ErrNoDocuments {
		return models.NGO{}, ErrNotFound
	}
	if err != nil {
		return models.NGO{}, err
	}
	return ngo, nil
}

// ExistsByEmail is the explicit precondition check before Create; the
// unique index remains the authority under concurrency.
func (s *Store) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"email": email}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ExistsByRegistrationNumber mirrors ExistsByEmail for the registration number.
func (s *Store) ExistsByRegistrationNumber(ctx context.Context, regNumber string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"registration_number": regNumber}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ProfileUpdate carries the mutable profile fields. Empty strings mean
// "leave unchanged".
type ProfileUpdate struct {
	Name             string
	ContactName      string
	ContactPhone     string
	ContactEmail     string
	Address          string
	OrganizationType string
	OperatingHours   string
}

// UpdateProfile merges the supplied fields and refreshes UpdatedAt.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != "" {
		set["name"] = upd.Name
		set["name_ci"] = text.Fold(upd.Name)
	}
	if upd.ContactName != "" {
		set["contact_person.name"] = upd.ContactName
	}
	if upd.ContactPhone != "" {
		set["contact_person.phone"] = upd.ContactPhone
	}
	if upd.ContactEmail != "" {
		set["contact_person.email"] = upd.ContactEmail
	}
	if upd.Address != "" {
		set["address"] = upd.Address
	}
	if upd.OrganizationType != "" {
		set["organization_type"] = upd.OrganizationType
	}
	if upd.OperatingHours != "" {
		set["operating_hours"] = upd.OperatingHours
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddDocument appends a verification document reference, capped at
// models.MaxNGODocuments. The size guard is part of the filter so a
// concurrent upload cannot push past the cap.
func (s *Store) AddDocument(ctx context.Context, id primitive.ObjectID, doc models.DocumentRef) error {
	filter := bson.M{
		"_id": id,
		"$or": bson.A{
			bson.M{"documents": bson.M{"$exists": false}},
			bson.M{"documents." + strconv.Itoa(models.MaxNGODocuments-1): bson.M{"$exists": false}},
		},
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{
		"$push": bson.M{"documents": doc},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetRefreshToken stores a new refresh token and stamps the login time.
func (s *Store) SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"refresh_token": token,
		"last_login_at": now,
		"updated_at":    now,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearRefreshToken removes the stored refresh token (logout).
func (s *Store) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$unset": bson.M{"refresh_token": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPasswordHash replaces the stored password hash.
func (s *Store) SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus moves the account to a new verification status.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Fetcher adapts the store to the auth middleware's per-request identity
// refetch.
type Fetcher struct {
	store *Store
}

// NewFetcher builds an auth.NGOFetcher backed by this store.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{store: New(db)}
}

func (f *Fetcher) FetchIdentity(ctx context.Context, id primitive.ObjectID) (*auth.NGOIdentity, error) {
	ngo, err := f.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &auth.NGOIdentity{
		ID:     ngo.ID,
		Name:   ngo.Name,
		Email:  ngo.Email,
		Status: ngo.Status,
	}, nil
}
