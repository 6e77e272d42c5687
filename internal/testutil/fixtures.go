package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateNGO inserts an NGO with the given status and password, returning
// the stored document.
func (f *Fixtures) CreateNGO(ctx context.Context, name, email, password, status string) models.NGO {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash fixture password: %v", err)
	}

	now := time.Now().UTC()
	ngo := models.NGO{
		ID:                 primitive.NewObjectID(),
		Name:               name,
		NameCI:             text.Fold(name),
		Email:              email,
		PasswordHash:       string(hash),
		ContactPerson:      models.ContactPerson{Name: "Contact " + name, Phone: "+15550100"},
		RegistrationNumber: "REG-" + ngoSuffix(),
		Status:             status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := f.db.Collection("ngos").InsertOne(ctx, ngo); err != nil {
		f.t.Fatalf("insert NGO fixture: %v", err)
	}
	return ngo
}

// CreateFacility inserts a facility owned by the given NGO.
func (f *Fixtures) CreateFacility(ctx context.Context, ngoID primitive.ObjectID, name, typ, status string, lng, lat float64) models.Facility {
	f.t.Helper()

	now := time.Now().UTC()
	fac := models.Facility{
		ID:        primitive.NewObjectID(),
		NGOID:     ngoID,
		Name:      name,
		NameCI:    text.Fold(name),
		Type:      typ,
		Status:    status,
		Location:  models.NewGeoPoint(lng, lat),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("facilities").InsertOne(ctx, fac); err != nil {
		f.t.Fatalf("insert facility fixture: %v", err)
	}
	return fac
}

// CreateHospital inserts a hospital for blood-request joins.
func (f *Fixtures) CreateHospital(ctx context.Context, name string) models.Hospital {
	f.t.Helper()

	now := time.Now().UTC()
	h := models.Hospital{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Phone:     "+15550101",
		Address:   "1 Hospital Way",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("hospitals").InsertOne(ctx, h); err != nil {
		f.t.Fatalf("insert hospital fixture: %v", err)
	}
	return h
}

// CreateBloodRequest inserts a blood request in the given status.
func (f *Fixtures) CreateBloodRequest(ctx context.Context, hospitalID primitive.ObjectID, bloodGroup string, units int, status string) models.BloodRequest {
	f.t.Helper()

	now := time.Now().UTC()
	req := models.BloodRequest{
		ID:         primitive.NewObjectID(),
		HospitalID: hospitalID,
		BloodGroup: bloodGroup,
		Units:      units,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("blood_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("insert blood request fixture: %v", err)
	}
	return req
}

// CreateDonor inserts a donor at the given location.
func (f *Fixtures) CreateDonor(ctx context.Context, email string, lng, lat float64, status string, notifyCamps bool) models.Donor {
	f.t.Helper()

	now := time.Now().UTC()
	d := models.Donor{
		ID:          primitive.NewObjectID(),
		Name:        "Donor " + email,
		Email:       email,
		BloodGroup:  "O+",
		Location:    models.NewGeoPoint(lng, lat),
		Status:      status,
		NotifyCamps: notifyCamps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection("donors").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("insert donor fixture: %v", err)
	}
	return d
}

func ngoSuffix() string {
	return primitive.NewObjectID().Hex()[18:]
}
