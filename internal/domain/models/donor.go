// internal/domain/models/donor.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donor statuses.
const (
	DonorStatusActive   = "ACTIVE"
	DonorStatusInactive = "INACTIVE"
)

// Donor is a registered blood donor. This service reads donors only for
// camp-announcement fan-out: active donors near a new camp who have opted
// in to camp notifications.
type Donor struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Email       string             `bson:"email" json:"email"`
	BloodGroup  string             `bson:"blood_group,omitempty" json:"blood_group,omitempty"`
	Status      string             `bson:"status" json:"status"`
	Location    GeoPoint           `bson:"location" json:"location"`
	NotifyCamps bool               `bson:"notify_camps" json:"notify_camps"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
