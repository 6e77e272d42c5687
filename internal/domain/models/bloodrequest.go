// internal/domain/models/bloodrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Blood request statuses. Legal movements between them live in
// system/workflow, not on the entity.
const (
	RequestStatusPending   = "PENDING"
	RequestStatusAccepted  = "ACCEPTED"
	RequestStatusRejected  = "REJECTED"
	RequestStatusFulfilled = "FULFILLED"
	RequestStatusCancelled = "CANCELLED"
)

// RequestHistoryEntry records one applied action on a blood request.
type RequestHistoryEntry struct {
	Action     string             `bson:"action" json:"action"`
	NGOID      primitive.ObjectID `bson:"ngo_id" json:"ngo_id"`
	FromStatus string             `bson:"from_status" json:"from_status"`
	ToStatus   string             `bson:"to_status" json:"to_status"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	At         time.Time          `bson:"at" json:"at"`
}

// BloodRequest is a hospital's request for blood, acted on by NGOs.
type BloodRequest struct {
	ID             primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	HospitalID     primitive.ObjectID    `bson:"hospital_id" json:"hospital_id"`
	BloodGroup     string                `bson:"blood_group" json:"blood_group"`
	Units          int                   `bson:"units" json:"units"`
	Status         string                `bson:"status" json:"status"`
	AssignedNGOID  *primitive.ObjectID   `bson:"assigned_ngo_id,omitempty" json:"assigned_ngo_id,omitempty"`
	AssignedDonors []primitive.ObjectID  `bson:"assigned_donors,omitempty" json:"assigned_donors,omitempty"`
	History        []RequestHistoryEntry `bson:"history,omitempty" json:"history,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// BloodRequestWithHospital is a request joined with the owning hospital's
// identity fields (via $lookup in the store).
type BloodRequestWithHospital struct {
	BloodRequest `bson:",inline"`
	Hospital     HospitalIdentity `bson:"hospital" json:"hospital"`
}
