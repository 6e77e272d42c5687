// internal/domain/models/ngo.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NGO account statuses.
const (
	NGOStatusPending     = "PENDING"
	NGOStatusActive      = "ACTIVE"
	NGOStatusSuspended   = "SUSPENDED"
	NGOStatusBlacklisted = "BLACKLISTED"
)

// MaxNGODocuments caps the number of verification documents per account.
const MaxNGODocuments = 3

// ContactPerson is the primary human contact for an NGO account.
type ContactPerson struct {
	Name  string `bson:"name" json:"name"`
	Phone string `bson:"phone" json:"phone"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// DocumentRef points at an uploaded verification document in file storage.
type DocumentRef struct {
	Path       string    `bson:"path" json:"path"`
	FileName   string    `bson:"file_name" json:"file_name"`
	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// NGO represents a registered non-governmental organization account.
//
// Email and RegistrationNumber are globally unique (enforced by unique
// indexes; see system/indexes). PasswordHash and RefreshToken never leave
// the server — handlers respond with Redacted().
type NGO struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	NameCI             string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email              string             `bson:"email" json:"email"`
	PasswordHash       string             `bson:"password_hash" json:"-"`
	ContactPerson      ContactPerson      `bson:"contact_person" json:"contact_person"`
	Address            string             `bson:"address,omitempty" json:"address,omitempty"`
	RegistrationNumber string             `bson:"registration_number" json:"registration_number"`
	OrganizationType   string             `bson:"organization_type,omitempty" json:"organization_type,omitempty"`
	OperatingHours     string             `bson:"operating_hours,omitempty" json:"operating_hours,omitempty"`
	Documents          []DocumentRef      `bson:"documents,omitempty" json:"documents,omitempty"`
	Status             string             `bson:"status" json:"status"`
	RefreshToken       string             `bson:"refresh_token,omitempty" json:"-"`
	LastLoginAt        *time.Time         `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RedactedNGO is the safe-to-return projection of an NGO account.
type RedactedNGO struct {
	ID                 primitive.ObjectID `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	ContactPerson      ContactPerson      `json:"contact_person"`
	Address            string             `json:"address,omitempty"`
	RegistrationNumber string             `json:"registration_number"`
	OrganizationType   string             `json:"organization_type,omitempty"`
	OperatingHours     string             `json:"operating_hours,omitempty"`
	Documents          []DocumentRef      `json:"documents,omitempty"`
	Status             string             `json:"status"`
	LastLoginAt        *time.Time         `json:"last_login_at,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// Redacted returns the NGO without password hash or token material.
func (n NGO) Redacted() RedactedNGO {
	return RedactedNGO{
		ID:                 n.ID,
		Name:               n.Name,
		Email:              n.Email,
		ContactPerson:      n.ContactPerson,
		Address:            n.Address,
		RegistrationNumber: n.RegistrationNumber,
		OrganizationType:   n.OrganizationType,
		OperatingHours:     n.OperatingHours,
		Documents:          n.Documents,
		Status:             n.Status,
		LastLoginAt:        n.LastLoginAt,
		CreatedAt:          n.CreatedAt,
	}
}
