// internal/domain/models/facility.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Facility types.
const (
	FacilityTypeCamp   = "CAMP"
	FacilityTypeCenter = "CENTER"
)

// Facility statuses.
const (
	FacilityStatusPlanned   = "PLANNED"
	FacilityStatusInactive  = "INACTIVE"
	FacilityStatusActive    = "ACTIVE"
	FacilityStatusSuspended = "SUSPENDED"
)

// GeoPoint is a GeoJSON Point as stored in Mongo. Coordinates are
// [longitude, latitude] — that ordering is what 2dsphere indexes expect.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

// NewGeoPoint builds a GeoJSON Point from a longitude/latitude pair.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// FacilitySchedule describes when a facility operates. For camps, StartDate
// is the announced first day and is included in donor notifications.
type FacilitySchedule struct {
	StartDate time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`
	Days      []string  `bson:"days,omitempty" json:"days,omitempty"`
	Hours     string    `bson:"hours,omitempty" json:"hours,omitempty"`
}

// Facility is a donation camp or center owned by exactly one NGO.
type Facility struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NGOID    primitive.ObjectID `bson:"ngo_id" json:"ngo_id"`
	Name     string             `bson:"name" json:"name"`
	NameCI   string             `bson:"name_ci" json:"-"`     // lowercase, diacritics-stripped
	Type     string             `bson:"type" json:"type"`     // CAMP | CENTER
	Status   string             `bson:"status" json:"status"` // PLANNED | INACTIVE | ACTIVE | SUSPENDED
	Address  string             `bson:"address,omitempty" json:"address,omitempty"`
	Location GeoPoint           `bson:"location" json:"location"`
	Schedule FacilitySchedule   `bson:"schedule,omitempty" json:"schedule,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
