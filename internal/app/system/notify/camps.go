// internal/app/system/notify/camps.go
package notify

import (
	"context"

	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.uber.org/zap"
)

// CampRadiusMeters is the fixed fan-out radius for camp announcements.
// Policy, not configuration.
const CampRadiusMeters = 10_000

// DonorFinder locates donors eligible for camp announcements: active,
// opted in, and within the given radius of a point.
type DonorFinder interface {
	FindNearbyCampSubscribers(ctx context.Context, lng, lat, radiusMeters float64) ([]models.Donor, error)
}

// CampAnnouncer fans a new-camp announcement out to nearby donors.
type CampAnnouncer struct {
	donors   DonorFinder
	dispatch *Dispatcher
	log      *zap.Logger
}

// NewCampAnnouncer builds a CampAnnouncer.
func NewCampAnnouncer(donors DonorFinder, dispatch *Dispatcher, logger *zap.Logger) *CampAnnouncer {
	return &CampAnnouncer{donors: donors, dispatch: dispatch, log: logger}
}

// AnnounceCamp queries eligible donors around the facility and queues one
// bulk notification. Errors are logged and swallowed: the facility create
// that triggered this has already succeeded and must stay successful.
func (a *CampAnnouncer) AnnounceCamp(ctx context.Context, f models.Facility) {
	if len(f.Location.Coordinates) != 2 {
		a.log.Warn("camp has no usable location, skipping announcement",
			zap.String("facility_id", f.ID.Hex()))
		return
	}
	lng, lat := f.Location.Coordinates[0], f.Location.Coordinates[1]

	donors, err := a.donors.FindNearbyCampSubscribers(ctx, lng, lat, CampRadiusMeters)
	if err != nil {
		a.log.Error("donor lookup for camp announcement failed",
			zap.String("facility_id", f.ID.Hex()),
			zap.Error(err))
		return
	}
	if len(donors) == 0 {
		a.log.Info("no eligible donors near new camp",
			zap.String("facility_id", f.ID.Hex()))
		return
	}

	recipients := make([]string, 0, len(donors))
	for _, d := range donors {
		recipients = append(recipients, d.Email)
	}

	payload := map[string]string{
		"facility_id":   f.ID.Hex(),
		"facility_name": f.Name,
		"facility_type": f.Type,
		"address":       f.Address,
	}
	if !f.Schedule.StartDate.IsZero() {
		payload["start_date"] = f.Schedule.StartDate.Format("Mon, 02 Jan 2006")
	}

	a.dispatch.SendBulk(recipients, TemplateCampAnnouncement, payload)

	a.log.Info("camp announcement queued",
		zap.String("facility_id", f.ID.Hex()),
		zap.Int("recipients", len(recipients)))
}
