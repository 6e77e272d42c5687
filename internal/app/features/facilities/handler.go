// internal/app/features/facilities/handler.go

// Package facilities manages an NGO's donation camps and centers. Camp
// creation triggers the donor announcement fan-out.
package facilities

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lifeflowhq/lifeflow/internal/app/store/audit"
	facilitystore "github.com/lifeflowhq/lifeflow/internal/app/store/facilities"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auditlog"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/notify"
	"github.com/lifeflowhq/lifeflow/internal/app/system/respond"
	"github.com/lifeflowhq/lifeflow/internal/app/system/timeouts"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler holds dependencies for the facility endpoints.
type Handler struct {
	Facilities *facilitystore.Store
	Announcer  *notify.CampAnnouncer
	Audit      *auditlog.Logger
	Log        *zap.Logger
}

// NewHandler constructs a facilities Handler.
func NewHandler(store *facilitystore.Store, announcer *notify.CampAnnouncer, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Facilities: store, Announcer: announcer, Audit: audit, Log: logger}
}

type scheduleInput struct {
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Days      []string `json:"days"`
	Hours     string   `json:"hours"`
}

type createInput struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Address   string         `json:"address"`
	Longitude *float64       `json:"longitude"`
	Latitude  *float64       `json:"latitude"`
	Schedule  *scheduleInput `json:"schedule"`
}

// Create handles POST /facilities. Only verified (ACTIVE) NGOs may create
// facilities. Type "CAMP" yields a camp starting as PLANNED; any other
// type yields a center starting as INACTIVE.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}
	if identity.Status != models.NGOStatusActive {
		respond.Forbidden(w, "account must be verified before creating facilities")
		return
	}

	var in createInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.BadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		respond.BadRequest(w, "name is required")
		return
	}
	if in.Longitude == nil || in.Latitude == nil {
		respond.BadRequest(w, "longitude and latitude are required")
		return
	}
	if *in.Longitude < -180 || *in.Longitude > 180 || *in.Latitude < -90 || *in.Latitude > 90 {
		respond.BadRequest(w, "longitude/latitude out of range")
		return
	}

	facType := models.FacilityTypeCenter
	status := models.FacilityStatusInactive
	if strings.EqualFold(strings.TrimSpace(in.Type), models.FacilityTypeCamp) {
		facType = models.FacilityTypeCamp
		status = models.FacilityStatusPlanned
	}

	f := models.Facility{
		NGOID:    identity.ID,
		Name:     strings.TrimSpace(in.Name),
		Type:     facType,
		Status:   status,
		Address:  strings.TrimSpace(in.Address),
		Location: models.NewGeoPoint(*in.Longitude, *in.Latitude),
	}
	if in.Schedule != nil {
		sched, msg := parseSchedule(*in.Schedule)
		if msg != "" {
			respond.BadRequest(w, msg)
			return
		}
		f.Schedule = sched
	}

	created, err := h.Facilities.Create(ctx, f)
	if err != nil {
		respond.Internal(w, h.Log, "facilities: create failed", err)
		return
	}

	h.Audit.Action(ctx, r, audit.CategoryFacility, audit.EventFacilityCreated, identity.ID,
		map[string]string{"facility_id": created.ID.Hex(), "type": created.Type})

	// Fan-out is fire-and-forget: the facility is already persisted and a
	// notification failure never unwinds the create.
	if created.Type == models.FacilityTypeCamp && h.Announcer != nil {
		h.Announcer.AnnounceCamp(ctx, created)
	}

	respond.JSON(w, http.StatusCreated, created, "facility created")
}

// List handles GET /facilities, returning only the caller's facilities.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}

	list, err := h.Facilities.ListByNGO(ctx, identity.ID)
	if err != nil {
		respond.Internal(w, h.Log, "facilities: list failed", err)
		return
	}
	if list == nil {
		list = []models.Facility{}
	}
	respond.JSON(w, http.StatusOK, list, "")
}

type updateInput struct {
	Name      string         `json:"name"`
	Address   string         `json:"address"`
	Longitude *float64       `json:"longitude"`
	Latitude  *float64       `json:"latitude"`
	Schedule  *scheduleInput `json:"schedule"`
}

// Update handles PATCH /facilities/{id}. The ownership filter makes a
// foreign facility indistinguishable from a missing one.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}
	id, ok := facilityID(w, r)
	if !ok {
		return
	}

	var in updateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.BadRequest(w, "invalid JSON body")
		return
	}
	if (in.Longitude == nil) != (in.Latitude == nil) {
		respond.BadRequest(w, "longitude and latitude must be supplied together")
		return
	}

	upd := facilitystore.Update{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
	}
	if in.Longitude != nil {
		if *in.Longitude < -180 || *in.Longitude > 180 || *in.Latitude < -90 || *in.Latitude > 90 {
			respond.BadRequest(w, "longitude/latitude out of range")
			return
		}
		upd.HasLocation = true
		upd.Longitude = *in.Longitude
		upd.Latitude = *in.Latitude
	}
	if in.Schedule != nil {
		sched, msg := parseSchedule(*in.Schedule)
		if msg != "" {
			respond.BadRequest(w, msg)
			return
		}
		upd.Schedule = &sched
	}
	if upd == (facilitystore.Update{}) {
		respond.BadRequest(w, "no updatable fields supplied")
		return
	}

	if err := h.Facilities.UpdateOwned(ctx, id, identity.ID, upd); err != nil {
		if errors.Is(err, facilitystore.ErrNotFound) {
			respond.NotFound(w, "facility not found")
			return
		}
		respond.Internal(w, h.Log, "facilities: update failed", err)
		return
	}

	updated, err := h.Facilities.GetOwned(ctx, id, identity.ID)
	if err != nil {
		respond.Internal(w, h.Log, "facilities: reload failed", err)
		return
	}

	h.Audit.Action(ctx, r, audit.CategoryFacility, audit.EventFacilityUpdated, identity.ID,
		map[string]string{"facility_id": id.Hex()})
	respond.JSON(w, http.StatusOK, updated, "facility updated")
}

// Delete handles DELETE /facilities/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}
	id, ok := facilityID(w, r)
	if !ok {
		return
	}

	if err := h.Facilities.DeleteOwned(ctx, id, identity.ID); err != nil {
		if errors.Is(err, facilitystore.ErrNotFound) {
			respond.NotFound(w, "facility not found")
			return
		}
		respond.Internal(w, h.Log, "facilities: delete failed", err)
		return
	}

	h.Audit.Action(ctx, r, audit.CategoryFacility, audit.EventFacilityDeleted, identity.ID,
		map[string]string{"facility_id": id.Hex()})
	respond.JSON(w, http.StatusOK, nil, "facility deleted")
}

// Action handles POST /facilities/{id}/{action} for status changes.
// Unrecognized action names are client errors.
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}
	id, ok := facilityID(w, r)
	if !ok {
		return
	}

	var status, event string
	switch chi.URLParam(r, "action") {
	case "suspend":
		status = models.FacilityStatusSuspended
		event = audit.EventFacilitySuspended
	case "activate":
		status = models.FacilityStatusActive
		event = audit.EventFacilityActivated
	default:
		respond.BadRequest(w, "unknown facility action")
		return
	}

	if err := h.Facilities.SetStatusOwned(ctx, id, identity.ID, status); err != nil {
		if errors.Is(err, facilitystore.ErrNotFound) {
			respond.NotFound(w, "facility not found")
			return
		}
		respond.Internal(w, h.Log, "facilities: status change failed", err)
		return
	}

	h.Audit.Action(ctx, r, audit.CategoryFacility, event, identity.ID,
		map[string]string{"facility_id": id.Hex()})
	respond.JSON(w, http.StatusOK, map[string]string{"status": status}, "facility status updated")
}

func facilityID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid facility id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseSchedule(in scheduleInput) (models.FacilitySchedule, string) {
	var sched models.FacilitySchedule
	if in.StartDate != "" {
		t, err := parseDate(in.StartDate)
		if err != nil {
			return sched, "schedule.startDate must be an RFC 3339 date or datetime"
		}
		sched.StartDate = t
	}
	if in.EndDate != "" {
		t, err := parseDate(in.EndDate)
		if err != nil {
			return sched, "schedule.endDate must be an RFC 3339 date or datetime"
		}
		sched.EndDate = t
	}
	if !sched.StartDate.IsZero() && !sched.EndDate.IsZero() && sched.EndDate.Before(sched.StartDate) {
		return sched, "schedule.endDate must not be before schedule.startDate"
	}
	sched.Days = in.Days
	sched.Hours = in.Hours
	return sched, ""
}
