// internal/app/features/bloodrequests/handler.go

// Package bloodrequests lets NGOs view hospital blood requests and move
// them through the status workflow.
package bloodrequests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lifeflowhq/lifeflow/internal/app/store/audit"
	requeststore "github.com/lifeflowhq/lifeflow/internal/app/store/bloodrequests"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auditlog"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/respond"
	"github.com/lifeflowhq/lifeflow/internal/app/system/timeouts"
	"github.com/lifeflowhq/lifeflow/internal/app/system/workflow"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler holds dependencies for the blood-request endpoints.
type Handler struct {
	Requests *requeststore.Store
	Audit    *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler constructs a bloodrequests Handler.
func NewHandler(store *requeststore.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Requests: store, Audit: audit, Log: logger}
}

// List handles GET /blood-requests. Supports ?status= filtering and
// ?mine=true to restrict to requests assigned to the caller.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}

	filter := requeststore.ListFilter{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !validStatus(status) {
			respond.BadRequest(w, "unknown status filter")
			return
		}
		filter.Status = status
	}
	if r.URL.Query().Get("mine") == "true" {
		filter.AssignedNGOID = &identity.ID
	}

	list, err := h.Requests.List(ctx, filter)
	if err != nil {
		respond.Internal(w, h.Log, "blood-requests: list failed", err)
		return
	}
	if list == nil {
		list = []models.BloodRequestWithHospital{}
	}
	respond.JSON(w, http.StatusOK, list, "")
}

// Get handles GET /blood-requests/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, ok := auth.CurrentNGO(r); !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}
	id, ok := requestID(w, r)
	if !ok {
		return
	}

	req, err := h.Requests.GetWithHospital(ctx, id)
	if err != nil {
		if errors.Is(err, requeststore.ErrNotFound) {
			respond.NotFound(w, "blood request not found")
			return
		}
		respond.Internal(w, h.Log, "blood-requests: load failed", err)
		return
	}
	respond.JSON(w, http.StatusOK, req, "")
}

type respondInput struct {
	Action   string   `json:"action"`
	Notes    string   `json:"notes"`
	DonorIDs []string `json:"donorIds"`
}

// Respond handles POST /blood-requests/{id}/respond. The movement is
// checked against the workflow table and applied with a status
// precondition, so two NGOs racing on the same request cannot both win.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}
	id, ok := requestID(w, r)
	if !ok {
		return
	}

	var in respondInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.BadRequest(w, "invalid JSON body")
		return
	}
	if !workflow.KnownAction(in.Action) {
		respond.BadRequest(w, fmt.Sprintf("unknown action %q", in.Action))
		return
	}

	donorIDs, err := parseDonorIDs(in.DonorIDs)
	if err != nil {
		respond.BadRequest(w, "donorIds must be valid object ids")
		return
	}

	current, err := h.Requests.GetWithHospital(ctx, id)
	if err != nil {
		if errors.Is(err, requeststore.ErrNotFound) {
			respond.NotFound(w, "blood request not found")
			return
		}
		respond.Internal(w, h.Log, "blood-requests: load failed", err)
		return
	}

	next, err := workflow.Transition(current.Status, in.Action)
	if err != nil {
		var te *workflow.TransitionError
		if errors.As(err, &te) {
			respond.Conflict(w, te.Error())
			return
		}
		respond.Internal(w, h.Log, "blood-requests: transition failed", err)
		return
	}

	entry := models.RequestHistoryEntry{
		Action:     in.Action,
		NGOID:      identity.ID,
		FromStatus: current.Status,
		ToStatus:   next,
		Notes:      in.Notes,
		At:         time.Now().UTC(),
	}

	var assignNGO *primitive.ObjectID
	if in.Action == workflow.ActionAccept {
		assignNGO = &identity.ID
	}

	err = h.Requests.ApplyTransition(ctx, id, current.Status, next, entry, assignNGO, donorIDs)
	switch {
	case errors.Is(err, requeststore.ErrStale):
		respond.Conflict(w, "blood request changed status concurrently; reload and retry")
		return
	case errors.Is(err, requeststore.ErrNotFound):
		respond.NotFound(w, "blood request not found")
		return
	case err != nil:
		respond.Internal(w, h.Log, "blood-requests: apply transition failed", err)
		return
	}

	h.Audit.Action(ctx, r, audit.CategoryRequest, audit.EventRequestTransition, identity.ID,
		map[string]string{
			"request_id": id.Hex(),
			"action":     in.Action,
			"from":       current.Status,
			"to":         next,
		})

	updated, err := h.Requests.GetWithHospital(ctx, id)
	if err != nil {
		respond.Internal(w, h.Log, "blood-requests: reload failed", err)
		return
	}
	respond.JSON(w, http.StatusOK, updated, "blood request "+next)
}

func requestID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, "invalid blood request id")
		return primitive.NilObjectID, false
	}
	return id, true
}

func parseDonorIDs(hexes []string) ([]primitive.ObjectID, error) {
	if len(hexes) == 0 {
		return nil, nil
	}
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, hx := range hexes {
		id, err := primitive.ObjectIDFromHex(hx)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func validStatus(s string) bool {
	switch s {
	case models.RequestStatusPending, models.RequestStatusAccepted,
		models.RequestStatusRejected, models.RequestStatusFulfilled,
		models.RequestStatusCancelled:
		return true
	}
	return false
}
