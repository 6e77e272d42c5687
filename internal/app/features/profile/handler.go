// internal/app/features/profile/handler.go

// Package profile serves the authenticated NGO's own account: read,
// partial update, and verification-document upload.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/lifeflowhq/lifeflow/internal/app/store/audit"
	ngostore "github.com/lifeflowhq/lifeflow/internal/app/store/ngos"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auditlog"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/inputval"
	"github.com/lifeflowhq/lifeflow/internal/app/system/limits"
	"github.com/lifeflowhq/lifeflow/internal/app/system/normalize"
	"github.com/lifeflowhq/lifeflow/internal/app/system/respond"
	"github.com/lifeflowhq/lifeflow/internal/app/system/timeouts"
	"github.com/lifeflowhq/lifeflow/internal/app/system/uploads"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.uber.org/zap"
)

// Handler holds dependencies for the profile endpoints.
type Handler struct {
	NGOs    *ngostore.Store
	Storage storage.Store
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

// NewHandler constructs a profile Handler.
func NewHandler(ngos *ngostore.Store, store storage.Store, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{NGOs: ngos, Storage: store, Audit: audit, Log: logger}
}

// Get handles GET /profile.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}

	ngo, err := h.NGOs.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, ngostore.ErrNotFound) {
			respond.NotFound(w, "account not found")
			return
		}
		respond.Internal(w, h.Log, "profile: load failed", err)
		return
	}

	respond.JSON(w, http.StatusOK, ngo.Redacted(), "")
}

type updateInput struct {
	Name          string `json:"name"`
	ContactPerson struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"contactPerson"`
	Address          string `json:"address"`
	OrganizationType string `json:"organizationType"`
	OperatingHours   string `json:"operatingHours"`
}

// Update handles PATCH /profile. Absent or empty fields are left
// unchanged; email and registration number are immutable here.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}

	var in updateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.BadRequest(w, "invalid JSON body")
		return
	}

	upd := ngostore.ProfileUpdate{
		Name:             strings.TrimSpace(in.Name),
		ContactName:      strings.TrimSpace(in.ContactPerson.Name),
		ContactPhone:     normalize.Phone(in.ContactPerson.Phone),
		ContactEmail:     normalize.Email(in.ContactPerson.Email),
		Address:          strings.TrimSpace(in.Address),
		OrganizationType: strings.TrimSpace(in.OrganizationType),
		OperatingHours:   strings.TrimSpace(in.OperatingHours),
	}
	if upd == (ngostore.ProfileUpdate{}) {
		respond.BadRequest(w, "no updatable fields supplied")
		return
	}
	if upd.ContactPhone != "" && !inputval.IsValidPhone(upd.ContactPhone) {
		respond.BadRequest(w, "a valid contact person phone is required")
		return
	}
	if upd.ContactEmail != "" && !inputval.IsValidEmail(upd.ContactEmail) {
		respond.BadRequest(w, "a valid contact person email is required")
		return
	}

	if err := h.NGOs.UpdateProfile(ctx, identity.ID, upd); err != nil {
		if errors.Is(err, ngostore.ErrNotFound) {
			respond.NotFound(w, "account not found")
			return
		}
		respond.Internal(w, h.Log, "profile: update failed", err)
		return
	}

	ngo, err := h.NGOs.GetByID(ctx, identity.ID)
	if err != nil {
		respond.Internal(w, h.Log, "profile: reload failed", err)
		return
	}

	h.Audit.Action(ctx, r, audit.CategoryAccount, audit.EventProfileUpdated, identity.ID, nil)
	respond.JSON(w, http.StatusOK, ngo.Redacted(), "profile updated")
}

// UploadDocument handles POST /profile/documents. Accepts one file per
// request under the "document" field, up to models.MaxNGODocuments total.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(limits.MaxDocumentSize); err != nil {
		respond.BadRequest(w, "could not parse multipart form")
		return
	}
	file, header, err := r.FormFile("document")
	if err != nil {
		respond.BadRequest(w, "a document file is required")
		return
	}
	defer file.Close()

	ngo, err := h.NGOs.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, ngostore.ErrNotFound) {
			respond.NotFound(w, "account not found")
			return
		}
		respond.Internal(w, h.Log, "profile: load failed", err)
		return
	}
	if len(ngo.Documents) >= models.MaxNGODocuments {
		respond.BadRequest(w, fmt.Sprintf("at most %d documents are allowed", models.MaxNGODocuments))
		return
	}

	doc, err := uploads.NGODocument(ctx, h.Storage, header.Filename, file, header.Header.Get("Content-Type"))
	if err != nil {
		respond.Internal(w, h.Log, "profile: document upload failed", err)
		return
	}

	if err := h.NGOs.AddDocument(ctx, identity.ID, doc); err != nil {
		if errors.Is(err, ngostore.ErrNotFound) {
			// Filter includes the cap, so a concurrent upload can land here.
			respond.BadRequest(w, fmt.Sprintf("at most %d documents are allowed", models.MaxNGODocuments))
			return
		}
		respond.Internal(w, h.Log, "profile: document record failed", err)
		return
	}

	h.Audit.Action(ctx, r, audit.CategoryAccount, audit.EventDocumentUploaded, identity.ID,
		map[string]string{"file_name": doc.FileName})
	respond.JSON(w, http.StatusCreated, doc, "document uploaded")
}
