// internal/app/features/accounts/register.go
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	ngostore "github.com/lifeflowhq/lifeflow/internal/app/store/ngos"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/inputval"
	"github.com/lifeflowhq/lifeflow/internal/app/system/limits"
	"github.com/lifeflowhq/lifeflow/internal/app/system/normalize"
	"github.com/lifeflowhq/lifeflow/internal/app/system/notify"
	"github.com/lifeflowhq/lifeflow/internal/app/system/respond"
	"github.com/lifeflowhq/lifeflow/internal/app/system/timeouts"
	"github.com/lifeflowhq/lifeflow/internal/app/system/uploads"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.uber.org/zap"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// registerInput carries the registration fields after parsing, before
// normalization and validation.
type registerInput struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Password           string `json:"password"`
	ContactName        string `json:"contactName"`
	ContactPhone       string `json:"contactPhone"`
	ContactEmail       string `json:"contactEmail"`
	Address            string `json:"address"`
	RegistrationNumber string `json:"registrationNumber"`
	OrganizationType   string `json:"organizationType"`
	OperatingHours     string `json:"operatingHours"`
}

type registerResponse struct {
	NGO models.RedactedNGO `json:"ngo"`
}

// Register handles POST /auth/register. Accepts either a JSON body or
// multipart/form-data; only multipart can carry document uploads.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	in, files, errMsg := parseRegisterRequest(r)
	if errMsg != "" {
		respond.BadRequest(w, errMsg)
		return
	}

	in.Email = normalize.Email(in.Email)
	in.RegistrationNumber = normalize.RegistrationNumber(in.RegistrationNumber)
	in.ContactPhone = normalize.Phone(in.ContactPhone)

	if msg := validateRegisterInput(in); msg != "" {
		respond.BadRequest(w, msg)
		return
	}
	if len(files) > models.MaxNGODocuments {
		respond.BadRequest(w, fmt.Sprintf("at most %d documents may be uploaded", models.MaxNGODocuments))
		return
	}

	// Precondition checks give clean 409s; the unique indexes remain the
	// authority under concurrent registration.
	if exists, err := h.NGOs.ExistsByEmail(ctx, in.Email); err != nil {
		respond.Internal(w, h.Log, "register: email existence check failed", err)
		return
	} else if exists {
		respond.Conflict(w, "an account with this email already exists")
		return
	}
	if exists, err := h.NGOs.ExistsByRegistrationNumber(ctx, in.RegistrationNumber); err != nil {
		respond.Internal(w, h.Log, "register: registration number check failed", err)
		return
	} else if exists {
		respond.Conflict(w, "an account with this registration number already exists")
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		respond.Internal(w, h.Log, "register: password hash failed", err)
		return
	}

	docs, err := h.storeDocuments(ctx, files)
	if err != nil {
		respond.Internal(w, h.Log, "register: document upload failed", err)
		return
	}

	ngo, err := h.NGOs.Create(ctx, models.NGO{
		Name:               in.Name,
		Email:              in.Email,
		PasswordHash:       hash,
		ContactPerson:      models.ContactPerson{Name: in.ContactName, Phone: in.ContactPhone, Email: in.ContactEmail},
		Address:            in.Address,
		RegistrationNumber: in.RegistrationNumber,
		OrganizationType:   in.OrganizationType,
		OperatingHours:     in.OperatingHours,
		Documents:          docs,
		Status:             models.NGOStatusPending,
	})
	if err != nil {
		switch {
		case errors.Is(err, ngostore.ErrDuplicateEmail):
			respond.Conflict(w, "an account with this email already exists")
		case errors.Is(err, ngostore.ErrDuplicateRegistrationNumber):
			respond.Conflict(w, "an account with this registration number already exists")
		default:
			respond.Internal(w, h.Log, "register: create failed", err)
		}
		return
	}

	h.Audit.NGORegistered(ctx, r, ngo.ID, ngo.Email)
	h.sendVerificationCode(ctx, ngo)

	respond.JSON(w, http.StatusCreated, registerResponse{NGO: ngo.Redacted()},
		"registration successful; a verification code has been sent")
}

// sendVerificationCode issues the initial OTP and queues its delivery.
// Failure here never fails the registration; the account can request a
// resend.
func (h *Handler) sendVerificationCode(ctx context.Context, ngo models.NGO) {
	if h.Verifications == nil || h.Dispatch == nil {
		return
	}
	code, err := h.Verifications.Create(ctx, ngo.ID, ngo.Email, false)
	if err != nil {
		h.Log.Error("register: failed to create verification code",
			zap.String("ngo_id", ngo.ID.Hex()),
			zap.Error(err))
		return
	}
	subject, body := notify.BuildVerificationEmail(notify.VerificationEmailData{
		SiteName:  h.SiteName,
		Code:      code,
		ExpiresIn: "10 minutes",
	})
	h.Dispatch.Send(ngo.Email, subject, body)
}

func (h *Handler) storeDocuments(ctx context.Context, files []*multipart.FileHeader) ([]models.DocumentRef, error) {
	if len(files) == 0 {
		return nil, nil
	}
	docs := make([]models.DocumentRef, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload %q: %w", fh.Filename, err)
		}
		doc, err := uploads.NGODocument(ctx, h.Storage, fh.Filename, f, fh.Header.Get("Content-Type"))
		f.Close()
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// parseRegisterRequest decodes either content type into registerInput plus
// any uploaded document file headers. An empty errMsg means success.
func parseRegisterRequest(r *http.Request) (in registerInput, files []*multipart.FileHeader, errMsg string) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(limits.MaxRegisterFormSize); err != nil {
			return in, nil, "could not parse multipart form"
		}
		in = registerInput{
			Name:               r.FormValue("name"),
			Email:              r.FormValue("email"),
			Password:           r.FormValue("password"),
			ContactName:        r.FormValue("contactName"),
			ContactPhone:       r.FormValue("contactPhone"),
			ContactEmail:       r.FormValue("contactEmail"),
			Address:            r.FormValue("address"),
			RegistrationNumber: r.FormValue("registrationNumber"),
			OrganizationType:   r.FormValue("organizationType"),
			OperatingHours:     r.FormValue("operatingHours"),
		}
		if r.MultipartForm != nil {
			files = r.MultipartForm.File["documents"]
		}
		return in, files, ""
	}

	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return in, nil, "invalid JSON body"
	}
	return in, nil, ""
}

func validateRegisterInput(in registerInput) string {
	if strings.TrimSpace(in.Name) == "" {
		return "name is required"
	}
	if !inputval.IsValidEmail(in.Email) {
		return "a valid email is required"
	}
	if len(in.Password) < MinPasswordLength {
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}
	if strings.TrimSpace(in.ContactName) == "" {
		return "contact person name is required"
	}
	if !inputval.IsValidPhone(in.ContactPhone) {
		return "a valid contact person phone is required"
	}
	if in.RegistrationNumber == "" {
		return "registration number is required"
	}
	return ""
}
