// internal/app/features/accounts/verification.go
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lifeflowhq/lifeflow/internal/app/store/audit"
	"github.com/lifeflowhq/lifeflow/internal/app/store/verification"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/notify"
	"github.com/lifeflowhq/lifeflow/internal/app/system/respond"
	"github.com/lifeflowhq/lifeflow/internal/app/system/timeouts"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
)

// ResendOTP handles POST /auth/resend-otp. Only accounts still awaiting
// verification may request a code; resends are rate-limited by the store.
func (h *Handler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}
	if identity.Status != models.NGOStatusPending {
		respond.BadRequest(w, "account is already verified")
		return
	}

	code, err := h.Verifications.Create(ctx, identity.ID, identity.Email, true)
	if err != nil {
		if errors.Is(err, verification.ErrTooManyResends) {
			respond.Error(w, http.StatusTooManyRequests, "too many resend requests; try again later")
			return
		}
		respond.Internal(w, h.Log, "resend-otp: create failed", err)
		return
	}

	subject, body := notify.BuildVerificationEmail(notify.VerificationEmailData{
		SiteName:  h.SiteName,
		Code:      code,
		ExpiresIn: "10 minutes",
	})
	h.Dispatch.Send(identity.Email, subject, body)

	h.Audit.Action(ctx, r, audit.CategoryAuth, audit.EventOTPSent, identity.ID, map[string]string{"resend": "true"})
	respond.JSON(w, http.StatusOK, nil, "verification code sent")
}

type verifyOTPInput struct {
	Code string `json:"code"`
}

// VerifyOTP handles POST /auth/verify-otp. A matching code activates the
// account.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}
	if identity.Status != models.NGOStatusPending {
		respond.BadRequest(w, "account is already verified")
		return
	}

	var in verifyOTPInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Code == "" {
		respond.BadRequest(w, "code is required")
		return
	}

	if err := h.Verifications.Verify(ctx, identity.ID, in.Code); err != nil {
		switch {
		case errors.Is(err, verification.ErrNotFound):
			h.Audit.Action(ctx, r, audit.CategoryAuth, audit.EventOTPFailed, identity.ID, map[string]string{"reason": "no active code"})
			respond.BadRequest(w, "no active verification code; request a new one")
		case errors.Is(err, verification.ErrInvalidCode):
			h.Audit.Action(ctx, r, audit.CategoryAuth, audit.EventOTPFailed, identity.ID, map[string]string{"reason": "invalid code"})
			respond.BadRequest(w, "invalid verification code")
		case errors.Is(err, verification.ErrTooManyAttempts):
			respond.Error(w, http.StatusTooManyRequests, "too many attempts; request a new code")
		default:
			respond.Internal(w, h.Log, "verify-otp: verify failed", err)
		}
		return
	}

	if err := h.NGOs.SetStatus(ctx, identity.ID, models.NGOStatusActive); err != nil {
		respond.Internal(w, h.Log, "verify-otp: activation failed", err)
		return
	}

	h.Audit.Action(ctx, r, audit.CategoryAuth, audit.EventOTPVerified, identity.ID, nil)
	respond.JSON(w, http.StatusOK, map[string]string{"status": models.NGOStatusActive}, "account verified")
}
