// internal/app/features/accounts/password.go
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/lifeflowhq/lifeflow/internal/app/store/audit"
	ngostore "github.com/lifeflowhq/lifeflow/internal/app/store/ngos"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/respond"
	"github.com/lifeflowhq/lifeflow/internal/app/system/timeouts"
)

type changePasswordInput struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePassword handles POST /auth/change-password. The old password is
// verified before anything is written.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	identity, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}

	var in changePasswordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.BadRequest(w, "invalid JSON body")
		return
	}
	if in.OldPassword == "" {
		respond.BadRequest(w, "oldPassword is required")
		return
	}
	if len(in.NewPassword) < MinPasswordLength {
		respond.BadRequest(w, fmt.Sprintf("new password must be at least %d characters", MinPasswordLength))
		return
	}

	ngo, err := h.NGOs.GetByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, ngostore.ErrNotFound) {
			respond.Unauthorized(w, "account not found")
			return
		}
		respond.Internal(w, h.Log, "change-password: lookup failed", err)
		return
	}

	if !auth.CheckPassword(ngo.PasswordHash, in.OldPassword) {
		respond.Unauthorized(w, "old password is incorrect")
		return
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		respond.Internal(w, h.Log, "change-password: hash failed", err)
		return
	}
	if err := h.NGOs.SetPasswordHash(ctx, ngo.ID, hash); err != nil {
		respond.Internal(w, h.Log, "change-password: update failed", err)
		return
	}

	h.Audit.Action(ctx, r, audit.CategoryAuth, audit.EventPasswordChanged, ngo.ID, nil)
	respond.JSON(w, http.StatusOK, nil, "password changed")
}
