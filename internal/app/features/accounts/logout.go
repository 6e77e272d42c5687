// internal/app/features/accounts/logout.go
package accounts

import (
	"context"
	"errors"
	"net/http"

	ngostore "github.com/lifeflowhq/lifeflow/internal/app/store/ngos"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/respond"
	"github.com/lifeflowhq/lifeflow/internal/app/system/timeouts"
)

// Logout handles POST /auth/logout. Clearing the stored refresh token
// revokes the session; outstanding access tokens expire on their own.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	ngo, ok := auth.CurrentNGO(r)
	if !ok {
		respond.Unauthorized(w, "authentication required")
		return
	}

	if err := h.NGOs.ClearRefreshToken(ctx, ngo.ID); err != nil && !errors.Is(err, ngostore.ErrNotFound) {
		respond.Internal(w, h.Log, "logout: clearing refresh token failed", err)
		return
	}

	h.Audit.Logout(ctx, r, ngo.ID)
	respond.JSON(w, http.StatusOK, nil, "logged out")
}
