// internal/app/features/accounts/login.go
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lifeflowhq/lifeflow/internal/app/store/audit"
	ngostore "github.com/lifeflowhq/lifeflow/internal/app/store/ngos"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/normalize"
	"github.com/lifeflowhq/lifeflow/internal/app/system/respond"
	"github.com/lifeflowhq/lifeflow/internal/app/system/timeouts"
	"github.com/lifeflowhq/lifeflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	NGO          *models.RedactedNGO `json:"ngo,omitempty"`
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
}

// Login handles POST /auth/login. Bad email and bad password produce the
// same 401 so the response does not reveal which accounts exist; the audit
// trail records which it was.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var in loginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respond.BadRequest(w, "invalid JSON body")
		return
	}
	in.Email = normalize.Email(in.Email)
	if in.Email == "" || in.Password == "" {
		respond.BadRequest(w, "email and password are required")
		return
	}

	ngo, err := h.NGOs.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ngostore.ErrNotFound) {
			h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedNotFound, in.Email, "no account for email")
			respond.Unauthorized(w, "invalid email or password")
			return
		}
		respond.Internal(w, h.Log, "login: lookup failed", err)
		return
	}

	if !auth.CheckPassword(ngo.PasswordHash, in.Password) {
		h.Audit.LoginFailed(ctx, r, audit.EventLoginFailedWrongPassword, in.Email, "wrong password")
		respond.Unauthorized(w, "invalid email or password")
		return
	}

	access, refresh, err := h.Tokens.GeneratePair(ngo.ID.Hex(), ngo.Email)
	if err != nil {
		respond.Internal(w, h.Log, "login: token generation failed", err)
		return
	}
	if err := h.NGOs.SetRefreshToken(ctx, ngo.ID, refresh); err != nil {
		respond.Internal(w, h.Log, "login: persisting refresh token failed", err)
		return
	}

	h.Audit.LoginSuccess(ctx, r, ngo.ID, ngo.Email)

	redacted := ngo.Redacted()
	respond.JSON(w, http.StatusOK, tokenResponse{
		NGO:          &redacted,
		AccessToken:  access,
		RefreshToken: refresh,
	}, "login successful")
}

type refreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh handles POST /auth/refresh. The presented token must be a valid
// refresh token AND match the one stored on the account, so logout and
// rotation both invalidate older tokens.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var in refreshInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RefreshToken == "" {
		respond.BadRequest(w, "refreshToken is required")
		return
	}

	claims, err := h.Tokens.Validate(in.RefreshToken, auth.TokenTypeRefresh)
	if err != nil {
		respond.Unauthorized(w, "invalid or expired refresh token")
		return
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		respond.Unauthorized(w, "invalid refresh token")
		return
	}

	ngo, err := h.NGOs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ngostore.ErrNotFound) {
			respond.Unauthorized(w, "account not found")
			return
		}
		respond.Internal(w, h.Log, "refresh: lookup failed", err)
		return
	}
	if ngo.RefreshToken == "" || ngo.RefreshToken != in.RefreshToken {
		respond.Unauthorized(w, "refresh token has been revoked")
		return
	}

	access, refresh, err := h.Tokens.GeneratePair(ngo.ID.Hex(), ngo.Email)
	if err != nil {
		respond.Internal(w, h.Log, "refresh: token generation failed", err)
		return
	}
	if err := h.NGOs.SetRefreshToken(ctx, ngo.ID, refresh); err != nil {
		respond.Internal(w, h.Log, "refresh: persisting refresh token failed", err)
		return
	}

	h.Audit.Action(ctx, r, audit.CategoryAuth, audit.EventTokenRefreshed, ngo.ID, nil)

	respond.JSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}, "tokens refreshed")
}
