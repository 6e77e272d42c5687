// internal/app/features/accounts/handler.go

// Package accounts implements the NGO account lifecycle: registration,
// login and token refresh, logout, password change, and email
// verification via one-time codes.
package accounts

import (
	"github.com/dalemusser/waffle/pantry/storage"
	ngostore "github.com/lifeflowhq/lifeflow/internal/app/store/ngos"
	"github.com/lifeflowhq/lifeflow/internal/app/store/verification"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auditlog"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/notify"
	"go.uber.org/zap"
)

// Handler holds the dependencies shared by the account endpoints.
type Handler struct {
	NGOs          *ngostore.Store
	Verifications *verification.Store
	Tokens        *auth.TokenManager
	Storage       storage.Store
	Dispatch      *notify.Dispatcher
	Audit         *auditlog.Logger
	Log           *zap.Logger
	SiteName      string
}

// NewHandler constructs an accounts Handler.
func NewHandler(ngos *ngostore.Store, verifications *verification.Store, tokens *auth.TokenManager, store storage.Store, dispatch *notify.Dispatcher, audit *auditlog.Logger, logger *zap.Logger, siteName string) *Handler {
	return &Handler{
		NGOs:          ngos,
		Verifications: verifications,
		Tokens:        tokens,
		Storage:       store,
		Dispatch:      dispatch,
		Audit:         audit,
		Log:           logger,
		SiteName:      siteName,
	}
}
