// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	accountsfeature "github.com/lifeflowhq/lifeflow/internal/app/features/accounts"
	bloodrequestsfeature "github.com/lifeflowhq/lifeflow/internal/app/features/bloodrequests"
	facilitiesfeature "github.com/lifeflowhq/lifeflow/internal/app/features/facilities"
	healthfeature "github.com/lifeflowhq/lifeflow/internal/app/features/health"
	profilefeature "github.com/lifeflowhq/lifeflow/internal/app/features/profile"
	auditstore "github.com/lifeflowhq/lifeflow/internal/app/store/audit"
	requeststore "github.com/lifeflowhq/lifeflow/internal/app/store/bloodrequests"
	donorstore "github.com/lifeflowhq/lifeflow/internal/app/store/donors"
	facilitystore "github.com/lifeflowhq/lifeflow/internal/app/store/facilities"
	ngostore "github.com/lifeflowhq/lifeflow/internal/app/store/ngos"
	"github.com/lifeflowhq/lifeflow/internal/app/store/verification"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auditlog"
	"github.com/lifeflowhq/lifeflow/internal/app/system/auth"
	"github.com/lifeflowhq/lifeflow/internal/app/system/notify"
	"go.uber.org/zap"
)

// dispatch is the process-wide notification dispatcher. Shutdown waits on
// it so in-flight deliveries finish before the process exits.
var dispatch *notify.Dispatcher

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// LifeFlow wires the JWT token manager, the auth middleware that loads the
// current NGO account on each request, the document storage backend, the
// SMTP notification dispatcher, and the audit logger, then mounts feature
// routers for authentication, profile, facilities, and blood requests.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.LifeFlowMongoDatabase

	tokens := auth.NewTokenManager(appCfg.JWTSecret, appCfg.AccessTokenTTL, appCfg.RefreshTokenTTL)

	// The middleware fetches fresh account data on each request so status
	// changes (suspension, activation) take effect immediately.
	mw := auth.NewMiddleware(tokens, ngostore.NewFetcher(db), logger)

	docStore, err := newStorage(context.Background(), appCfg)
	if err != nil {
		logger.Error("storage backend init failed", zap.Error(err))
		return nil, err
	}

	mailer := notify.NewMailer(notify.MailerConfig{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	})
	dispatch = notify.NewDispatcher(mailer, logger)
	announcer := notify.NewCampAnnouncer(donorstore.New(db), dispatch, logger)

	auditLog := auditlog.New(auditstore.New(db), logger, auditlog.Config{
		Auth:    appCfg.AuditLogAuth,
		Account: appCfg.AuditLogAccount,
	})

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.LifeFlowMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Registration, login, token refresh, and account verification
	accountsHandler := accountsfeature.NewHandler(
		ngostore.New(db),
		verification.New(db, appCfg.OTPExpiry),
		tokens,
		docStore,
		dispatch,
		auditLog,
		logger,
		appCfg.SiteName,
	)
	r.Mount("/auth", accountsfeature.Routes(accountsHandler, mw))

	// Account profile and document uploads
	profileHandler := profilefeature.NewHandler(ngostore.New(db), docStore, auditLog, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, mw))

	// Donation centers and camps
	facilitiesHandler := facilitiesfeature.NewHandler(facilitystore.New(db), announcer, auditLog, logger)
	r.Mount("/facilities", facilitiesfeature.Routes(facilitiesHandler, mw))

	// Hospital blood request workflow
	requestsHandler := bloodrequestsfeature.NewHandler(requeststore.New(db), auditLog, logger)
	r.Mount("/blood-requests", bloodrequestsfeature.Routes(requestsHandler, mw))

	return r, nil
}
