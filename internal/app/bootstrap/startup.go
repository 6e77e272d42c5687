// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/waffle/config"
	auditstore "github.com/lifeflowhq/lifeflow/internal/app/store/audit"
	"github.com/lifeflowhq/lifeflow/internal/app/store/verification"
	"github.com/lifeflowhq/lifeflow/internal/app/system/tasks"
	"go.uber.org/zap"
)

// jobRunner holds the background maintenance jobs; Shutdown stops it.
var jobRunner *tasks.Runner

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// LifeFlow makes sure the local upload directory exists so the first
// document upload doesn't fail on a fresh deployment, then starts the
// background maintenance jobs.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.StorageType == "local" {
		if err := os.MkdirAll(appCfg.StorageLocalPath, 0o755); err != nil {
			return fmt.Errorf("create upload directory %s: %w", appCfg.StorageLocalPath, err)
		}
		logger.Info("local upload directory ready",
			zap.String("path", appCfg.StorageLocalPath))
	}

	db := deps.LifeFlowMongoDatabase
	jobRunner = tasks.NewRunner(logger,
		tasks.VerificationCleanupJob(verification.New(db, appCfg.OTPExpiry), logger),
		tasks.AuditRetentionJob(auditstore.New(db), appCfg.AuditRetention, logger),
	)
	jobRunner.Start()

	return nil
}
