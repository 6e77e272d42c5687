// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down DB connections and other resources.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if jobRunner != nil {
		jobRunner.Stop()
	}

	// Let queued notification deliveries drain before the SMTP path and
	// the process go away.
	if dispatch != nil {
		logger.Info("waiting for pending notifications")
		dispatch.Wait()
	}

	if deps.LifeFlowMongoClient != nil {
		logger.Info("disconnecting LifeFlow MongoDB client")
		if err := deps.LifeFlowMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
