// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/lifeflowhq/lifeflow/internal/app/store/audit"
	"github.com/lifeflowhq/lifeflow/internal/app/store/verification"
	"go.uber.org/zap"
)

// VerificationCleanupJob creates a job that removes expired OTP records.
// This is a backup for when MongoDB's TTL index cleanup is delayed.
func VerificationCleanupJob(verifStore *verification.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "verification-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := verifStore.CleanupExpired(ctx)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Debug("cleaned up expired verification codes", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// AuditRetentionJob creates a job that prunes audit events older than the
// retention period, keeping the collection bounded.
func AuditRetentionJob(auditStore *audit.Store, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "audit-retention",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := auditStore.DeleteOlderThan(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("pruned old audit events",
					zap.Int64("count", count),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
