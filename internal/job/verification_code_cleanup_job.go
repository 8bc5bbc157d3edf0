package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/portfolio/internal/pkg/timeutil"
)

type expiredCodeDeleter interface {
	DeleteExpiredBefore(ctx context.Context, cutoff int64) (int64, error)
}

// VerificationCodeCleanupJob drops durable reset codes that expired more than
// one grace period ago. Younger expired rows stay so a late verify still
// reports the code as expired instead of missing.
type VerificationCodeCleanupJob struct {
	codes expiredCodeDeleter
	grace time.Duration
	now   timeutil.Clock
}

func NewVerificationCodeCleanupJob(codes expiredCodeDeleter, grace time.Duration, now timeutil.Clock) *VerificationCodeCleanupJob {
	return &VerificationCodeCleanupJob{codes: codes, grace: grace, now: now}
}

func (j *VerificationCodeCleanupJob) Name() string {
	return "verification_code_cleanup"
}

func (j *VerificationCodeCleanupJob) Run(ctx context.Context) error {
	if j.codes == nil {
		return nil
	}
	cutoff := j.now.Now().Add(-j.grace).Unix()
	removed, err := j.codes.DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("expired verification codes removed", zap.Int64("count", removed))
	}
	return nil
}
